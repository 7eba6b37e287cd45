package notifications

import (
	"context"
	"sync"
	"time"

	"liftlog/internal/auth"
	"liftlog/internal/middleware"
)

const (
	relayQueueSize      = 256
	relayPublishTimeout = 2 * time.Second
)

// AuthStream is the authentication provider as seen by the relay.
type AuthStream interface {
	Subscribe(fn func(auth.StateChange)) (unsubscribe func())
	Deliver(change auth.StateChange)
	InstanceID() string
}

// Relay forwards this instance's sign-in, sign-up, sign-out and profile
// changes to the other instances and delivers theirs locally. Restores are
// not relayed: every instance restores from the token it receives.
type Relay struct {
	notifier *Notifier
	stream   AuthStream

	queue  chan auth.StateChange
	cancel context.CancelFunc
	unsub  func()
	wg     sync.WaitGroup
	once   sync.Once
}

// StartRelay wires stream to n. Stop must be called on shutdown.
func StartRelay(parent context.Context, n *Notifier, stream AuthStream) (*Relay, error) {
	ctx, cancel := context.WithCancel(parent)
	r := &Relay{
		notifier: n,
		stream:   stream,
		queue:    make(chan auth.StateChange, relayQueueSize),
		cancel:   cancel,
	}

	self := stream.InstanceID()
	err := n.StartAuthSubscriber(ctx, func(change auth.StateChange) {
		if change.Origin == self {
			return
		}
		stream.Deliver(change)
	})
	if err != nil {
		cancel()
		return nil, err
	}

	r.wg.Add(1)
	go r.publishLoop(ctx)

	r.unsub = stream.Subscribe(func(change auth.StateChange) {
		if change.Origin != self || change.Reason == auth.ReasonRestore {
			return
		}
		select {
		case r.queue <- change:
		default:
			middleware.Logger.Warn("auth relay queue full, dropping change", "visitor_id", change.Visitor, "reason", change.Reason)
		}
	})
	return r, nil
}

func (r *Relay) publishLoop(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-r.queue:
			pubCtx, cancel := context.WithTimeout(ctx, relayPublishTimeout)
			if err := r.notifier.PublishAuthChange(pubCtx, change); err != nil {
				middleware.Logger.Warn("failed to relay auth change", "error", err, "visitor_id", change.Visitor)
			}
			cancel()
		}
	}
}

// Stop unsubscribes from the stream and stops the subscriber and publisher.
func (r *Relay) Stop() {
	r.once.Do(func() {
		r.unsub()
		r.cancel()
		r.wg.Wait()
	})
}
