// Package notifications relays session changes between instances over Redis
// and pushes them to the visitor's open websocket connections.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"liftlog/internal/auth"
	"liftlog/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// AuthChannel carries auth state changes between instances.
const AuthChannel = "liftlog:auth:changes"

// Notifier provides helpers to publish into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishAuthChange sends change to every instance.
func (n *Notifier) PublishAuthChange(ctx context.Context, change auth.StateChange) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal auth change: %w", err)
	}
	return n.rdb.Publish(ctx, AuthChannel, payload).Err()
}

// StartAuthSubscriber subscribes to AuthChannel and calls onChange for every
// well-formed message until ctx is cancelled.
func (n *Notifier) StartAuthSubscriber(ctx context.Context, onChange func(auth.StateChange)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, AuthChannel)
	// Wait for the subscription confirmation so nothing published after
	// this call returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", AuthChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var change auth.StateChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					middleware.Logger.Warn("dropping malformed auth change", "error", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in auth subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onChange(change)
				}()
			}
		}
	}()

	return nil
}
