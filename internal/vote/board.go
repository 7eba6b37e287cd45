// Package vote applies like/dislike votes optimistically to a local copy of
// the catalog and reverts them when the store rejects the write.
package vote

import (
	"context"
	"errors"
	"sync"

	"liftlog/internal/models"
	"liftlog/internal/observability"
)

var (
	// ErrVoteInFlight is returned while a vote for the same template is pending.
	ErrVoteInFlight = errors.New("a vote for this template is already in flight")
	// ErrSettled is returned when a ballot is confirmed or rolled back twice.
	ErrSettled = errors.New("ballot already settled")
	// ErrInvalidKind is returned for unknown vote kinds.
	ErrInvalidKind = errors.New("unknown vote kind")
)

// Phase is the lifecycle position of a ballot.
type Phase int

const (
	Tentative Phase = iota
	Confirmed
	RolledBack
)

func (p Phase) String() string {
	switch p {
	case Tentative:
		return "tentative"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Incrementer is the store write a vote issues.
type Incrementer interface {
	IncrementVote(ctx context.Context, id string, kind models.VoteKind) error
}

// Board is one visitor's local view of the catalog counters.
type Board struct {
	mu        sync.Mutex
	templates []models.WorkoutTemplate
	index     map[string]int
	pending   map[string]*Ballot
	// epoch increases on every Replace; older ballots no longer touch counters.
	epoch uint64
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{index: map[string]int{}, pending: map[string]*Ballot{}}
}

// Replace installs freshly fetched templates, discarding local adjustments.
func (b *Board) Replace(templates []models.WorkoutTemplate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.templates = append([]models.WorkoutTemplate(nil), templates...)
	b.index = make(map[string]int, len(templates))
	for i, t := range b.templates {
		b.index[t.ID] = i
	}
	b.epoch++
}

// Templates returns a copy of the local catalog in fetch order.
func (b *Board) Templates() []models.WorkoutTemplate {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.WorkoutTemplate(nil), b.templates...)
}

// Get returns the local copy of one template.
func (b *Board) Get(id string) (models.WorkoutTemplate, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.index[id]
	if !ok {
		return models.WorkoutTemplate{}, false
	}
	return b.templates[i], true
}

// Pending reports whether a vote for id awaits the store.
func (b *Board) Pending(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[id]
	return ok
}

// Begin applies +1 locally and returns the tentative ballot. Templates not
// on the board are only guarded.
func (b *Board) Begin(id string, kind models.VoteKind) (*Ballot, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, busy := b.pending[id]; busy {
		return nil, ErrVoteInFlight
	}
	ballot := &Ballot{board: b, id: id, kind: kind, epoch: b.epoch}
	b.pending[id] = ballot
	b.adjustLocked(id, kind, +1)
	return ballot, nil
}

// Cast runs a full vote: optimistic +1, one increment request, then confirm
// or roll back. The store error is returned after rollback.
func (b *Board) Cast(ctx context.Context, id string, kind models.VoteKind, store Incrementer) error {
	ballot, err := b.Begin(id, kind)
	if err != nil {
		return err
	}
	if err := store.IncrementVote(ctx, id, kind); err != nil {
		_ = ballot.Rollback()
		observability.VotesTotal.WithLabelValues(string(kind), "rolled_back").Inc()
		return err
	}
	_ = ballot.Confirm()
	observability.VotesTotal.WithLabelValues(string(kind), "ok").Inc()
	return nil
}

func (b *Board) adjustLocked(id string, kind models.VoteKind, delta int64) {
	i, ok := b.index[id]
	if !ok {
		return
	}
	t := &b.templates[i]
	counter := &t.LikeCount
	if kind == models.VoteDislike {
		counter = &t.DislikeCount
	}
	*counter += delta
	if *counter < 0 {
		*counter = 0
	}
}

// Ballot is one optimistic vote.
type Ballot struct {
	board *Board
	id    string
	kind  models.VoteKind
	epoch uint64
	phase Phase
}

// Phase returns the ballot's current phase.
func (bl *Ballot) Phase() Phase {
	bl.board.mu.Lock()
	defer bl.board.mu.Unlock()
	return bl.phase
}

// Confirm keeps the local increment as is.
func (bl *Ballot) Confirm() error {
	return bl.settle(Confirmed)
}

// Rollback removes the local increment, never going below zero.
func (bl *Ballot) Rollback() error {
	return bl.settle(RolledBack)
}

func (bl *Ballot) settle(to Phase) error {
	b := bl.board
	b.mu.Lock()
	defer b.mu.Unlock()
	if bl.phase != Tentative {
		return ErrSettled
	}
	bl.phase = to
	if to == RolledBack && bl.epoch == b.epoch {
		b.adjustLocked(bl.id, bl.kind, -1)
	}
	if b.pending[bl.id] == bl {
		delete(b.pending, bl.id)
	}
	return nil
}
