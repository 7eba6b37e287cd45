package app

import (
	"context"
	"sync"
	"time"

	"liftlog/internal/middleware"
	"liftlog/internal/models"
	"liftlog/internal/route"
	"liftlog/internal/scope"
	"liftlog/internal/session"
	"liftlog/internal/vote"
)

const dismissWriteTimeout = 10 * time.Second

// ProfileStore loads and updates user profiles.
type ProfileStore interface {
	Load(ctx context.Context, userID string) (*models.UserProfile, error)
	MarkOnboarded(ctx context.Context, userID string) error
}

// Visitor is the view state of one browser.
type Visitor struct {
	ID string
	// Board is the visitor's local copy of the catalog.
	Board *vote.Board

	profiles ProfileStore
	profile  *scope.Scope[*models.UserProfile]
	bg       context.Context

	mu        sync.Mutex
	dismissed bool
	catalog   bool
	pending   sync.WaitGroup
}

func newVisitor(bg context.Context, id string, profiles ProfileStore) *Visitor {
	return &Visitor{
		ID:       id,
		Board:    vote.NewBoard(),
		profiles: profiles,
		profile:  scope.New[*models.UserProfile](),
		bg:       bg,
	}
}

// SyncUser loads the profile of userID, or clears it when userID is empty.
// A load already running or loaded for the same user is kept, a failed one
// is retried, and a load for a previous user is cancelled and its result
// discarded.
func (v *Visitor) SyncUser(userID string) {
	if userID == "" {
		v.profile.Clear()
		return
	}
	v.profile.Run(v.bg, userID, func(ctx context.Context) (*models.UserProfile, error) {
		p, err := v.profiles.Load(ctx, userID)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "failed to load profile", "visitor_id", v.ID, "user_id", userID, "error", err)
		}
		return p, err
	})
}

// Profile returns the profile state for the current user.
func (v *Visitor) Profile() ProfileState {
	r := v.profile.Snapshot()
	return ProfileState{Loading: !r.Done, Profile: r.Value, Err: r.Err}
}

// AwaitProfile waits up to d for a running profile load.
func (v *Visitor) AwaitProfile(ctx context.Context, d time.Duration) ProfileState {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	_, _ = v.profile.Wait(ctx)
	return v.Profile()
}

// Dismissed reports whether onboarding was dismissed in this session.
func (v *Visitor) Dismissed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dismissed
}

// Dismiss hides onboarding immediately and merge-writes hasOnboarded in the
// background. The write is not awaited and its failure is only logged.
func (v *Visitor) Dismiss(ctx context.Context, userID string) {
	v.mu.Lock()
	v.dismissed = true
	v.mu.Unlock()

	if userID == "" {
		return
	}
	v.pending.Add(1)
	go func() {
		defer v.pending.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dismissWriteTimeout)
		defer cancel()
		if err := v.profiles.MarkOnboarded(wctx, userID); err != nil {
			middleware.Logger.WarnContext(wctx, "failed to persist onboarding dismissal", "error", err)
		}
	}()
}

// Screen selects the screen for r.
func (v *Visitor) Screen(r route.Route, sess session.State) Screen {
	return Select(r, sess, v.Profile(), v.Dismissed())
}

// CatalogLoaded reports whether Board holds a fetched catalog.
func (v *Visitor) CatalogLoaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.catalog
}

// ReplaceCatalog installs a freshly fetched catalog on the board.
func (v *Visitor) ReplaceCatalog(templates []models.WorkoutTemplate) {
	v.Board.Replace(templates)
	v.mu.Lock()
	v.catalog = true
	v.mu.Unlock()
}

func (v *Visitor) close() {
	v.profile.Close()
}

// wait blocks until background writes started by Dismiss finish.
func (v *Visitor) wait() {
	v.pending.Wait()
}

// OnboardingAction is one of the prompt's exit actions.
type OnboardingAction string

const (
	OnboardingBrowse   OnboardingAction = "browse"
	OnboardingStartLog OnboardingAction = "log"
	OnboardingClose    OnboardingAction = "close"
)

// Target returns where the action navigates; an empty fragment means stay.
// ok is false for unknown actions.
func (a OnboardingAction) Target() (fragment string, ok bool) {
	switch a {
	case OnboardingBrowse:
		return route.CatalogFragment, true
	case OnboardingStartLog:
		return route.LogFragment("", ""), true
	case OnboardingClose:
		return "", true
	default:
		return "", false
	}
}
