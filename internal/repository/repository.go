// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"liftlog/internal/models"
)

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

const (
	// TemplatePageSize caps the catalog listing.
	TemplatePageSize = 24
	// LogPageSize caps a user's workout history listing.
	LogPageSize = 50
)

// TemplateRepository defines data operations on public workout templates.
type TemplateRepository interface {
	// List returns at most TemplatePageSize templates ordered by title.
	List(ctx context.Context) ([]models.WorkoutTemplate, error)
	GetByID(ctx context.Context, id string) (*models.WorkoutTemplate, error)
	// IncrementVote adds one to the counter for kind in a single atomic
	// store request without reading the document first.
	IncrementVote(ctx context.Context, id string, kind models.VoteKind) error
	// Seed writes all templates in one batch with zeroed counters.
	Seed(ctx context.Context, templates []models.WorkoutTemplate) error
}

// WorkoutLogRepository defines data operations on a user's private log.
type WorkoutLogRepository interface {
	// ListByUser returns at most LogPageSize entries, newest performedAt first.
	ListByUser(ctx context.Context, userID string) ([]models.WorkoutLogEntry, error)
	// Append stores entry under userID, assigning ID and CreatedAt.
	Append(ctx context.Context, userID string, entry *models.WorkoutLogEntry) error
}

// ProfileRepository defines data operations on user profiles.
type ProfileRepository interface {
	// Get returns nil, nil when the user has no profile.
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	// Merge creates the profile if needed and writes only the patched fields.
	Merge(ctx context.Context, userID string, patch models.ProfilePatch) error
}

// AccountRepository defines data operations on sign-in accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	UpdateDisplayName(ctx context.Context, id, name string) error
}

// Stores bundles one backend's repositories.
type Stores struct {
	Templates TemplateRepository
	Logs      WorkoutLogRepository
	Profiles  ProfileRepository
	Accounts  AccountRepository
	// Ping reports backend health for the readiness probe.
	Ping func(ctx context.Context) error
	// Close releases the backend connection.
	Close func() error
}
