package repository

import (
	"context"
	"errors"
	"time"

	"liftlog/internal/models"
	"liftlog/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a gorm-backed profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	defer observability.TrackQuery("get", "user_profiles")()

	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Merge upserts the row and, on conflict, updates only the patched columns.
func (r *profileRepository) Merge(ctx context.Context, userID string, patch models.ProfilePatch) error {
	if patch.Empty() {
		return nil
	}
	defer observability.TrackQuery("merge", "user_profiles")()

	now := time.Now()
	row := models.UserProfile{UserID: userID, CreatedAt: now, UpdatedAt: now}
	columns := []string{"updated_at"}

	if patch.SetUsername {
		row.Username = patch.Username
		columns = append(columns, "username")
	}
	if patch.Email != nil {
		row.Email = *patch.Email
		columns = append(columns, "email")
	}
	if patch.HasOnboarded != nil {
		row.HasOnboarded = *patch.HasOnboarded
		columns = append(columns, "has_onboarded")
	}
	if patch.StampCreatedAt {
		columns = append(columns, "created_at")
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&row).Error
}
