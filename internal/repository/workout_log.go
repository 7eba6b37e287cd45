package repository

import (
	"context"
	"time"

	"liftlog/internal/models"
	"liftlog/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type workoutLogRepository struct {
	db *gorm.DB
}

// NewWorkoutLogRepository creates a gorm-backed workout log repository.
func NewWorkoutLogRepository(db *gorm.DB) WorkoutLogRepository {
	return &workoutLogRepository{db: db}
}

func (r *workoutLogRepository) ListByUser(ctx context.Context, userID string) ([]models.WorkoutLogEntry, error) {
	defer observability.TrackQuery("list", "workout_logs")()

	var entries []models.WorkoutLogEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("performed_at DESC").
		Limit(LogPageSize).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *workoutLogRepository) Append(ctx context.Context, userID string, entry *models.WorkoutLogEntry) error {
	defer observability.TrackQuery("append", "workout_logs")()

	entry.ID = uuid.NewString()
	entry.UserID = userID
	entry.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(entry).Error
}
