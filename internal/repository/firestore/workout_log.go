package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"liftlog/internal/models"
	"liftlog/internal/observability"
	"liftlog/internal/repository"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type workoutLogRepository struct {
	client *firestore.Client
}

// NewWorkoutLogRepository creates a Firestore-backed workout log repository.
func NewWorkoutLogRepository(client *firestore.Client) repository.WorkoutLogRepository {
	return &workoutLogRepository{client: client}
}

// userLogs is the users/{uid}/workoutLogs sub-collection.
func (r *workoutLogRepository) userLogs(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(workoutLogsCollection)
}

func (r *workoutLogRepository) ListByUser(ctx context.Context, userID string) ([]models.WorkoutLogEntry, error) {
	defer observability.TrackQuery("list", workoutLogsCollection)()

	iter := r.userLogs(userID).
		OrderBy("performedAt", firestore.Desc).
		Limit(repository.LogPageSize).
		Documents(ctx)
	defer iter.Stop()

	var entries []models.WorkoutLogEntry
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var entry models.WorkoutLogEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("decode workout log %s: %w", doc.Ref.ID, err)
		}
		entry.ID = doc.Ref.ID
		entry.UserID = userID
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *workoutLogRepository) Append(ctx context.Context, userID string, entry *models.WorkoutLogEntry) error {
	defer observability.TrackQuery("append", workoutLogsCollection)()

	ref := r.userLogs(userID).NewDoc()
	if _, err := ref.Create(ctx, logDoc(entry)); err != nil {
		return err
	}
	entry.ID = ref.ID
	entry.UserID = userID
	entry.CreatedAt = time.Now()
	return nil
}

// logDoc is the stored form of a log entry. Unused tracking fields are
// written as null.
func logDoc(e *models.WorkoutLogEntry) map[string]interface{} {
	return map[string]interface{}{
		"title":           e.Title,
		"performedAt":     e.PerformedAt,
		"trackingType":    string(e.TrackingType),
		"durationMinutes": e.DurationMinutes,
		"sets":            e.Sets,
		"reps":            e.Reps,
		"notes":           e.Notes,
		"templateId":      e.TemplateID,
		"createdAt":       firestore.ServerTimestamp,
	}
}
