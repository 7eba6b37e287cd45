package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"liftlog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogService(repo *logRepoStub, now time.Time, loc *time.Location) *LogService {
	s := NewLogService(repo)
	s.now = func() time.Time { return now }
	s.loc = loc
	return s
}

func TestLogService_BuildRepsEntry(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC-5", -5*3600)
	s := newTestLogService(noopLogRepo(), time.Now(), loc)

	entry, err := s.Build(LogForm{
		Title:           "  Push Day  ",
		PerformedOn:     "2024-03-10",
		TrackingType:    "reps",
		DurationMinutes: "45",
		Sets:            "4",
		Reps:            "8-12",
	})
	require.NoError(t, err)

	assert.Equal(t, "Push Day", entry.Title)
	assert.Equal(t, models.TrackingReps, entry.TrackingType)
	assert.Nil(t, entry.DurationMinutes, "duration must be dropped for reps entries")
	require.NotNil(t, entry.Sets)
	assert.Equal(t, 4, *entry.Sets)
	require.NotNil(t, entry.Reps)
	assert.Equal(t, "8-12", *entry.Reps)
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, loc), entry.PerformedAt)
	assert.Nil(t, entry.Notes)
	assert.Nil(t, entry.TemplateID)
}

func TestLogService_BuildDurationEntry(t *testing.T) {
	t.Parallel()
	s := newTestLogService(noopLogRepo(), time.Now(), time.UTC)

	entry, err := s.Build(LogForm{
		Title:           "Zone 2",
		DurationMinutes: "45",
		Sets:            "4",
		Reps:            "10",
		Notes:           "  easy pace ",
		TemplateID:      "zone2-cardio-30",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TrackingDuration, entry.TrackingType, "tracking type defaults to duration")
	require.NotNil(t, entry.DurationMinutes)
	assert.Equal(t, 45, *entry.DurationMinutes)
	assert.Nil(t, entry.Sets)
	assert.Nil(t, entry.Reps)
	require.NotNil(t, entry.Notes)
	assert.Equal(t, "easy pace", *entry.Notes)
	require.NotNil(t, entry.TemplateID)
	assert.Equal(t, "zone2-cardio-30", *entry.TemplateID)
}

func TestLogService_BuildZeroCountsAreUnset(t *testing.T) {
	t.Parallel()
	s := newTestLogService(noopLogRepo(), time.Now(), time.UTC)

	entry, err := s.Build(LogForm{TrackingType: "duration", DurationMinutes: "0"})
	require.NoError(t, err)
	assert.Nil(t, entry.DurationMinutes)

	entry, err = s.Build(LogForm{TrackingType: "reps", Sets: " 0 ", Reps: "10"})
	require.NoError(t, err)
	assert.Nil(t, entry.Sets)
	require.NotNil(t, entry.Reps)
	assert.Equal(t, "10", *entry.Reps)
}

func TestLogService_BuildDefaults(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	s := newTestLogService(noopLogRepo(), now, time.UTC)

	tests := []struct {
		name string
		date string
	}{
		{"missing date", ""},
		{"unreadable date", "10/03/2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := s.Build(LogForm{Title: "   ", PerformedOn: tt.date})
			require.NoError(t, err)
			assert.Equal(t, DefaultLogTitle, entry.Title)
			assert.Equal(t, now, entry.PerformedAt)
			assert.Nil(t, entry.DurationMinutes)
		})
	}
}

func TestLogService_BuildRejectsBadInput(t *testing.T) {
	t.Parallel()
	s := newTestLogService(noopLogRepo(), time.Now(), time.UTC)

	tests := []struct {
		name string
		form LogForm
	}{
		{"unknown tracking type", LogForm{TrackingType: "distance"}},
		{"non-numeric duration", LogForm{TrackingType: "duration", DurationMinutes: "forty"}},
		{"negative sets", LogForm{TrackingType: "reps", Sets: "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Build(tt.form)
			assert.True(t, models.HasCode(err, models.CodeValidation), "got %v", err)
		})
	}
}

func TestLogService_AppendStoresUnderUser(t *testing.T) {
	t.Parallel()
	var gotUser string
	var gotEntry *models.WorkoutLogEntry
	repo := noopLogRepo()
	repo.appendFn = func(_ context.Context, userID string, entry *models.WorkoutLogEntry) error {
		gotUser, gotEntry = userID, entry
		return nil
	}
	s := newTestLogService(repo, time.Now(), time.UTC)

	entry, err := s.Append(context.Background(), "u-1", LogForm{Title: "Legs", TrackingType: "reps", Sets: "5"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", gotUser)
	assert.Same(t, gotEntry, entry)
}

func TestLogService_AppendRequiresUser(t *testing.T) {
	t.Parallel()
	repo := noopLogRepo()
	repo.appendFn = func(context.Context, string, *models.WorkoutLogEntry) error {
		t.Fatal("store must not be called")
		return nil
	}
	s := NewLogService(repo)

	_, err := s.Append(context.Background(), "", LogForm{Title: "x"})
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
}

func TestLogService_AppendPropagatesStoreError(t *testing.T) {
	t.Parallel()
	boom := errors.New("unavailable")
	repo := noopLogRepo()
	repo.appendFn = func(context.Context, string, *models.WorkoutLogEntry) error { return boom }
	s := NewLogService(repo)

	_, err := s.Append(context.Background(), "u-1", LogForm{})
	assert.ErrorIs(t, err, boom)
}

func TestLogService_NewFormDefaultsToToday(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+9", 9*3600)
	// 20:00 UTC on the 1st is already the 2nd in UTC+9.
	s := newTestLogService(noopLogRepo(), time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC), loc)

	form := s.NewForm("Upper Body Strength", "upper-body-strength-45")
	assert.Equal(t, "2024-06-02", form.PerformedOn)
	assert.Equal(t, "duration", form.TrackingType)
	assert.Equal(t, "Upper Body Strength", form.Title)
	assert.Equal(t, "upper-body-strength-45", form.TemplateID)
}
