package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"liftlog/internal/models"
	"liftlog/internal/observability"
	"liftlog/internal/repository"
)

// DateLayout is the layout of the date input.
const DateLayout = "2006-01-02"

// DefaultLogTitle replaces a blank workout title.
const DefaultLogTitle = "Workout"

// LogForm is the raw log-entry form as submitted.
type LogForm struct {
	Title           string `form:"title"`
	PerformedOn     string `form:"performedAt"`
	TrackingType    string `form:"trackingType"`
	DurationMinutes string `form:"durationMinutes"`
	Sets            string `form:"sets"`
	Reps            string `form:"reps"`
	Notes           string `form:"notes"`
	TemplateID      string `form:"templateId"`
}

type LogService struct {
	logs repository.WorkoutLogRepository
	now  func() time.Time
	loc  *time.Location
}

func NewLogService(logs repository.WorkoutLogRepository) *LogService {
	return &LogService{
		logs: logs,
		now:  time.Now,
		loc:  time.Local,
	}
}

// Today is the default value of the date input.
func (s *LogService) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// NewForm returns the form prefilled from a log route.
func (s *LogService) NewForm(title, templateID string) LogForm {
	return LogForm{
		Title:        title,
		PerformedOn:  s.Today(),
		TrackingType: string(models.TrackingDuration),
		TemplateID:   templateID,
	}
}

// List returns the user's newest entries.
func (s *LogService) List(ctx context.Context, userID string) ([]models.WorkoutLogEntry, error) {
	if userID == "" {
		return nil, models.NewUnauthorizedError("Sign in to view your workout log")
	}
	return s.logs.ListByUser(ctx, userID)
}

// Append builds an entry from form and stores it under userID.
func (s *LogService) Append(ctx context.Context, userID string, form LogForm) (*models.WorkoutLogEntry, error) {
	if userID == "" {
		return nil, models.NewUnauthorizedError("Sign in to log workouts")
	}
	entry, err := s.Build(form)
	if err != nil {
		return nil, err
	}
	if err := s.logs.Append(ctx, userID, entry); err != nil {
		return nil, err
	}
	observability.WorkoutLogsTotal.WithLabelValues(string(entry.TrackingType)).Inc()
	return entry, nil
}

// Build converts form into an entry. Tracking fields that do not belong to
// the chosen tracking type are left nil.
func (s *LogService) Build(form LogForm) (*models.WorkoutLogEntry, error) {
	tracking := models.TrackingType(strings.TrimSpace(form.TrackingType))
	if tracking == "" {
		tracking = models.TrackingDuration
	}
	if !tracking.Valid() {
		return nil, models.NewValidationError("trackingType must be duration or reps")
	}

	entry := &models.WorkoutLogEntry{
		Title:        strings.TrimSpace(form.Title),
		PerformedAt:  s.performedAt(form.PerformedOn),
		TrackingType: tracking,
		Notes:        optional(form.Notes),
		TemplateID:   optional(form.TemplateID),
	}
	if entry.Title == "" {
		entry.Title = DefaultLogTitle
	}

	var err error
	switch tracking {
	case models.TrackingDuration:
		if entry.DurationMinutes, err = optionalCount(form.DurationMinutes, "durationMinutes"); err != nil {
			return nil, err
		}
	case models.TrackingReps:
		if entry.Sets, err = optionalCount(form.Sets, "sets"); err != nil {
			return nil, err
		}
		entry.Reps = optional(form.Reps)
	}
	return entry, nil
}

// performedAt places the date at local midday so the calendar day survives
// time-zone shifts. A missing or unreadable date means now.
func (s *LogService) performedAt(date string) time.Time {
	date = strings.TrimSpace(date)
	if date == "" {
		return s.now()
	}
	d, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return s.now()
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, s.loc)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// optionalCount parses a non-negative count. Blank and zero are both unset.
func optionalCount(v, field string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, models.NewValidationError(field + " must be a whole number")
	}
	if n == 0 {
		return nil, nil
	}
	return &n, nil
}
