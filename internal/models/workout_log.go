package models

import "time"

// WorkoutLogEntry is a private record of a performed workout. Tracking
// fields are exclusive by TrackingType: DurationMinutes is nil for reps
// entries, Sets and Reps are nil for duration entries.
type WorkoutLogEntry struct {
	ID              string       `gorm:"primaryKey;size:64" json:"id" firestore:"-"`
	UserID          string       `gorm:"size:128;not null;index:idx_logs_user_performed,priority:1" json:"-" firestore:"-"`
	Title           string       `gorm:"not null" json:"title" firestore:"title"`
	PerformedAt     time.Time    `gorm:"not null;index:idx_logs_user_performed,priority:2,sort:desc" json:"performedAt" firestore:"performedAt"`
	TrackingType    TrackingType `gorm:"size:16;not null" json:"trackingType" firestore:"trackingType"`
	DurationMinutes *int         `json:"durationMinutes" firestore:"durationMinutes"`
	Sets            *int         `json:"sets" firestore:"sets"`
	Reps            *string      `json:"reps" firestore:"reps"`
	Notes           *string      `gorm:"type:text" json:"notes" firestore:"notes"`
	TemplateID      *string      `gorm:"size:128" json:"templateId" firestore:"templateId"`
	CreatedAt       time.Time    `json:"createdAt" firestore:"createdAt"`
}

// TableName pins the table name used by gorm.
func (WorkoutLogEntry) TableName() string {
	return "workout_logs"
}
