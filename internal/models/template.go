// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// TrackingType decides which tracking fields a template or log entry uses.
type TrackingType string

const (
	TrackingReps     TrackingType = "reps"
	TrackingDuration TrackingType = "duration"
)

// Valid reports whether t is a known tracking type.
func (t TrackingType) Valid() bool {
	return t == TrackingReps || t == TrackingDuration
}

// VoteKind selects the counter a vote increments.
type VoteKind string

const (
	VoteLike    VoteKind = "like"
	VoteDislike VoteKind = "dislike"
)

// Valid reports whether k is a known vote kind.
func (k VoteKind) Valid() bool {
	return k == VoteLike || k == VoteDislike
}

// Column returns the counter column for the vote kind.
func (k VoteKind) Column() string {
	if k == VoteDislike {
		return "dislike_count"
	}
	return "like_count"
}

// Field returns the document field name for the vote kind.
func (k VoteKind) Field() string {
	if k == VoteDislike {
		return "dislikeCount"
	}
	return "likeCount"
}

// WorkoutTemplate is a public, reusable workout definition.
type WorkoutTemplate struct {
	ID                       string       `gorm:"primaryKey;size:128" json:"id" firestore:"-" yaml:"id"`
	Title                    string       `gorm:"not null;index" json:"title" firestore:"title" yaml:"title"`
	Description              string       `gorm:"type:text" json:"description" firestore:"description" yaml:"description"`
	Muscles                  StringList   `gorm:"type:text" json:"muscles" firestore:"muscles" yaml:"muscles"`
	TrackingType             TrackingType `gorm:"size:16;not null" json:"trackingType" firestore:"trackingType" yaml:"trackingType"`
	SuggestedSets            *int         `json:"suggestedSets,omitempty" firestore:"suggestedSets,omitempty" yaml:"suggestedSets,omitempty"`
	SuggestedReps            *string      `json:"suggestedReps,omitempty" firestore:"suggestedReps,omitempty" yaml:"suggestedReps,omitempty"`
	SuggestedDurationMinutes *int         `json:"suggestedDurationMinutes,omitempty" firestore:"suggestedDurationMinutes,omitempty" yaml:"suggestedDurationMinutes,omitempty"`
	Tags                     StringList   `gorm:"type:text" json:"tags" firestore:"tags" yaml:"tags"`
	Exercises                StringList   `gorm:"type:text" json:"exercises" firestore:"exercises" yaml:"exercises"`
	Steps                    StringList   `gorm:"type:text" json:"steps" firestore:"steps" yaml:"steps"`
	LikeCount                int64        `gorm:"not null;default:0" json:"likeCount" firestore:"likeCount" yaml:"-"`
	DislikeCount             int64        `gorm:"not null;default:0" json:"dislikeCount" firestore:"dislikeCount" yaml:"-"`
	CreatedAt                time.Time    `json:"createdAt" firestore:"createdAt" yaml:"-"`
}

// TableName pins the table name used by gorm.
func (WorkoutTemplate) TableName() string {
	return "public_workouts"
}
