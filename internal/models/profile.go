package models

import "time"

// UserProfile is the per-user profile document. A missing profile reads
// the same as HasOnboarded == false.
type UserProfile struct {
	UserID       string    `gorm:"primaryKey;size:128" json:"-" firestore:"-"`
	Username     *string   `json:"username" firestore:"username"`
	Email        string    `json:"email" firestore:"email"`
	HasOnboarded bool      `gorm:"not null;default:false" json:"hasOnboarded" firestore:"hasOnboarded"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"-" firestore:"-"`
}

// TableName pins the table name used by gorm.
func (UserProfile) TableName() string {
	return "user_profiles"
}

// ProfilePatch lists the profile fields a merge-write sets. Nil fields are
// left untouched in the stored document.
type ProfilePatch struct {
	// SetUsername writes Username, which may be nil to store null.
	SetUsername  bool
	Username     *string
	Email        *string
	HasOnboarded *bool
	// StampCreatedAt asks the store to stamp createdAt at write time.
	StampCreatedAt bool
}

// Empty reports whether the patch would write nothing.
func (p ProfilePatch) Empty() bool {
	return !p.SetUsername && p.Email == nil && p.HasOnboarded == nil && !p.StampCreatedAt
}
