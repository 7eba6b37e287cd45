package models

import "time"

// Account holds the credentials the auth service signs users in with.
type Account struct {
	ID          string    `gorm:"primaryKey;size:128" json:"id" firestore:"-"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email" firestore:"email"`
	Password    string    `gorm:"not null" json:"-" firestore:"password"`
	DisplayName string    `json:"displayName" firestore:"displayName"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"-" firestore:"updatedAt"`
}
