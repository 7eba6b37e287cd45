package repository

import (
	"context"

	"liftlog/internal/database"

	"gorm.io/gorm"
)

// NewGormStores wires every repository over one gorm connection.
func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		Templates: NewTemplateRepository(db),
		Logs:      NewWorkoutLogRepository(db),
		Profiles:  NewProfileRepository(db),
		Accounts:  NewAccountRepository(db),
		Ping:      func(ctx context.Context) error { return database.Ping(ctx, db) },
		Close:     func() error { return database.Close(db) },
	}
}
