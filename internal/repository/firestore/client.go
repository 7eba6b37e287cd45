// Package firestore implements the repositories over Cloud Firestore.
//
// Layout:
//
//	publicWorkouts/{templateId}
//	users/{uid}
//	users/{uid}/workoutLogs/{entryId}
//	accounts/{uid}
//	accountEmails/{email}
package firestore

import (
	"context"
	"errors"
	"fmt"

	"liftlog/internal/repository"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	templatesCollection     = "publicWorkouts"
	usersCollection         = "users"
	workoutLogsCollection   = "workoutLogs"
	accountsCollection      = "accounts"
	accountEmailsCollection = "accountEmails"
)

// Connect opens a Firestore client. credentialsFile may be empty to use
// application default credentials or the emulator.
func Connect(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to firestore: %w", err)
	}
	return client, nil
}

// NewStores wires every repository over one Firestore client.
func NewStores(client *firestore.Client) *repository.Stores {
	return &repository.Stores{
		Templates: NewTemplateRepository(client),
		Logs:      NewWorkoutLogRepository(client),
		Profiles:  NewProfileRepository(client),
		Accounts:  NewAccountRepository(client),
		Ping: func(ctx context.Context) error {
			iter := client.Collection(templatesCollection).Limit(1).Documents(ctx)
			defer iter.Stop()
			if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
				return err
			}
			return nil
		},
		Close: client.Close,
	}
}
