package firestore

import (
	"context"
	"fmt"

	"liftlog/internal/models"
	"liftlog/internal/observability"
	"liftlog/internal/repository"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type profileRepository struct {
	client *firestore.Client
}

// NewProfileRepository creates a Firestore-backed profile repository.
func NewProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	defer observability.TrackQuery("get", usersCollection)()

	doc, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := doc.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	profile.UserID = userID
	return &profile, nil
}

func (r *profileRepository) Merge(ctx context.Context, userID string, patch models.ProfilePatch) error {
	if patch.Empty() {
		return nil
	}
	defer observability.TrackQuery("merge", usersCollection)()

	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, profileDoc(patch), firestore.MergeAll)
	return err
}

func profileDoc(patch models.ProfilePatch) map[string]interface{} {
	data := map[string]interface{}{}
	if patch.SetUsername {
		if patch.Username != nil {
			data["username"] = *patch.Username
		} else {
			data["username"] = nil
		}
	}
	if patch.Email != nil {
		data["email"] = *patch.Email
	}
	if patch.HasOnboarded != nil {
		data["hasOnboarded"] = *patch.HasOnboarded
	}
	if patch.StampCreatedAt {
		data["createdAt"] = firestore.ServerTimestamp
	}
	return data
}
