package firestore

import (
	"context"
	"errors"
	"fmt"

	"liftlog/internal/cache"
	"liftlog/internal/models"
	"liftlog/internal/observability"
	"liftlog/internal/repository"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type templateRepository struct {
	client *firestore.Client
}

// NewTemplateRepository creates a Firestore-backed template repository.
func NewTemplateRepository(client *firestore.Client) repository.TemplateRepository {
	return &templateRepository{client: client}
}

func (r *templateRepository) col() *firestore.CollectionRef {
	return r.client.Collection(templatesCollection)
}

func (r *templateRepository) List(ctx context.Context) ([]models.WorkoutTemplate, error) {
	defer observability.TrackQuery("list", templatesCollection)()

	var templates []models.WorkoutTemplate
	err := cache.Aside(ctx, cache.CatalogKey, &templates, cache.CatalogTTL, func() error {
		iter := r.col().OrderBy("title", firestore.Asc).Limit(repository.TemplatePageSize).Documents(ctx)
		defer iter.Stop()

		templates = templates[:0]
		for {
			doc, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return nil
			}
			if err != nil {
				return err
			}
			t, err := decodeTemplate(doc)
			if err != nil {
				return err
			}
			templates = append(templates, *t)
		}
	})
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*models.WorkoutTemplate, error) {
	defer observability.TrackQuery("get", templatesCollection)()

	var template models.WorkoutTemplate
	err := cache.Aside(ctx, cache.TemplateKey(id), &template, cache.TemplateTTL, func() error {
		doc, err := r.col().Doc(id).Get(ctx)
		if err != nil {
			return err
		}
		t, err := decodeTemplate(doc)
		if err != nil {
			return err
		}
		template = *t
		return nil
	})
	if status.Code(err) == codes.NotFound {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) IncrementVote(ctx context.Context, id string, kind models.VoteKind) error {
	defer observability.TrackQuery("increment", templatesCollection)()

	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: kind.Field(), Value: firestore.Increment(1)},
	})
	if status.Code(err) == codes.NotFound {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}
	cache.InvalidateTemplate(ctx, id)
	return nil
}

func (r *templateRepository) Seed(ctx context.Context, templates []models.WorkoutTemplate) error {
	if len(templates) == 0 {
		return nil
	}
	defer observability.TrackQuery("seed", templatesCollection)()

	err := r.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		for _, t := range templates {
			if err := tx.Set(r.col().Doc(t.ID), templateDoc(t)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	keys := []string{cache.CatalogKey}
	for _, t := range templates {
		keys = append(keys, cache.TemplateKey(t.ID))
	}
	cache.Invalidate(ctx, keys...)
	return nil
}

// templateDoc is the stored form of a seeded template: counters zeroed and
// createdAt stamped by the server.
func templateDoc(t models.WorkoutTemplate) map[string]interface{} {
	doc := map[string]interface{}{
		"title":        t.Title,
		"description":  t.Description,
		"muscles":      []string(t.Muscles),
		"trackingType": string(t.TrackingType),
		"tags":         []string(t.Tags),
		"exercises":    []string(t.Exercises),
		"steps":        []string(t.Steps),
		"likeCount":    0,
		"dislikeCount": 0,
		"createdAt":    firestore.ServerTimestamp,
	}
	if t.SuggestedSets != nil {
		doc["suggestedSets"] = *t.SuggestedSets
	}
	if t.SuggestedReps != nil {
		doc["suggestedReps"] = *t.SuggestedReps
	}
	if t.SuggestedDurationMinutes != nil {
		doc["suggestedDurationMinutes"] = *t.SuggestedDurationMinutes
	}
	return doc
}

func decodeTemplate(doc *firestore.DocumentSnapshot) (*models.WorkoutTemplate, error) {
	var t models.WorkoutTemplate
	if err := doc.DataTo(&t); err != nil {
		return nil, fmt.Errorf("decode template %s: %w", doc.Ref.ID, err)
	}
	t.ID = doc.Ref.ID
	return &t, nil
}
