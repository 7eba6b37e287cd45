package repository

import (
	"context"
	"errors"
	"time"

	"liftlog/internal/cache"
	"liftlog/internal/models"
	"liftlog/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a gorm-backed template repository.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) List(ctx context.Context) ([]models.WorkoutTemplate, error) {
	defer observability.TrackQuery("list", "public_workouts")()

	var templates []models.WorkoutTemplate
	err := cache.Aside(ctx, cache.CatalogKey, &templates, cache.CatalogTTL, func() error {
		return r.db.WithContext(ctx).
			Order("title ASC").
			Limit(TemplatePageSize).
			Find(&templates).Error
	})
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*models.WorkoutTemplate, error) {
	defer observability.TrackQuery("get", "public_workouts")()

	var template models.WorkoutTemplate
	err := cache.Aside(ctx, cache.TemplateKey(id), &template, cache.TemplateTTL, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&template).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) IncrementVote(ctx context.Context, id string, kind models.VoteKind) error {
	defer observability.TrackQuery("increment", "public_workouts")()

	column := kind.Column()
	res := r.db.WithContext(ctx).
		Model(&models.WorkoutTemplate{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	cache.InvalidateTemplate(ctx, id)
	return nil
}

func (r *templateRepository) Seed(ctx context.Context, templates []models.WorkoutTemplate) error {
	if len(templates) == 0 {
		return nil
	}
	defer observability.TrackQuery("seed", "public_workouts")()

	now := time.Now()
	rows := make([]models.WorkoutTemplate, len(templates))
	for i, t := range templates {
		t.LikeCount, t.DislikeCount = 0, 0
		t.CreatedAt = now
		rows[i] = t
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&rows).Error
	})
	if err != nil {
		return err
	}

	keys := []string{cache.CatalogKey}
	for _, t := range rows {
		keys = append(keys, cache.TemplateKey(t.ID))
	}
	cache.Invalidate(ctx, keys...)
	return nil
}
