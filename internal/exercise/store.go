package exercise

import (
	"context"
	"errors"

	"github.com/eleven-am/pose-coach/internal/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Exercise{})
}

func (s *Store) Create(ctx context.Context, ex *Exercise) error {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(ex).Error
}

// Upsert creates ex or updates the existing exercise with the same slug.
func (s *Store) Upsert(ctx context.Context, ex *Exercise) error {
	existing, err := s.GetBySlug(ctx, ex.Slug)
	if errors.Is(err, shared.ErrNotFound) {
		return s.Create(ctx, ex)
	}
	if err != nil {
		return err
	}

	ex.ID = existing.ID
	ex.CreatedAt = existing.CreatedAt
	return s.db.WithContext(ctx).Save(ex).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*Exercise, error) {
	var ex Exercise
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&ex).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &ex, err
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (*Exercise, error) {
	var ex Exercise
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&ex).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &ex, err
}

// Lookup resolves either an ID or a slug.
func (s *Store) Lookup(ctx context.Context, idOrSlug string) (*Exercise, error) {
	ex, err := s.GetByID(ctx, idOrSlug)
	if errors.Is(err, shared.ErrNotFound) {
		return s.GetBySlug(ctx, idOrSlug)
	}
	return ex, err
}

func (s *Store) List(ctx context.Context) ([]*Exercise, error) {
	var out []*Exercise
	err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}
