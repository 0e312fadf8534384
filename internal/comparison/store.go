package comparison

import (
	"context"
	"errors"

	"github.com/eleven-am/pose-coach/internal/shared"
	"gorm.io/gorm"
)

const defaultListLimit = 50

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Record{})
}

func (s *Store) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = shared.NewID("cmp_")
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &rec, err
}

// List returns the newest records first, optionally for one exercise.
func (s *Store) List(ctx context.Context, exerciseID string, limit int) ([]*Record, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	q := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if exerciseID != "" {
		q = q.Where("exercise_id = ?", exerciseID)
	}

	var out []*Record
	err := q.Find(&out).Error
	return out, err
}
