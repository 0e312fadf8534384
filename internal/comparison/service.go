package comparison

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eleven-am/pose-coach/internal/exercise"
	"github.com/eleven-am/pose-coach/internal/feedback"
	"github.com/eleven-am/pose-coach/internal/metrics"
	"github.com/eleven-am/pose-coach/internal/pose"
	"github.com/eleven-am/pose-coach/internal/shared"
	"github.com/eleven-am/pose-coach/internal/similarity"
	"github.com/eleven-am/pose-coach/internal/video"
	"golang.org/x/sync/errgroup"
)

const (
	SideReference = "reference"
	SideAttempt   = "attempt"
)

type Pipeline interface {
	Extract(ctx context.Context, src video.Source) (*similarity.Extraction, error)
	CompareSequences(a, b pose.DescriptorSequence) (*similarity.Result, error)
	Config() similarity.Config
}

// Opener turns a file path into a decodable video.
type Opener func(ctx context.Context, path string) (video.Source, error)

type Advisor interface {
	Advise(ctx context.Context, distance float64, action string) feedback.Advice
}

type Suggester interface {
	Upsert(ctx context.Context, exerciseID string, seq pose.DescriptorSequence) error
	Nearest(ctx context.Context, seq pose.DescriptorSequence) (string, error)
}

type Service struct {
	pipeline  Pipeline
	open      Opener
	exercises *exercise.Store
	records   *Store
	cache     *ReferenceCache
	advisor   Advisor
	suggester Suggester
	logger    *slog.Logger
}

type ServiceConfig struct {
	Pipeline  Pipeline
	Open      Opener
	Exercises *exercise.Store
	Records   *Store
	Cache     *ReferenceCache
	Advisor   Advisor
	Suggester Suggester
	Logger    *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pipeline:  cfg.Pipeline,
		open:      cfg.Open,
		exercises: cfg.Exercises,
		records:   cfg.Records,
		cache:     cfg.Cache,
		advisor:   cfg.Advisor,
		suggester: cfg.Suggester,
		logger:    logger.With("component", "comparison"),
	}
}

// IndexReference extracts and caches an exercise's reference video and
// registers it with the suggester.
func (s *Service) IndexReference(ctx context.Context, ex *exercise.Exercise) error {
	_, err := s.reference(ctx, ex)
	return err
}

func (s *Service) reference(ctx context.Context, ex *exercise.Exercise) (*similarity.Extraction, error) {
	key := ReferenceKey(ex.ID, ex.UpdatedAt, s.pipeline.Config().Fingerprint())

	if s.cache != nil {
		ext, err := s.cache.Get(ctx, key)
		if err == nil {
			return ext, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("reference cache read failed", "exercise_id", ex.ID, "error", err)
		}
	}

	ext, err := s.extractFile(ctx, ex.ReferenceVideo, SideReference)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, ext); err != nil {
			s.logger.Warn("reference cache write failed", "exercise_id", ex.ID, "error", err)
		}
	}
	if s.suggester != nil {
		if err := s.suggester.Upsert(ctx, ex.ID, ext.Descriptors); err != nil {
			s.logger.Warn("reference index update failed", "exercise_id", ex.ID, "error", err)
		}
	}
	return ext, nil
}

func (s *Service) extractFile(ctx context.Context, path, side string) (*similarity.Extraction, error) {
	src, err := s.open(ctx, path)
	if err != nil {
		return nil, &similarity.CollaboratorError{Collaborator: similarity.CollaboratorDecoder, Err: err}
	}

	ext, err := s.pipeline.Extract(ctx, src)
	if errors.Is(err, similarity.ErrEmptySequence) {
		return nil, &similarity.SequenceError{Video: side, Err: err}
	}
	return ext, err
}

// CompareToExercise compares an uploaded attempt against the reference
// video of the given exercise.
func (s *Service) CompareToExercise(ctx context.Context, exerciseID, attemptPath string) (*Record, error) {
	defer observeDuration(time.Now())

	ex, err := s.exercises.Lookup(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	var ref, att *similarity.Extraction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ref, err = s.reference(gctx, ex)
		return err
	})
	g.Go(func() error {
		var err error
		att, err = s.extractFile(gctx, attemptPath, SideAttempt)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.ComparisonsTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, err
	}

	return s.finish(ctx, ex.ID, ex.Name, ref, att)
}

// CompareVideos compares two uploaded files. When action is empty the
// closest known exercise names the movement.
func (s *Service) CompareVideos(ctx context.Context, referencePath, attemptPath, action string) (*Record, error) {
	defer observeDuration(time.Now())

	var ref, att *similarity.Extraction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ref, err = s.extractFile(gctx, referencePath, SideReference)
		return err
	})
	g.Go(func() error {
		var err error
		att, err = s.extractFile(gctx, attemptPath, SideAttempt)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.ComparisonsTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, err
	}

	exerciseID := ""
	if action == "" {
		exerciseID, action = s.suggest(ctx, ref.Descriptors)
	}
	return s.finish(ctx, exerciseID, action, ref, att)
}

func (s *Service) suggest(ctx context.Context, seq pose.DescriptorSequence) (string, string) {
	const unknown = "exercise"
	if s.suggester == nil {
		return "", unknown
	}

	id, err := s.suggester.Nearest(ctx, seq)
	if err != nil || id == "" {
		if err != nil {
			s.logger.Warn("exercise suggestion failed", "error", err)
		}
		return "", unknown
	}

	ex, err := s.exercises.GetByID(ctx, id)
	if err != nil {
		return "", unknown
	}
	return ex.ID, ex.Name
}

func (s *Service) finish(ctx context.Context, exerciseID, action string, ref, att *similarity.Extraction) (*Record, error) {
	result, err := s.pipeline.CompareSequences(ref.Descriptors, att.Descriptors)
	if err != nil {
		return nil, err
	}
	result.A = ref.Stats
	result.B = att.Stats

	advice := s.advisor.Advise(ctx, result.Distance, action)
	rec := newRecord(exerciseID, action, result, advice)
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("save comparison: %w", err)
	}

	s.logger.Info("comparison stored",
		"id", rec.ID,
		"exercise_id", exerciseID,
		"distance", result.Distance,
		"verdict", advice.Verdict,
		"fallback", advice.Fallback,
	)
	return rec, nil
}

func observeDuration(start time.Time) {
	metrics.ComparisonDurationSeconds.Observe(time.Since(start).Seconds())
}

func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.records.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, exerciseID string, limit int) ([]*Record, error) {
	return s.records.List(ctx, exerciseID, limit)
}
