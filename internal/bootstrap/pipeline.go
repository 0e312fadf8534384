package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eleven-am/pose-coach/internal/align"
	"github.com/eleven-am/pose-coach/internal/comparison"
	"github.com/eleven-am/pose-coach/internal/detector"
	"github.com/eleven-am/pose-coach/internal/exercise"
	"github.com/eleven-am/pose-coach/internal/feedback"
	"github.com/eleven-am/pose-coach/internal/pose"
	"github.com/eleven-am/pose-coach/internal/similarity"
	"github.com/eleven-am/pose-coach/internal/video"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/fx"
)

// NewDetector builds the configured pose detector backend.
func NewDetector(cfg *Config, logger *slog.Logger) (detector.Detector, error) {
	switch cfg.DetectorBackend {
	case DetectorHTTP:
		return detector.NewHTTPClient(detector.HTTPConfig{URL: cfg.DetectorURL}), nil
	case DetectorONNX:
		return detector.NewONNX(detector.ONNXConfig{
			ModelPath:   cfg.DetectorModelPath,
			LibraryPath: cfg.ONNXLibraryPath,
			Joints:      cfg.SkeletonSize,
			Logger:      logger,
		})
	default:
		return nil, fmt.Errorf("unknown detector backend %q", cfg.DetectorBackend)
	}
}

func PipelineConfig(cfg *Config) similarity.Config {
	return similarity.Config{
		Skeleton:        pose.SkeletonOfSize(cfg.SkeletonSize),
		SampleInterval:  cfg.SampleInterval,
		SmoothingWindow: cfg.SmoothingWindow,
		MinConfidence:   cfg.MinConfidence,
		VideoTimeout:    cfg.VideoTimeout,
		AlignMode:       align.ParseMode(cfg.AlignMode),
	}
}

// NewOpener decodes files with ffmpeg.
func NewOpener(cfg *Config, logger *slog.Logger) comparison.Opener {
	ffcfg := video.FFmpegConfig{
		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,
		Logger:      logger,
	}
	return func(ctx context.Context, path string) (video.Source, error) {
		src, err := video.OpenFile(ctx, path, ffcfg)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

// NewFeedbackService returns a service that always falls back when no API
// key is configured.
func NewFeedbackService(cfg *Config, logger *slog.Logger) *feedback.Service {
	var completer feedback.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = feedback.NewClient(feedback.Config{
			URL:     cfg.FeedbackURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.FeedbackModel,
			Timeout: cfg.FeedbackTimeout,
			Logger:  logger,
		})
	}
	return feedback.NewService(completer, cfg.AccuracyThreshold, logger)
}

func ProvideDetector(lc fx.Lifecycle, cfg *Config, logger *slog.Logger) (detector.Detector, error) {
	det, err := NewDetector(cfg, logger)
	if err != nil {
		return nil, err
	}
	if c, ok := det.(interface{ Close() error }); ok {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return c.Close()
			},
		})
	}
	logger.Info("pose detector ready", "backend", cfg.DetectorBackend)
	return det, nil
}

func ProvidePipeline(det detector.Detector, cfg *Config, logger *slog.Logger) *similarity.Pipeline {
	return similarity.New(det, PipelineConfig(cfg), logger)
}

func ProvideExerciseIndex(lc fx.Lifecycle, client *qdrant.Client, cfg *Config, logger *slog.Logger) *exercise.Index {
	idx := exercise.NewIndex(client, pose.SkeletonOfSize(cfg.SkeletonSize))
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := idx.EnsureCollection(ctx); err != nil {
				logger.Warn("exercise index unavailable, suggestions disabled", "error", err)
			}
			return nil
		},
	})
	return idx
}

type ComparisonParams struct {
	fx.In

	Config    *Config
	Pipeline  *similarity.Pipeline
	Exercises *exercise.Store
	Records   *comparison.Store
	Cache     *comparison.ReferenceCache
	Index     *exercise.Index
	Logger    *slog.Logger
}

func ProvideComparisonService(p ComparisonParams) *comparison.Service {
	return comparison.NewService(comparison.ServiceConfig{
		Pipeline:  p.Pipeline,
		Open:      NewOpener(p.Config, p.Logger),
		Exercises: p.Exercises,
		Records:   p.Records,
		Cache:     p.Cache,
		Advisor:   NewFeedbackService(p.Config, p.Logger),
		Suggester: p.Index,
		Logger:    p.Logger,
	})
}

var PipelineModule = fx.Options(
	fx.Provide(
		ProvideDetector,
		ProvidePipeline,
		ProvideExerciseIndex,
		ProvideComparisonService,
	),
)
