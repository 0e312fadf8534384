package similarity

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/eleven-am/pose-coach/internal/align"
	"github.com/eleven-am/pose-coach/internal/detector"
	"github.com/eleven-am/pose-coach/internal/metrics"
	"github.com/eleven-am/pose-coach/internal/pose"
	"github.com/eleven-am/pose-coach/internal/video"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Skeleton pose.Skeleton
	// SampleInterval is the source-time gap between analyzed frames.
	SampleInterval  time.Duration
	SmoothingWindow int
	// MinConfidence drops detections whose mean keypoint confidence is lower.
	MinConfidence float64
	VideoTimeout  time.Duration
	AlignMode     align.Mode
}

func (c Config) withDefaults() Config {
	if c.Skeleton.Size() == 0 {
		c.Skeleton = pose.COCO17
	}
	if c.SampleInterval == 0 {
		c.SampleInterval = time.Second
	}
	if c.SmoothingWindow == 0 {
		c.SmoothingWindow = pose.DefaultSmoothingWindow
	}
	if c.AlignMode == "" {
		c.AlignMode = align.ModePerFrame
	}
	return c
}

// Fingerprint identifies the settings that shape extracted descriptors.
func (c Config) Fingerprint() string {
	return fmt.Sprintf("%s.%d.%d.%d.%g", c.Skeleton.Name, c.Skeleton.Size(), c.SampleInterval.Milliseconds(), c.SmoothingWindow, c.MinConfidence)
}

// Stats describes what happened to one video's sampled frames.
type Stats struct {
	Sampled  int `json:"sampled"`
	Detected int `json:"detected"`
	Skipped  int `json:"skipped"`
}

type Extraction struct {
	Descriptors pose.DescriptorSequence `json:"descriptors"`
	Stats       Stats                   `json:"stats"`
}

type Result struct {
	Distance float64
	PerFrame []float64
	Frames   int
	Dropped  int
	Mode     align.Mode
	A        Stats
	B        Stats
}

func (r *Result) Finite() bool {
	return (&align.Alignment{Distance: r.Distance}).Finite()
}

// Pipeline turns videos into descriptor sequences and compares them.
type Pipeline struct {
	detector detector.Detector
	aligner  *align.Aligner
	cfg      Config
	logger   *slog.Logger
}

func New(det detector.Detector, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if !detector.SupportsConcurrency(det) {
		det = detector.Serialize(det)
	}
	cfg = cfg.withDefaults()

	return &Pipeline{
		detector: det,
		aligner:  align.NewAligner(cfg.AlignMode),
		cfg:      cfg,
		logger:   logger.With("component", "similarity"),
	}
}

func (p *Pipeline) Config() Config {
	return p.cfg
}

// Compare extracts both videos concurrently and aligns the results.
func (p *Pipeline) Compare(ctx context.Context, a, b video.Source) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.ComparisonDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	ea, eb, err := p.ExtractPair(ctx, a, b)
	if err != nil {
		return nil, err
	}

	result, err := p.CompareSequences(ea.Descriptors, eb.Descriptors)
	if err != nil {
		return nil, err
	}
	result.A = ea.Stats
	result.B = eb.Stats

	p.logger.Info("comparison complete",
		"distance", result.Distance,
		"frames", result.Frames,
		"dropped", result.Dropped,
		"sampled_a", ea.Stats.Sampled,
		"sampled_b", eb.Stats.Sampled,
	)
	return result, nil
}

// ExtractPair runs Extract on both sources at once. The shared detector is
// the only synchronization point between the two passes.
func (p *Pipeline) ExtractPair(ctx context.Context, a, b video.Source) (*Extraction, *Extraction, error) {
	var ea, eb *Extraction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ea, err = p.Extract(gctx, a)
		return sideError("a", err)
	})
	g.Go(func() error {
		var err error
		eb, err = p.Extract(gctx, b)
		return sideError("b", err)
	})
	if err := g.Wait(); err != nil {
		metrics.ComparisonsTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, nil, err
	}
	return ea, eb, nil
}

func sideError(side string, err error) error {
	if errors.Is(err, ErrEmptySequence) {
		return &SequenceError{Video: side, Err: err}
	}
	return err
}

// CompareSequences aligns two descriptor sequences that were already
// extracted, e.g. a cached reference against a fresh upload.
func (p *Pipeline) CompareSequences(a, b pose.DescriptorSequence) (*Result, error) {
	if len(a) == 0 {
		metrics.ComparisonsTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, &SequenceError{Video: "a", Err: ErrEmptySequence}
	}
	if len(b) == 0 {
		metrics.ComparisonsTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, &SequenceError{Video: "b", Err: ErrEmptySequence}
	}

	al, err := p.aligner.Align(a, b)
	if err != nil {
		metrics.ComparisonsTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, err
	}

	metrics.ComparisonsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	if al.Finite() {
		metrics.ComparisonDistance.Observe(al.Distance)
	}
	return &Result{
		Distance: al.Distance,
		PerFrame: al.PerFrame,
		Frames:   al.Frames,
		Dropped:  al.Dropped,
		Mode:     p.aligner.Mode(),
	}, nil
}

// Extract samples src, keeps the most confident person per frame and
// returns the smoothed descriptor sequence.
func (p *Pipeline) Extract(ctx context.Context, src video.Source) (*Extraction, error) {
	if p.cfg.VideoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.VideoTimeout)
		defer cancel()
	}

	k := p.cfg.Skeleton.Size()
	step := video.Step(src.Info(), p.cfg.SampleInterval)

	var (
		stats Stats
		seq   pose.Sequence
	)

	err := src.Frames(ctx, step, func(index int, img image.Image) error {
		stats.Sampled++
		metrics.FramesSampledTotal.Inc()

		frame, reason, err := p.frame(ctx, img, k)
		if err != nil {
			return err
		}
		if reason != "" {
			stats.Skipped++
			metrics.FramesSkippedTotal.WithLabelValues(reason).Inc()
			p.logger.Debug("frame skipped", "index", index, "reason", reason)
			return nil
		}

		stats.Detected++
		seq = append(seq, frame)
		return nil
	})
	if err != nil {
		var ce *CollaboratorError
		switch {
		case errors.As(err, &ce):
			return nil, err
		case ctx.Err() != nil:
			return nil, fmt.Errorf("extraction interrupted: %w", ctx.Err())
		default:
			return nil, &CollaboratorError{Collaborator: CollaboratorDecoder, Err: err}
		}
	}

	if len(seq) == 0 {
		return nil, ErrEmptySequence
	}

	smoothed := pose.Smooth(seq, p.cfg.SmoothingWindow)
	return &Extraction{
		Descriptors: pose.EncodeSequence(smoothed),
		Stats:       stats,
	}, nil
}

// frame runs detection on one image. A non-empty reason means the frame is
// skipped without failing the extraction.
func (p *Pipeline) frame(ctx context.Context, img image.Image, k int) (pose.Frame, string, error) {
	start := time.Now()
	people, err := p.detector.Detect(ctx, img)
	metrics.DetectorDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", &CollaboratorError{Collaborator: CollaboratorDetector, Err: err}
	}

	person, ok := pose.MostConfident(people)
	if !ok || person.MeanConfidence() < p.cfg.MinConfidence {
		return nil, metrics.ReasonNoPerson, nil
	}

	b := img.Bounds()
	frame, err := pose.NormalizeFrame(person, float64(b.Dx()), float64(b.Dy()), k)
	if errors.Is(err, pose.ErrDegenerateFrame) {
		return nil, metrics.ReasonDegenerate, nil
	}
	if err != nil {
		return nil, "", err
	}
	return frame, "", nil
}
