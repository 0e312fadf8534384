package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Pipeline Metrics
// =============================================================================

var (
	// ComparisonsTotal counts pairwise comparisons by outcome
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posecoach_comparisons_total",
			Help: "Total number of pose sequence comparisons",
		},
		[]string{"status"},
	)

	// ComparisonDurationSeconds measures end-to-end comparison latency
	ComparisonDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "posecoach_comparison_duration_seconds",
			Help:    "Latency of a full two-video comparison",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	// ComparisonDistance records finite distances produced by the aligner
	ComparisonDistance = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "posecoach_comparison_distance",
			Help:    "Distribution of finite comparison distances",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 1.5, 2, 3, 5, 10},
		},
	)

	// FramesSampledTotal counts frames handed to the detector
	FramesSampledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posecoach_frames_sampled_total",
			Help: "Total video frames sampled for pose detection",
		},
	)

	// FramesSkippedTotal counts sampled frames dropped before normalization
	FramesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posecoach_frames_skipped_total",
			Help: "Sampled frames dropped before normalization",
		},
		[]string{"reason"},
	)

	// DetectorDurationSeconds measures per-frame detector latency
	DetectorDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "posecoach_detector_duration_seconds",
			Help:    "Latency of a single pose detector call",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
	)
)

// =============================================================================
// Feedback & Cache Metrics
// =============================================================================

var (
	// FeedbackRequestsTotal counts feedback generation attempts
	FeedbackRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posecoach_feedback_requests_total",
			Help: "Total feedback generation requests",
		},
		[]string{"result"},
	)

	// ReferenceCacheTotal counts reference descriptor cache lookups
	ReferenceCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posecoach_reference_cache_total",
			Help: "Reference descriptor cache lookups",
		},
		[]string{"result"},
	)
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	ReasonNoPerson   = "no_person"
	ReasonDegenerate = "degenerate"

	ResultGenerated = "generated"
	ResultFallback  = "fallback"

	CacheHit  = "hit"
	CacheMiss = "miss"
)
