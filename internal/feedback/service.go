package feedback

import (
	"context"
	"log/slog"
	"math"

	"github.com/eleven-am/pose-coach/internal/metrics"
)

// FallbackMessage is returned whenever feedback cannot be generated.
const FallbackMessage = "There was a problem generating feedback. Still: try to keep correct " +
	"posture while repeating the exercise. Consistency matters!"

type Advice struct {
	Text     string  `json:"text"`
	Verdict  Verdict `json:"verdict"`
	Fallback bool    `json:"fallback"`
}

// Service turns a distance into coaching text. It never fails; errors from
// the completer are logged and replaced with FallbackMessage.
type Service struct {
	completer Completer
	threshold float64
	logger    *slog.Logger
}

func NewService(completer Completer, threshold float64, logger *slog.Logger) *Service {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		completer: completer,
		threshold: threshold,
		logger:    logger.With("component", "feedback"),
	}
}

func (s *Service) Threshold() float64 {
	return s.threshold
}

func (s *Service) Advise(ctx context.Context, distance float64, action string) Advice {
	verdict := VerdictFor(distance, s.threshold)
	fallback := Advice{Text: FallbackMessage, Verdict: verdict, Fallback: true}

	if s.completer == nil {
		metrics.FeedbackRequestsTotal.WithLabelValues(metrics.ResultFallback).Inc()
		return fallback
	}
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		s.logger.Warn("non-finite distance, using fallback", "action", action)
		metrics.FeedbackRequestsTotal.WithLabelValues(metrics.ResultFallback).Inc()
		return fallback
	}

	text, err := s.completer.Complete(ctx, buildMessages(distance, action, s.threshold))
	if err != nil {
		s.logger.Error("feedback generation failed", "action", action, "error", err)
		metrics.FeedbackRequestsTotal.WithLabelValues(metrics.ResultFallback).Inc()
		return fallback
	}

	metrics.FeedbackRequestsTotal.WithLabelValues(metrics.ResultGenerated).Inc()
	return Advice{Text: text, Verdict: verdict}
}
