package comparison

import (
	"math"
	"time"

	"github.com/eleven-am/pose-coach/internal/feedback"
	"github.com/eleven-am/pose-coach/internal/similarity"
)

// Record is one stored comparison. Distance is only meaningful when Finite
// is true; infinite results are kept with Distance 0.
type Record struct {
	ID                string `gorm:"primaryKey"`
	ExerciseID        string `gorm:"index"`
	Action            string `gorm:"not null"`
	Distance          float64
	Finite            bool
	Mode              string
	Frames            int
	Dropped           int
	ReferenceSampled  int
	ReferenceDetected int
	ReferenceSkipped  int
	AttemptSampled    int
	AttemptDetected   int
	AttemptSkipped    int
	Feedback          string `gorm:"type:text"`
	Verdict           string
	FeedbackFallback  bool
	CreatedAt         time.Time `gorm:"index"`
}

func newRecord(exerciseID, action string, result *similarity.Result, advice feedback.Advice) *Record {
	rec := &Record{
		ExerciseID:        exerciseID,
		Action:            action,
		Finite:            result.Finite(),
		Mode:              string(result.Mode),
		Frames:            result.Frames,
		Dropped:           result.Dropped,
		ReferenceSampled:  result.A.Sampled,
		ReferenceDetected: result.A.Detected,
		ReferenceSkipped:  result.A.Skipped,
		AttemptSampled:    result.B.Sampled,
		AttemptDetected:   result.B.Detected,
		AttemptSkipped:    result.B.Skipped,
		Feedback:          advice.Text,
		Verdict:           string(advice.Verdict),
		FeedbackFallback:  advice.Fallback,
	}
	if rec.Finite {
		rec.Distance = result.Distance
	}
	return rec
}

// Value returns the distance, or +Inf when the comparison was not finite.
func (r *Record) Value() float64 {
	if !r.Finite {
		return math.Inf(1)
	}
	return r.Distance
}
