package dto

type FrameStats struct {
	Sampled  int `json:"sampled" example:"12"`
	Detected int `json:"detected" example:"11"`
	Skipped  int `json:"skipped" example:"1"`
}

type FeedbackResponse struct {
	Text     string `json:"text" example:"Great form! Try to keep your back knee a little lower."`
	Verdict  string `json:"verdict" example:"high"`
	Fallback bool   `json:"fallback" example:"false"`
}

type ComparisonResponse struct {
	ID         string            `json:"id" example:"cmp_5f1c..."`
	ExerciseID string            `json:"exercise_id,omitempty"`
	Action     string            `json:"action" example:"Low Lunge"`
	Distance   *float64          `json:"distance" example:"1.42"`
	Finite     bool              `json:"finite" example:"true"`
	Mode       string            `json:"mode" example:"per_frame"`
	Frames     int               `json:"frames" example:"9"`
	Dropped    int               `json:"dropped" example:"2"`
	Reference  FrameStats        `json:"reference"`
	Attempt    FrameStats        `json:"attempt"`
	Feedback   *FeedbackResponse `json:"feedback,omitempty"`
	CreatedAt  string            `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type ComparisonListResponse struct {
	Comparisons []ComparisonResponse `json:"comparisons"`
}
