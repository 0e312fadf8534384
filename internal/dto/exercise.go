package dto

type SectionResponse struct {
	Title string   `json:"title" example:"Steps"`
	Lines []string `json:"lines"`
}

type ExerciseResponse struct {
	ID        string            `json:"id" example:"0b7c6c1e-3f9a-4b5e-9a53-2f1d2f0f7a10"`
	Slug      string            `json:"slug" example:"low-lunge"`
	Name      string            `json:"name" example:"Low Lunge"`
	Sections  []SectionResponse `json:"sections"`
	CreatedAt string            `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type ExerciseListResponse struct {
	Exercises []ExerciseResponse `json:"exercises"`
}

type CreateExerciseRequest struct {
	Slug           string            `json:"slug" example:"low-lunge"`
	Name           string            `json:"name" example:"Low Lunge"`
	Sections       []SectionResponse `json:"sections"`
	ReferenceVideo string            `json:"reference_video" example:"/data/videos/video1.mp4"`
}
