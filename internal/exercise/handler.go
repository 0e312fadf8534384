package exercise

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/eleven-am/pose-coach/internal/dto"
	"github.com/eleven-am/pose-coach/internal/shared"
	"github.com/labstack/echo/v4"
)

// ReferenceIndexer prepares an exercise's reference video for comparisons.
type ReferenceIndexer interface {
	IndexReference(ctx context.Context, ex *Exercise) error
}

type Handler struct {
	store   *Store
	indexer ReferenceIndexer
	logger  *slog.Logger
}

func NewHandler(store *Store, indexer ReferenceIndexer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:   store,
		indexer: indexer,
		logger:  logger.With("handler", "exercise"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

func (h *Handler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("", h.Create)
}

func ToResponse(ex *Exercise) dto.ExerciseResponse {
	sections := make([]dto.SectionResponse, len(ex.Sections))
	for i, s := range ex.Sections {
		sections[i] = dto.SectionResponse{Title: s.Title, Lines: s.Lines}
	}
	return dto.ExerciseResponse{
		ID:        ex.ID,
		Slug:      ex.Slug,
		Name:      ex.Name,
		Sections:  sections,
		CreatedAt: ex.CreatedAt.Format(time.RFC3339),
	}
}

// List godoc
// @Summary      List exercises
// @Tags         exercises
// @Produce      json
// @Success      200  {object}  dto.ExerciseListResponse
// @Failure      500  {object}  shared.APIError
// @Router       /exercises [get]
func (h *Handler) List(c echo.Context) error {
	exercises, err := h.store.List(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list exercises", "error", err)
		return shared.InternalError("list_failed", "failed to list exercises")
	}

	response := make([]dto.ExerciseResponse, len(exercises))
	for i, ex := range exercises {
		response[i] = ToResponse(ex)
	}
	return c.JSON(http.StatusOK, dto.ExerciseListResponse{Exercises: response})
}

// Get godoc
// @Summary      Get an exercise
// @Tags         exercises
// @Produce      json
// @Param        id   path      string  true  "Exercise ID or slug"
// @Success      200  {object}  dto.ExerciseResponse
// @Failure      404  {object}  shared.APIError
// @Router       /exercises/{id} [get]
func (h *Handler) Get(c echo.Context) error {
	ex, err := h.store.Lookup(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("exercise_not_found", "exercise not found")
		}
		return shared.InternalError("get_failed", "failed to get exercise")
	}
	return c.JSON(http.StatusOK, ToResponse(ex))
}

// Create godoc
// @Summary      Create an exercise
// @Tags         exercises
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CreateExerciseRequest  true  "Exercise"
// @Success      201      {object}  dto.ExerciseResponse
// @Failure      400      {object}  shared.APIError
// @Failure      409      {object}  shared.APIError
// @Router       /admin/exercises [post]
func (h *Handler) Create(c echo.Context) error {
	var req dto.CreateExerciseRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	if req.Slug == "" || req.Name == "" {
		return shared.BadRequest("missing_fields", "slug and name are required")
	}
	if req.ReferenceVideo == "" {
		return shared.BadRequest("missing_reference", "reference_video is required")
	}

	ctx := c.Request().Context()
	if _, err := h.store.GetBySlug(ctx, req.Slug); err == nil {
		return shared.Conflict("exercise_exists", "an exercise with this slug already exists")
	}

	sections := make(Sections, len(req.Sections))
	for i, s := range req.Sections {
		sections[i] = Section{Title: s.Title, Lines: s.Lines}
	}

	ex := &Exercise{
		Slug:           req.Slug,
		Name:           req.Name,
		Sections:       sections,
		ReferenceVideo: req.ReferenceVideo,
	}
	if err := h.store.Create(ctx, ex); err != nil {
		h.logger.Error("failed to create exercise", "error", err, "slug", req.Slug)
		return shared.InternalError("create_failed", "failed to create exercise")
	}

	if h.indexer != nil {
		go h.indexReference(ex)
	}

	return c.JSON(http.StatusCreated, ToResponse(ex))
}

func (h *Handler) indexReference(ex *Exercise) {
	if err := h.indexer.IndexReference(context.Background(), ex); err != nil {
		h.logger.Warn("failed to index reference", "exercise_id", ex.ID, "error", err)
	}
}
