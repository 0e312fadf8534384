package comparison

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/eleven-am/pose-coach/internal/align"
	"github.com/eleven-am/pose-coach/internal/dto"
	"github.com/eleven-am/pose-coach/internal/shared"
	"github.com/eleven-am/pose-coach/internal/similarity"
	"github.com/labstack/echo/v4"
)

const maxVideoSize = 200 << 20

type Handler struct {
	service   *Service
	uploadDir string
	logger    *slog.Logger
}

func NewHandler(service *Service, uploadDir string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:   service,
		uploadDir: uploadDir,
		logger:    logger.With("handler", "comparison"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/comparisons", h.Compare)
	g.GET("/comparisons", h.List)
	g.GET("/comparisons/:id", h.Get)
	g.POST("/exercises/:id/compare", h.CompareToExercise)
}

func ToResponse(r *Record) dto.ComparisonResponse {
	resp := dto.ComparisonResponse{
		ID:         r.ID,
		ExerciseID: r.ExerciseID,
		Action:     r.Action,
		Finite:     r.Finite,
		Mode:       r.Mode,
		Frames:     r.Frames,
		Dropped:    r.Dropped,
		Reference: dto.FrameStats{
			Sampled:  r.ReferenceSampled,
			Detected: r.ReferenceDetected,
			Skipped:  r.ReferenceSkipped,
		},
		Attempt: dto.FrameStats{
			Sampled:  r.AttemptSampled,
			Detected: r.AttemptDetected,
			Skipped:  r.AttemptSkipped,
		},
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.Finite {
		d := r.Distance
		resp.Distance = &d
	}
	if r.Feedback != "" {
		resp.Feedback = &dto.FeedbackResponse{
			Text:     r.Feedback,
			Verdict:  r.Verdict,
			Fallback: r.FeedbackFallback,
		}
	}
	return resp
}

// Compare godoc
// @Summary      Compare two videos
// @Description  Compares an attempt against a reference video and returns the distance with coaching feedback
// @Tags         comparisons
// @Accept       multipart/form-data
// @Produce      json
// @Param        reference  formData  file    true   "Reference video"
// @Param        attempt    formData  file    true   "Attempt video"
// @Param        action     formData  string  false  "Movement name"
// @Success      201  {object}  dto.ComparisonResponse
// @Failure      400  {object}  shared.APIError
// @Failure      422  {object}  shared.APIError
// @Failure      502  {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /comparisons [post]
func (h *Handler) Compare(c echo.Context) error {
	refPath, cleanupRef, err := h.saveUpload(c, SideReference)
	if err != nil {
		return err
	}
	defer cleanupRef()

	attPath, cleanupAtt, err := h.saveUpload(c, SideAttempt)
	if err != nil {
		return err
	}
	defer cleanupAtt()

	rec, err := h.service.CompareVideos(c.Request().Context(), refPath, attPath, c.FormValue("action"))
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusCreated, ToResponse(rec))
}

// CompareToExercise godoc
// @Summary      Compare against an exercise
// @Description  Compares an uploaded attempt with the exercise's reference video
// @Tags         comparisons
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "Exercise ID or slug"
// @Param        video  formData  file    true  "Attempt video"
// @Success      201  {object}  dto.ComparisonResponse
// @Failure      404  {object}  shared.APIError
// @Failure      422  {object}  shared.APIError
// @Failure      502  {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /exercises/{id}/compare [post]
func (h *Handler) CompareToExercise(c echo.Context) error {
	path, cleanup, err := h.saveUpload(c, "video")
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := h.service.CompareToExercise(c.Request().Context(), c.Param("id"), path)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusCreated, ToResponse(rec))
}

// Get godoc
// @Summary      Get a comparison
// @Tags         comparisons
// @Produce      json
// @Param        id   path      string  true  "Comparison ID"
// @Success      200  {object}  dto.ComparisonResponse
// @Failure      404  {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /comparisons/{id} [get]
func (h *Handler) Get(c echo.Context) error {
	rec, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("comparison_not_found", "comparison not found")
		}
		return shared.InternalError("get_failed", "failed to get comparison")
	}
	return c.JSON(http.StatusOK, ToResponse(rec))
}

// List godoc
// @Summary      List comparisons
// @Tags         comparisons
// @Produce      json
// @Param        exercise_id  query     string  false  "Filter by exercise"
// @Param        limit        query     int     false  "Maximum results"
// @Success      200  {object}  dto.ComparisonListResponse
// @Security     APIKeyAuth
// @Router       /comparisons [get]
func (h *Handler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return shared.BadRequest("invalid_limit", "limit must be a positive integer")
		}
		limit = n
	}

	records, err := h.service.List(c.Request().Context(), c.QueryParam("exercise_id"), limit)
	if err != nil {
		h.logger.Error("failed to list comparisons", "error", err)
		return shared.InternalError("list_failed", "failed to list comparisons")
	}

	response := make([]dto.ComparisonResponse, len(records))
	for i, r := range records {
		response[i] = ToResponse(r)
	}
	return c.JSON(http.StatusOK, dto.ComparisonListResponse{Comparisons: response})
}

func (h *Handler) saveUpload(c echo.Context, field string) (string, func(), error) {
	noop := func() {}

	file, err := c.FormFile(field)
	if err != nil {
		return "", noop, shared.BadRequest("missing_file", field+" video is required")
	}
	if file.Size > maxVideoSize {
		return "", noop, shared.TooLarge("file_too_large", "video too large (max 200MB)")
	}

	src, err := file.Open()
	if err != nil {
		return "", noop, shared.InternalError("file_error", "failed to open upload")
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.uploadDir, "upload-*"+filepath.Ext(file.Filename))
	if err != nil {
		h.logger.Error("failed to create upload file", "error", err)
		return "", noop, shared.InternalError("file_error", "failed to store upload")
	}
	cleanup := func() { os.Remove(dst.Name()) }

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		cleanup()
		return "", noop, shared.InternalError("file_error", "failed to store upload")
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", noop, shared.InternalError("file_error", "failed to store upload")
	}
	return dst.Name(), cleanup, nil
}

func (h *Handler) mapError(err error) error {
	var (
		seqErr  *similarity.SequenceError
		collErr *similarity.CollaboratorError
	)

	switch {
	case errors.Is(err, shared.ErrNotFound):
		return shared.NotFound("exercise_not_found", "exercise not found")
	case errors.As(err, &seqErr):
		return shared.NewAPIError("empty_sequence", "no person could be detected in the "+seqErr.Video+" video").
			WithDetails(map[string]string{"video": seqErr.Video}).
			ToHTTP(http.StatusUnprocessableEntity)
	case errors.Is(err, align.ErrNoComparableFrames):
		return shared.Unprocessable("no_comparable_frames", "the videos have no comparable frames")
	case errors.As(err, &collErr) && collErr.Collaborator == similarity.CollaboratorDecoder:
		h.logger.Warn("video decode failed", "error", err)
		return shared.Unprocessable("invalid_video", "the uploaded video could not be decoded")
	case errors.As(err, &collErr):
		h.logger.Error("pose detector failed", "error", err)
		return shared.BadGateway("detector_failed", "pose detection failed")
	case errors.Is(err, context.DeadlineExceeded):
		return shared.Timeout("timeout", "video processing timed out")
	default:
		h.logger.Error("comparison failed", "error", err)
		return shared.InternalError("comparison_failed", "comparison failed")
	}
}
