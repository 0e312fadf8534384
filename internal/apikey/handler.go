package apikey

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/eleven-am/pose-coach/internal/dto"
	"github.com/eleven-am/pose-coach/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  store,
		logger: logger.With("handler", "apikey"),
	}
}

// RegisterRoutes mounts key management; g is expected to require RoleAdmin.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.DELETE("/:id", h.Delete)
}

func keyToResponse(k *APIKey) dto.APIKeyResponse {
	resp := dto.APIKeyResponse{
		ID:        k.ID,
		Name:      k.Name,
		Role:      string(k.Role),
		Prefix:    k.Prefix,
		CreatedAt: k.CreatedAt.Format(time.RFC3339),
	}

	if k.ExpiresAt != nil {
		expiresAt := k.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &expiresAt
	}
	if k.LastUsedAt != nil {
		lastUsed := k.LastUsedAt.Format(time.RFC3339)
		resp.LastUsed = &lastUsed
	}
	return resp
}

// List godoc
// @Summary      List API keys
// @Tags         apikeys
// @Produce      json
// @Success      200  {object}  dto.APIKeyListResponse
// @Failure      401  {object}  shared.APIError
// @Failure      403  {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /admin/apikeys [get]
func (h *Handler) List(c echo.Context) error {
	keys, err := h.store.List(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list API keys", "error", err)
		return shared.InternalError("list_failed", "failed to list API keys")
	}

	response := make([]dto.APIKeyResponse, len(keys))
	for i, k := range keys {
		response[i] = keyToResponse(k)
	}
	return c.JSON(http.StatusOK, dto.APIKeyListResponse{APIKeys: response})
}

// Create godoc
// @Summary      Create an API key
// @Description  Creates a client or admin key. The secret is only returned once.
// @Tags         apikeys
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CreateAPIKeyRequest  true  "API key details"
// @Success      201      {object}  dto.CreateAPIKeyResponse
// @Failure      400      {object}  shared.APIError
// @Failure      401      {object}  shared.APIError
// @Failure      403      {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /admin/apikeys [post]
func (h *Handler) Create(c echo.Context) error {
	var req dto.CreateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	if req.Name == "" {
		return shared.BadRequest("missing_name", "name is required")
	}

	key := &APIKey{Name: req.Name, Role: RoleClient}
	if req.Role != "" {
		key.Role = Role(req.Role)
		if !key.Role.Valid() {
			return shared.BadRequest("invalid_role", "role must be client or admin")
		}
	}
	if req.ExpiresIn != nil && *req.ExpiresIn > 0 {
		expiresAt := time.Now().AddDate(0, 0, *req.ExpiresIn)
		key.ExpiresAt = &expiresAt
	}

	secret, err := h.store.Create(c.Request().Context(), key)
	if err != nil {
		h.logger.Error("failed to create API key", "error", err)
		return shared.InternalError("create_failed", "failed to create API key")
	}

	return c.JSON(http.StatusCreated, dto.CreateAPIKeyResponse{
		APIKeyResponse: keyToResponse(key),
		Secret:         secret,
	})
}

// Delete godoc
// @Summary      Delete an API key
// @Tags         apikeys
// @Param        id  path  string  true  "API Key ID"
// @Success      204  "No Content"
// @Failure      400  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /admin/apikeys/{id} [delete]
func (h *Handler) Delete(c echo.Context) error {
	keyID := c.Param("id")

	if current, ok := FromContext(c); ok && current.ID == keyID {
		return shared.BadRequest("cannot_delete_self", "a key cannot delete itself")
	}

	if err := h.store.Delete(c.Request().Context(), keyID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("key_not_found", "API key not found")
		}
		h.logger.Error("failed to delete API key", "error", err, "key_id", keyID)
		return shared.InternalError("delete_failed", "failed to delete API key")
	}
	return c.NoContent(http.StatusNoContent)
}
