package apikey

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eleven-am/pose-coach/internal/dto"
	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *Store) {
	store := setupTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(store, logger), store
}

func statusOf(t *testing.T, err error) int {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	h.RegisterRoutes(e.Group("/admin/apikeys"))

	paths := map[string]bool{}
	for _, r := range e.Routes() {
		paths[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{"GET /admin/apikeys", "POST /admin/apikeys", "DELETE /admin/apikeys/:id"} {
		if !paths[want] {
			t.Errorf("expected route %s to be registered", want)
		}
	}
}

func TestHandler_Create(t *testing.T) {
	h, store := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/admin/apikeys", strings.NewReader(`{"name":"Tablet","expires_in_days":30}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.CreateAPIKeyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Role != "client" || resp.ExpiresAt == nil {
		t.Errorf("unexpected response %+v", resp)
	}

	if _, err := store.Validate(context.Background(), resp.Secret); err != nil {
		t.Errorf("returned secret does not validate: %v", err)
	}
}

func TestHandler_Create_Validation(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	for _, body := range []string{`{}`, `{"name":"x","role":"owner"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/admin/apikeys", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

		if status := statusOf(t, h.Create(e.NewContext(req, httptest.NewRecorder()))); status != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, status)
		}
	}
}

func TestHandler_List(t *testing.T) {
	h, store := newTestHandler(t)
	store.Create(context.Background(), &APIKey{Name: "a"})
	store.Create(context.Background(), &APIKey{Name: "b", Role: RoleAdmin})

	e := echo.New()
	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(httptest.NewRequest(http.MethodGet, "/admin/apikeys", nil), rec)); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var resp dto.APIKeyListResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.APIKeys) != 2 {
		t.Errorf("expected 2 keys, got %d", len(resp.APIKeys))
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Error("list must not expose secrets")
	}
}

func TestHandler_Delete(t *testing.T) {
	h, store := newTestHandler(t)
	key := &APIKey{Name: "a"}
	store.Create(context.Background(), key)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/admin/apikeys/"+key.ID, nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(key.ID)

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/admin/apikeys/"+key.ID, nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(key.ID)
	if status := statusOf(t, h.Delete(c)); status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}
}

func TestHandler_Delete_Self(t *testing.T) {
	h, store := newTestHandler(t)
	key := &APIKey{Name: "admin", Role: RoleAdmin}
	store.Create(context.Background(), key)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/admin/apikeys/"+key.ID, nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(key.ID)
	c.Set(contextKey, key)

	if status := statusOf(t, h.Delete(c)); status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", status)
	}
}

func TestKeyToResponse(t *testing.T) {
	now := time.Now()
	lastUsed := now.Add(-time.Hour)
	resp := keyToResponse(&APIKey{ID: "key_1", Name: "k", Role: RoleAdmin, CreatedAt: now, LastUsedAt: &lastUsed})

	if resp.Role != "admin" || resp.LastUsed == nil {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.ExpiresAt != nil {
		t.Error("expected ExpiresAt to be nil")
	}
}
