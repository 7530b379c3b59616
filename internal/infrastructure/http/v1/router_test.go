package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/jaennil/tileview/internal/infrastructure/http/v1/handler"
	"github.com/jaennil/tileview/internal/repository/cache"
	"github.com/jaennil/tileview/internal/repository/store"
	"github.com/jaennil/tileview/internal/usecase"
	"github.com/jaennil/tileview/internal/viewlog"
	"github.com/jaennil/tileview/pkg/logger"
)

func newTestRouter(t *testing.T) (http.Handler, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "tiles.db"), 2, logger.NewNoop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(s.Close)

	views, err := viewlog.Open(filepath.Join(t.TempDir(), "views.log"))
	if err != nil {
		t.Fatalf("failed to open view log: %v", err)
	}
	t.Cleanup(func() { views.Close() })

	uc := usecase.NewTileUseCase(s, cache.NewLRUCache(10), cache.NewSummaryCache(), logger.NewNoop())
	h := handler.NewHandler(validator.New(), uc, views)

	return NewRouter(h, logger.NewNoop(), false), s
}

func TestTileEndpoint(t *testing.T) {
	router, s := newTestRouter(t)

	err := s.Upsert(store.TileRecord{
		Row: 5, Col: 10, Extension: "png", Width: 128, Height: 128,
		Filepath: "images/r005_c010.png", Data: []byte("png-bytes"),
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tile/5/10", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("unexpected content type: %s", ct)
	}
	if w.Body.String() != "png-bytes" {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}

func TestTileEndpointNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tile/5/10", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestTileEndpointBadParams(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tile/abc/10", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	router, s := newTestRouter(t)

	err := s.Upsert(store.TileRecord{
		Row: 1, Col: 2, Preview: true, Extension: "jpg", Width: 64, Height: 64,
		Filepath: "images/r001_c002_preview.jpg", Data: []byte("jpg-bytes"),
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/preview/1/2", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("unexpected content type: %s", ct)
	}
}

func TestMetadataEndpoint(t *testing.T) {
	router, s := newTestRouter(t)

	err := s.Upsert(store.TileRecord{
		Row: 0, Col: 0, Extension: "png", Width: 128, Height: 128,
		Filepath: "images/r000_c000.png", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/metadata", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool          `json:"success"`
		Data    cache.Summary `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("malformed response: %v", err)
	}
	if !resp.Success || resp.Data.Empty {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestRecordViewEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/views", strings.NewReader(`{"row":1,"col":2}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/views", strings.NewReader(`{"row":-1,"col":2}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid event, got %d", w.Code)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
