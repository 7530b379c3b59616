package store

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/jaennil/tileview/pkg/logger"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiles.db")
	s, err := NewSQLiteStore(path, 2, logger.NewNoop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(s.Close)
	return s, path
}

func testRecord(row, col int, preview bool, data []byte) TileRecord {
	return TileRecord{
		Row:       row,
		Col:       col,
		Preview:   preview,
		Extension: "png",
		Width:     128,
		Height:    128,
		Filepath:  "images/r000_c000.png",
		Data:      data,
	}
}

func TestUpsertAndGet(t *testing.T) {
	s, _ := newTestStore(t)

	want := testRecord(3, 7, false, []byte("tile-bytes"))
	if err := s.Upsert(want); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, ok, err := s.Get(3, 7, false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected record to exist")
	}
	if !bytes.Equal(got.Data, want.Data) {
		t.Errorf("data mismatch: got %q want %q", got.Data, want.Data)
	}
	if got.Extension != "png" || got.Width != 128 || got.Height != 128 {
		t.Errorf("unexpected record fields: %+v", got)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	s, _ := newTestStore(t)

	rec := testRecord(1, 1, false, []byte("same"))
	if err := s.Upsert(rec); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := s.Upsert(rec); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, ok, err := s.Get(1, 1, false)
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got.Data, rec.Data) {
		t.Errorf("data mismatch after duplicate upsert: got %q", got.Data)
	}
}

func TestUpsertReplaces(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Upsert(testRecord(2, 2, false, []byte("old"))); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.Upsert(testRecord(2, 2, false, []byte("new"))); err != nil {
		t.Fatalf("replacing upsert failed: %v", err)
	}

	got, ok, err := s.Get(2, 2, false)
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if string(got.Data) != "new" {
		t.Errorf("expected replaced bytes, got %q", got.Data)
	}
}

func TestTiersAreIndependent(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Upsert(testRecord(0, 0, false, []byte("full"))); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.Upsert(testRecord(0, 0, true, []byte("preview"))); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	full, ok, _ := s.Get(0, 0, false)
	if !ok || string(full.Data) != "full" {
		t.Errorf("full tier record wrong: ok=%v data=%q", ok, full.Data)
	}
	preview, ok, _ := s.Get(0, 0, true)
	if !ok || string(preview.Data) != "preview" {
		t.Errorf("preview tier record wrong: ok=%v data=%q", ok, preview.Data)
	}
}

func TestGetMissing(t *testing.T) {
	s, _ := newTestStore(t)

	_, ok, err := s.Get(99, 99, false)
	if err != nil {
		t.Fatalf("missing record should not be an error: %v", err)
	}
	if ok {
		t.Error("expected record to be absent")
	}
}

func TestBounds(t *testing.T) {
	s, _ := newTestStore(t)

	for _, row := range []int{0, 1, 2, 3} {
		for _, col := range []int{0, 1} {
			rec := testRecord(row, col, false, []byte("x"))
			if row == 3 {
				rec.Extension = "jpg"
			}
			if err := s.Upsert(rec); err != nil {
				t.Fatalf("upsert failed: %v", err)
			}
		}
	}

	b, ok, err := s.Bounds(false)
	if err != nil {
		t.Fatalf("bounds failed: %v", err)
	}
	if !ok {
		t.Fatal("expected bounds for populated tier")
	}
	if b.MinRow != 0 || b.MaxRow != 3 || b.MinCol != 0 || b.MaxCol != 1 {
		t.Errorf("unexpected bounds: %+v", b)
	}
	if len(b.Extensions) != 2 || b.Extensions[0] != "jpg" || b.Extensions[1] != "png" {
		t.Errorf("unexpected extensions: %v", b.Extensions)
	}
}

func TestBoundsEmptyTier(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Upsert(testRecord(0, 0, false, []byte("x"))); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	_, ok, err := s.Bounds(true)
	if err != nil {
		t.Fatalf("empty tier must not be an error: %v", err)
	}
	if ok {
		t.Error("expected no bounds for empty tier")
	}
}

func TestBootstrapFlagSurvivesReopen(t *testing.T) {
	s, path := newTestStore(t)

	scanned, err := s.IsBootstrapped()
	if err != nil {
		t.Fatalf("IsBootstrapped failed: %v", err)
	}
	if scanned {
		t.Fatal("fresh store must not be bootstrapped")
	}

	if err = s.MarkBootstrapped(); err != nil {
		t.Fatalf("MarkBootstrapped failed: %v", err)
	}
	s.Close()

	reopened, err := NewSQLiteStore(path, 2, logger.NewNoop())
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	scanned, err = reopened.IsBootstrapped()
	if err != nil {
		t.Fatalf("IsBootstrapped failed after reopen: %v", err)
	}
	if !scanned {
		t.Error("scanned flag must survive restart")
	}
}

func TestDimensionsFirstWriterWins(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.SetDimensionsIfAbsent(false, 128, 128); err != nil {
		t.Fatalf("SetDimensionsIfAbsent failed: %v", err)
	}
	// a later, differently sized tile must not override the grid dimensions
	if err := s.SetDimensionsIfAbsent(false, 64, 32); err != nil {
		t.Fatalf("second SetDimensionsIfAbsent failed: %v", err)
	}
	if err := s.SetDimensionsIfAbsent(true, 64, 64); err != nil {
		t.Fatalf("preview SetDimensionsIfAbsent failed: %v", err)
	}

	md, err := s.Dimensions()
	if err != nil {
		t.Fatalf("Dimensions failed: %v", err)
	}
	if md.TileWidth != 128 || md.TileHeight != 128 {
		t.Errorf("tile dimensions overridden: %+v", md)
	}
	if md.PreviewWidth != 64 || md.PreviewHeight != 64 {
		t.Errorf("unexpected preview dimensions: %+v", md)
	}
}
