package store

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/jaennil/tileview/pkg/logger"
	"github.com/jaennil/tileview/pkg/metrics"
)

const (
	metaTileWidth     = "tile_width"
	metaTileHeight    = "tile_height"
	metaPreviewWidth  = "preview_width"
	metaPreviewHeight = "preview_height"
	metaScanned       = "scanned"
)

// SQLiteStore is the persistence authority for tile records. Hot cache and
// summary cache are disposable projections of it; on any doubt their content
// is recomputed from here.
type SQLiteStore struct {
	pool   *Pool
	logger logger.Logger
}

var _ TileStore = (*SQLiteStore)(nil)

func NewSQLiteStore(path string, poolSize int, l logger.Logger) (*SQLiteStore, error) {
	s := &SQLiteStore{
		pool:   NewPool(path, poolSize),
		logger: l,
	}

	h, err := s.pool.Acquire()
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(h)

	if err = s.runMigrations(h); err != nil {
		return nil, err
	}

	l.Info("sqlite tile store initialized", "path", path, "pool_size", poolSize)

	return s, nil
}

func (s *SQLiteStore) runMigrations(h *Handle) error {
	goose.SetBaseFS(migrations)

	err := goose.SetDialect("sqlite3")
	if err != nil {
		return err
	}

	err = goose.Up(h.db, "migrations")
	if err != nil {
		return err
	}

	return nil
}

func (s *SQLiteStore) Close() {
	s.pool.Close()
}

func (s *SQLiteStore) Upsert(rec TileRecord) error {
	s.logger.Debug("tile store upsert", "row", rec.Row, "col", rec.Col, "preview", rec.Preview, "size", len(rec.Data))
	defer observe("upsert", time.Now())

	h, err := s.pool.Acquire()
	if err != nil {
		return err
	}
	defer s.pool.Release(h)

	query := `INSERT INTO tiles (tile_row, tile_col, is_preview, extension, width, height, filepath, tile_data)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(tile_row, tile_col, is_preview) DO UPDATE SET
		extension = excluded.extension,
		width = excluded.width,
		height = excluded.height,
		filepath = excluded.filepath,
		tile_data = excluded.tile_data`

	_, err = h.db.Exec(query, rec.Row, rec.Col, rec.Preview, rec.Extension, rec.Width, rec.Height, rec.Filepath, rec.Data)
	if err != nil {
		s.logger.Error("tile store upsert failed", "row", rec.Row, "col", rec.Col, "preview", rec.Preview, "error", err)
		return err
	}

	return nil
}

func (s *SQLiteStore) Get(row, col int, preview bool) (TileRecord, bool, error) {
	s.logger.Debug("tile store get", "row", row, "col", col, "preview", preview)
	defer observe("get", time.Now())

	h, err := s.pool.Acquire()
	if err != nil {
		return TileRecord{}, false, err
	}
	defer s.pool.Release(h)

	query := `SELECT extension, width, height, filepath, tile_data
	FROM tiles
	WHERE tile_row = ? AND tile_col = ? AND is_preview = ?`

	rec := TileRecord{Row: row, Col: col, Preview: preview}
	err = h.db.QueryRow(query, row, col, preview).Scan(&rec.Extension, &rec.Width, &rec.Height, &rec.Filepath, &rec.Data)
	if err != nil {
		if err == sql.ErrNoRows {
			return TileRecord{}, false, nil
		}
		s.logger.Error("tile store get failed", "row", row, "col", col, "preview", preview, "error", err)
		return TileRecord{}, false, err
	}

	return rec, true, nil
}

func (s *SQLiteStore) Bounds(preview bool) (Bounds, bool, error) {
	defer observe("bounds", time.Now())

	h, err := s.pool.Acquire()
	if err != nil {
		return Bounds{}, false, err
	}
	defer s.pool.Release(h)

	query := `SELECT MIN(tile_row), MAX(tile_row), MIN(tile_col), MAX(tile_col)
	FROM tiles
	WHERE is_preview = ?`

	var minRow, maxRow, minCol, maxCol sql.NullInt64
	err = h.db.QueryRow(query, preview).Scan(&minRow, &maxRow, &minCol, &maxCol)
	if err != nil {
		s.logger.Error("tile store bounds query failed", "preview", preview, "error", err)
		return Bounds{}, false, err
	}

	// empty tier: absence, not an error
	if !minRow.Valid {
		return Bounds{}, false, nil
	}

	b := Bounds{
		MinRow: int(minRow.Int64),
		MaxRow: int(maxRow.Int64),
		MinCol: int(minCol.Int64),
		MaxCol: int(maxCol.Int64),
	}

	rows, err := h.db.Query(`SELECT DISTINCT extension FROM tiles WHERE is_preview = ? ORDER BY extension`, preview)
	if err != nil {
		s.logger.Error("tile store extensions query failed", "preview", preview, "error", err)
		return Bounds{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var ext string
		if err = rows.Scan(&ext); err != nil {
			return Bounds{}, false, err
		}
		b.Extensions = append(b.Extensions, ext)
	}
	if err = rows.Err(); err != nil {
		return Bounds{}, false, err
	}

	return b, true, nil
}

func (s *SQLiteStore) Dimensions() (GridMetadata, error) {
	h, err := s.pool.Acquire()
	if err != nil {
		return GridMetadata{}, err
	}
	defer s.pool.Release(h)

	var md GridMetadata
	md.TileWidth, err = s.metaInt(h, metaTileWidth)
	if err != nil {
		return GridMetadata{}, err
	}
	md.TileHeight, err = s.metaInt(h, metaTileHeight)
	if err != nil {
		return GridMetadata{}, err
	}
	md.PreviewWidth, err = s.metaInt(h, metaPreviewWidth)
	if err != nil {
		return GridMetadata{}, err
	}
	md.PreviewHeight, err = s.metaInt(h, metaPreviewHeight)
	if err != nil {
		return GridMetadata{}, err
	}

	scanned, _, err := s.meta(h, metaScanned)
	if err != nil {
		return GridMetadata{}, err
	}
	md.Scanned = scanned == "1"

	return md, nil
}

// SetDimensionsIfAbsent records tier dimensions only when no value exists
// yet. First writer wins: later tiles of a differing size do not override
// the grid-level reported dimensions.
func (s *SQLiteStore) SetDimensionsIfAbsent(preview bool, width, height int) error {
	h, err := s.pool.Acquire()
	if err != nil {
		return err
	}
	defer s.pool.Release(h)

	widthKey, heightKey := metaTileWidth, metaTileHeight
	if preview {
		widthKey, heightKey = metaPreviewWidth, metaPreviewHeight
	}

	query := `INSERT OR IGNORE INTO grid_metadata (key, value) VALUES (?, ?)`
	if _, err = h.db.Exec(query, widthKey, strconv.Itoa(width)); err != nil {
		return err
	}
	if _, err = h.db.Exec(query, heightKey, strconv.Itoa(height)); err != nil {
		return err
	}

	return nil
}

func (s *SQLiteStore) IsBootstrapped() (bool, error) {
	h, err := s.pool.Acquire()
	if err != nil {
		return false, err
	}
	defer s.pool.Release(h)

	v, ok, err := s.meta(h, metaScanned)
	if err != nil {
		return false, err
	}

	return ok && v == "1", nil
}

func (s *SQLiteStore) MarkBootstrapped() error {
	h, err := s.pool.Acquire()
	if err != nil {
		return err
	}
	defer s.pool.Release(h)

	query := `INSERT INTO grid_metadata (key, value) VALUES (?, '1')
	ON CONFLICT(key) DO UPDATE SET value = '1'`

	_, err = h.db.Exec(query, metaScanned)
	return err
}

func (s *SQLiteStore) meta(h *Handle, key string) (string, bool, error) {
	var value string
	err := h.db.QueryRow(`SELECT value FROM grid_metadata WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) metaInt(h *Handle, key string) (int, error) {
	v, ok, err := s.meta(h, key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		s.logger.Warn("malformed metadata value", "key", key, "value", v)
		return 0, nil
	}
	return n, nil
}

func observe(query string, start time.Time) {
	metrics.StoreQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}
