package store

import "errors"

// ErrStorageUnavailable is fatal: the persistent store cannot be opened and
// the process cannot serve any tile.
var ErrStorageUnavailable = errors.New("tile storage unavailable")

// TileRecord is one stored tile, keyed by (Row, Col, Preview).
type TileRecord struct {
	Row       int
	Col       int
	Preview   bool
	Extension string
	Width     int
	Height    int
	Filepath  string
	Data      []byte
}

// GridMetadata holds grid-wide facts persisted in the metadata table.
// Dimension values are first-writer-wins: only the very first tile discovered
// per tier sets them, later tiles of differing size never override them.
type GridMetadata struct {
	TileWidth     int
	TileHeight    int
	PreviewWidth  int
	PreviewHeight int
	Scanned       bool
}

// Bounds describes the occupied grid extent of one tier.
type Bounds struct {
	MinRow     int
	MaxRow     int
	MinCol     int
	MaxCol     int
	Extensions []string
}

type TileStore interface {
	Upsert(rec TileRecord) error
	Get(row, col int, preview bool) (TileRecord, bool, error)
	Bounds(preview bool) (Bounds, bool, error)
	Dimensions() (GridMetadata, error)
	SetDimensionsIfAbsent(preview bool, width, height int) error
	IsBootstrapped() (bool, error)
	MarkBootstrapped() error
}
