package usecase

import (
	"github.com/jaennil/tileview/internal/repository/cache"
	"github.com/jaennil/tileview/internal/repository/store"
	"github.com/jaennil/tileview/pkg/logger"
)

// TileUseCase serves tile lookups through the hot cache and the metadata
// summary through its single-slot cache. Safe for concurrent use by many
// request handlers.
type TileUseCase struct {
	store   store.TileStore
	hot     cache.TileCache
	summary *cache.SummaryCache
	logger  logger.Logger
}

func NewTileUseCase(s store.TileStore, hot cache.TileCache, summary *cache.SummaryCache, l logger.Logger) *TileUseCase {
	return &TileUseCase{
		store:   s,
		hot:     hot,
		summary: summary,
		logger:  l,
	}
}

// LookupTile returns the stored bytes and format for a coordinate, or
// ok=false when the coordinate has no record.
func (uc *TileUseCase) LookupTile(row, col int, preview bool) ([]byte, string, bool, error) {
	key := cache.Key{Row: row, Col: col, Preview: preview}

	if v, ok, err := uc.hot.Get(key); err != nil {
		uc.logger.Warn("hot cache lookup failed, falling through to store", "row", row, "col", col, "error", err)
	} else if ok {
		uc.logger.Debug("hot cache hit", "row", row, "col", col, "preview", preview)
		return v.Data, v.Extension, true, nil
	}

	rec, ok, err := uc.store.Get(row, col, preview)
	if err != nil {
		return nil, "", false, err
	}
	if !ok {
		return nil, "", false, nil
	}

	if err = uc.hot.Set(key, cache.Value{Data: rec.Data, Extension: rec.Extension}); err != nil {
		uc.logger.Warn("failed to populate hot cache", "row", row, "col", col, "error", err)
	}

	return rec.Data, rec.Extension, true, nil
}

// MetadataSummary returns the cached grid summary, recomputing it from the
// store after an invalidation.
func (uc *TileUseCase) MetadataSummary() (cache.Summary, error) {
	return uc.summary.Get(uc.computeSummary)
}

func (uc *TileUseCase) computeSummary() (cache.Summary, error) {
	uc.logger.Debug("recomputing metadata summary")

	bounds, ok, err := uc.store.Bounds(false)
	if err != nil {
		return cache.Summary{}, err
	}

	md, err := uc.store.Dimensions()
	if err != nil {
		return cache.Summary{}, err
	}

	previewBounds, hasPreviews, err := uc.store.Bounds(true)
	if err != nil {
		return cache.Summary{}, err
	}

	s := cache.Summary{
		TileWidth:     md.TileWidth,
		TileHeight:    md.TileHeight,
		PreviewWidth:  md.PreviewWidth,
		PreviewHeight: md.PreviewHeight,
		HasPreviews:   hasPreviews,
	}
	if hasPreviews {
		s.PreviewExtensions = previewBounds.Extensions
	}
	if !ok {
		s.Empty = true
		return s, nil
	}

	s.MinRow = bounds.MinRow
	s.MaxRow = bounds.MaxRow
	s.MinCol = bounds.MinCol
	s.MaxCol = bounds.MaxCol
	// integer midpoint, floor division
	s.CenterRow = (bounds.MinRow + bounds.MaxRow) / 2
	s.CenterCol = (bounds.MinCol + bounds.MaxCol) / 2
	s.Extensions = bounds.Extensions

	return s, nil
}
