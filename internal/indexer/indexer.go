package indexer

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jaennil/tileview/internal/repository/store"
	"github.com/jaennil/tileview/internal/tilefile"
	"github.com/jaennil/tileview/pkg/logger"
)

// Indexer performs the one-time bootstrap scan that populates the tile
// store from the tile directories.
type Indexer struct {
	store      store.TileStore
	tilesDir   string
	previewDir string
	logger     logger.Logger
}

func New(s store.TileStore, tilesDir, previewDir string, l logger.Logger) *Indexer {
	return &Indexer{
		store:      s,
		tilesDir:   tilesDir,
		previewDir: previewDir,
		logger:     l,
	}
}

// Run scans both tier directories and upserts one record per matching file.
// The scanned flag is only set at the very end: an interrupted bootstrap is
// safely retried in full on next startup. With the flag already set the run
// is a no-op.
func (ix *Indexer) Run() error {
	scanned, err := ix.store.IsBootstrapped()
	if err != nil {
		return err
	}
	if scanned {
		ix.logger.Info("tile store already bootstrapped, skipping scan")
		return nil
	}

	start := time.Now()

	var haveTileDims, havePreviewDims bool
	indexed := 0

	for _, dir := range ix.dirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			ix.logger.Warn("skipping unreadable tile directory", "dir", dir, "error", err)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			info, ok := tilefile.ParseName(entry.Name())
			if !ok {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			data, width, height, err := tilefile.Read(path)
			if err != nil {
				ix.logger.Error("failed to read tile during bootstrap", "path", path, "error", err)
				continue
			}

			rec := store.TileRecord{
				Row:       info.Row,
				Col:       info.Col,
				Preview:   info.Preview,
				Extension: info.Extension,
				Width:     width,
				Height:    height,
				Filepath:  path,
				Data:      data,
			}
			if err = ix.store.Upsert(rec); err != nil {
				ix.logger.Error("failed to store tile during bootstrap", "path", path, "error", err)
				continue
			}
			indexed++

			// grid dimensions come from the first tile encountered per tier
			if info.Preview && !havePreviewDims {
				if err = ix.store.SetDimensionsIfAbsent(true, width, height); err != nil {
					return err
				}
				havePreviewDims = true
			} else if !info.Preview && !haveTileDims {
				if err = ix.store.SetDimensionsIfAbsent(false, width, height); err != nil {
					return err
				}
				haveTileDims = true
			}
		}
	}

	if err = ix.store.MarkBootstrapped(); err != nil {
		return err
	}

	ix.logger.Info("bootstrap scan completed", "tiles", indexed, "duration", time.Since(start))

	return nil
}

// dirs returns the watched directories, deduplicated: full tiles and
// previews may share one directory.
func (ix *Indexer) dirs() []string {
	tiles := filepath.Clean(ix.tilesDir)
	previews := filepath.Clean(ix.previewDir)
	if tiles == previews {
		return []string{tiles}
	}
	return []string{tiles, previews}
}
