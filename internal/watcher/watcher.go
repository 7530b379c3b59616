package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jaennil/tileview/internal/repository/cache"
	"github.com/jaennil/tileview/internal/repository/store"
	"github.com/jaennil/tileview/internal/tilefile"
	"github.com/jaennil/tileview/pkg/logger"
	"github.com/jaennil/tileview/pkg/metrics"
)

// Watcher keeps the tile store consistent with the tile directories: new or
// replaced files are re-read, upserted, and the affected cache entries are
// invalidated. Events are debounced per path to avoid acting on partially
// written files.
type Watcher struct {
	store    store.TileStore
	hot      cache.TileCache
	summary  *cache.SummaryCache
	logger   logger.Logger
	debounce time.Duration

	fsw *fsnotify.Watcher
	wg  sync.WaitGroup

	mu       sync.Mutex
	timers   map[string]*time.Timer
	inflight map[string]struct{}
}

func New(s store.TileStore, hot cache.TileCache, summary *cache.SummaryCache, debounce time.Duration, l logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		store:    s,
		hot:      hot,
		summary:  summary,
		logger:   l,
		debounce: debounce,
		fsw:      fsw,
		timers:   make(map[string]*time.Timer),
		inflight: make(map[string]struct{}),
	}, nil
}

// Start watches the given directories. A directory that does not exist is
// skipped without failing the whole system.
func (w *Watcher) Start(dirs ...string) error {
	seen := map[string]bool{}
	watching := 0
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true

		if _, err := os.Stat(dir); os.IsNotExist(err) {
			w.logger.Warn("tile directory does not exist, not watching", "dir", dir)
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Error("failed to watch tile directory", "dir", dir, "error", err)
			continue
		}
		w.logger.Info("watching tile directory", "dir", dir)
		watching++
	}

	if watching == 0 {
		w.logger.Warn("no tile directories available to watch")
	}

	w.wg.Add(1)
	go w.loop()

	return nil
}

func (w *Watcher) Stop() {
	_ = w.fsw.Close()
	w.wg.Wait()

	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// only file content changes matter
			if event.Op&fsnotify.Chmod != 0 {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.schedule(event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// schedule debounces events per path: repeat events while a file is still
// being written keep pushing the timer back.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.process(path)
	})
}

func (w *Watcher) process(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	if _, busy := w.inflight[path]; busy {
		// a commit for this path is already running; the second attempt is
		// rejected rather than interleaved
		w.mu.Unlock()
		metrics.WatcherEvents.WithLabelValues("duplicate").Inc()
		return
	}
	w.inflight[path] = struct{}{}
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.inflight, path)
		w.mu.Unlock()
	}()

	if _, err := os.Stat(path); err != nil {
		// entry disappeared before the debounce elapsed
		metrics.WatcherEvents.WithLabelValues("dropped").Inc()
		return
	}

	info, ok := tilefile.ParseName(filepath.Base(path))
	if !ok {
		metrics.WatcherEvents.WithLabelValues("ignored").Inc()
		return
	}

	data, width, height, err := tilefile.Read(path)
	if err != nil {
		// logged and dropped; a later change event re-triggers processing
		w.logger.Error("failed to read changed tile", "path", path, "error", err)
		metrics.WatcherEvents.WithLabelValues("failed").Inc()
		return
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
	if err = w.store.Upsert(rec); err != nil {
		w.logger.Error("failed to commit changed tile", "path", path, "error", err)
		metrics.WatcherEvents.WithLabelValues("failed").Inc()
		return
	}

	key := cache.Key{Row: info.Row, Col: info.Col, Preview: info.Preview}
	if err = w.hot.Invalidate(key); err != nil {
		w.logger.Warn("failed to invalidate hot cache entry", "row", info.Row, "col", info.Col, "preview", info.Preview, "error", err)
	}
	w.summary.Invalidate()

	w.logger.Info("tile committed from watcher", "row", info.Row, "col", info.Col, "preview", info.Preview, "size", len(data))
	metrics.WatcherEvents.WithLabelValues("committed").Inc()
}
