package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jaennil/tileview/pkg/metrics"
)

// Handle is a pooled connection to the tile database. A handle must not be
// shared between concurrent operations; borrow with Acquire, return with
// Release.
type Handle struct {
	db *sql.DB
}

func (h *Handle) DB() *sql.DB {
	return h.db
}

func (h *Handle) close() {
	_ = h.db.Close()
}

// Pool keeps up to max idle handles. Acquire reuses an idle handle when one
// exists and opens a fresh one otherwise; Release parks the handle if there
// is spare capacity and disposes it if not.
type Pool struct {
	mu   sync.Mutex
	idle []*Handle
	max  int
	dsn  string
}

func NewPool(path string, max int) *Pool {
	if max <= 0 {
		max = 5
	}

	// Concurrent-friendly access: WAL journaling, relaxed synchronous
	// durability. These are performance tunings, not correctness-critical.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)

	return &Pool{
		max: max,
		dsn: dsn,
	}
}

func (p *Pool) Acquire() (*Handle, error) {
	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		h := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		metrics.PoolReuses.Inc()
		return h, nil
	}
	p.mu.Unlock()

	h, err := p.open()
	if err != nil {
		return nil, err
	}
	metrics.PoolOpens.Inc()
	return h, nil
}

func (p *Pool) Release(h *Handle) {
	if h == nil {
		return
	}

	p.mu.Lock()
	if len(p.idle) < p.max {
		p.idle = append(p.idle, h)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	h.close()
}

func (p *Pool) open() (*Handle, error) {
	db, err := sql.Open("sqlite3", p.dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// database/sql would pool connections itself; one connection per handle
	// keeps the borrow/return discipline explicit.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("PRAGMA temp_store = MEMORY"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return &Handle{db: db}, nil
}

func (p *Pool) Close() {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	for _, h := range idle {
		h.close()
	}
}
