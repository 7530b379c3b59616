package cache

import "sync"

// Summary is the derived grid-wide view served to clients. Centers are
// integer midpoints (floor division).
type Summary struct {
	Empty             bool     `json:"empty"`
	MinRow            int      `json:"min_row"`
	MaxRow            int      `json:"max_row"`
	MinCol            int      `json:"min_col"`
	MaxCol            int      `json:"max_col"`
	CenterRow         int      `json:"center_row"`
	CenterCol         int      `json:"center_col"`
	TileWidth         int      `json:"tile_width"`
	TileHeight        int      `json:"tile_height"`
	PreviewWidth      int      `json:"preview_width"`
	PreviewHeight     int      `json:"preview_height"`
	Extensions        []string `json:"extensions"`
	PreviewExtensions []string `json:"preview_extensions"`
	HasPreviews       bool     `json:"has_previews"`
}

// SummaryCache holds a single computed Summary until invalidated. The
// recompute runs outside the lock, so a recompute racing an invalidation
// just produces a fresh, momentarily redundant value - never a torn read.
type SummaryCache struct {
	mu  sync.Mutex
	cur *Summary
}

func NewSummaryCache() *SummaryCache {
	return &SummaryCache{}
}

func (c *SummaryCache) Get(recompute func() (Summary, error)) (Summary, error) {
	c.mu.Lock()
	if c.cur != nil {
		s := *c.cur
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	s, err := recompute()
	if err != nil {
		return Summary{}, err
	}

	c.mu.Lock()
	c.cur = &s
	c.mu.Unlock()

	return s, nil
}

func (c *SummaryCache) Invalidate() {
	c.mu.Lock()
	c.cur = nil
	c.mu.Unlock()
}
