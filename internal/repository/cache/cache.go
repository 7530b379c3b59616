package cache

// Key addresses one tile payload in the hot cache.
type Key struct {
	Row     int
	Col     int
	Preview bool
}

// Value is the cached tile payload together with its on-disk format.
type Value struct {
	Data      []byte
	Extension string
}

type TileCache interface {
	Get(Key) (Value, bool, error)
	Set(Key, Value) error
	Invalidate(Key) error
}
