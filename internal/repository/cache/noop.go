package cache

type NoopCache struct{}

var _ TileCache = (*NoopCache)(nil)

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(Key) (Value, bool, error) {
	return Value{}, false, nil
}

func (c *NoopCache) Set(Key, Value) error {
	return nil
}

func (c *NoopCache) Invalidate(Key) error {
	return nil
}
