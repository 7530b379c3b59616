package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_cache_hits_total",
		Help: "Total number of hot cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_cache_misses_total",
		Help: "Total number of hot cache misses",
	})

	CacheStores = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_cache_stores_total",
		Help: "Total number of hot cache store operations",
	})

	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_cache_evictions_total",
		Help: "Total number of hot cache LRU evictions",
	})

	StoreQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tile_store_query_duration_seconds",
		Help:    "Duration of tile store queries in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"query"})

	PoolOpens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_store_pool_opens_total",
		Help: "Total number of store handles opened",
	})

	PoolReuses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_store_pool_reuses_total",
		Help: "Total number of store handles reused from the idle pool",
	})

	WatcherEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tile_watcher_events_total",
		Help: "Filesystem watcher events by outcome",
	}, []string{"outcome"})
)
