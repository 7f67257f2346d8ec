package spatial

import (
	"log"
	"os"
	"path/filepath"
	"sync"
)

// IndexCache holds built portal indexes keyed by unit code, bounded by
// capacity with oldest-first eviction. It replaces the process-wide
// unbounded map the system grew up with: the cache is owned by whoever runs
// the pipeline and passed by handle, never ambient state.
type IndexCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*Index
	order    []string // insertion order, oldest first
}

// DefaultCacheCapacity bounds the number of unit-code indexes kept alive.
const DefaultCacheCapacity = 8

// NewIndexCache creates a cache holding at most capacity indexes.
func NewIndexCache(capacity int) *IndexCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &IndexCache{
		capacity: capacity,
		entries:  make(map[string]*Index),
	}
}

// GetOrBuild returns the cached index for key, building and caching it on
// first use. Builds are serialized; indexes are frozen after build so
// returned handles are safe for concurrent readers.
func (c *IndexCache) GetOrBuild(key string, build func() (*Index, error)) (*Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ix, ok := c.entries[key]; ok {
		return ix, nil
	}

	ix, err := build()
	if err != nil {
		return nil, err
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		log.Printf("[IndexCache] Evicted portal index for %s", oldest)
	}
	c.entries[key] = ix
	c.order = append(c.order, key)
	return ix, nil
}

// Len returns the number of cached indexes.
func (c *IndexCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// IndexProvider resolves the portal index for a unit code from a folder of
// <codired>.geojson files, through a bounded cache.
type IndexProvider struct {
	folder string
	cache  *IndexCache
}

// NewIndexProvider creates a provider over the given GeoJSON folder.
func NewIndexProvider(folder string, cache *IndexCache) *IndexProvider {
	return &IndexProvider{folder: folder, cache: cache}
}

// IndexFor returns the portal index for a unit code. A missing reference
// file is not an error: it returns (nil, nil) and queries against the nil
// index produce not-found sentinels.
func (p *IndexProvider) IndexFor(unitCode string) (*Index, error) {
	path := filepath.Join(p.folder, unitCode+".geojson")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("[IndexProvider] No portal file for unit %s, queries will report not found", unitCode)
		return nil, nil
	}

	return p.cache.GetOrBuild(unitCode, func() (*Index, error) {
		portals, err := LoadPortals(path)
		if err != nil {
			return nil, err
		}
		ix := BuildIndex(portals)

		points := make([]Point, len(portals))
		for i, portal := range portals {
			points[i] = Point{Lat: portal.Latitude, Lon: portal.Longitude}
		}
		minLat, minLon, maxLat, maxLon := BoundingBox(points)
		log.Printf("[IndexProvider] Built portal index for unit %s (%d portals, bbox %.5f,%.5f to %.5f,%.5f)",
			unitCode, ix.Size(), minLat, minLon, maxLat, maxLon)
		return ix, nil
	})
}
