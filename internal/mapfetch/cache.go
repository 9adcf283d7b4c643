// Package mapfetch downloads .lvl map files over HTTP and caches them on
// disk, so a zone's map is fetched once and reused across runs.
package mapfetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Cache manages map fetching and on-disk caching.
type Cache struct {
	cacheDir   string
	client     *http.Client
	inFlight   map[string]chan struct{}
	inFlightMu sync.Mutex
	fetchQueue chan string
	wg         sync.WaitGroup
}

// New creates a map cache backed by cacheDir, with background workers
// serving Prefetch requests.
func New(cacheDir string, workers int) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		cacheDir: cacheDir,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		inFlight:   make(map[string]chan struct{}),
		fetchQueue: make(chan string, 64),
	}

	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}

	return c, nil
}

func (c *Cache) worker() {
	defer c.wg.Done()
	for url := range c.fetchQueue {
		if _, err := c.fetch(url); err != nil {
			slog.Warn("map prefetch failed", "url", url, "error", err)
		}
	}
}

// Close shuts down the background workers.
func (c *Cache) Close() {
	close(c.fetchQueue)
	c.wg.Wait()
}

// mapPath returns the cache file for a map URL. The name keeps the human
// readable base name and disambiguates with a digest of the full URL.
func (c *Cache) mapPath(url string) string {
	sum := sha256.Sum256([]byte(url))
	base := filepath.Base(url)
	if base == "." || base == "/" {
		base = "map.lvl"
	}
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:8])+"_"+base)
}

// Get returns map file contents, downloading and caching if necessary.
func (c *Cache) Get(url string) ([]byte, error) {
	if data, err := os.ReadFile(c.mapPath(url)); err == nil {
		return data, nil
	}
	return c.fetch(url)
}

// IsCached reports whether a map is already on disk.
func (c *Cache) IsCached(url string) bool {
	_, err := os.Stat(c.mapPath(url))
	return err == nil
}

// Prefetch queues maps for background download. Full queues drop requests
// rather than blocking the caller.
func (c *Cache) Prefetch(urls ...string) {
	for _, url := range urls {
		if c.IsCached(url) {
			continue
		}
		select {
		case c.fetchQueue <- url:
		default:
		}
	}
}

// fetch downloads a map and writes it to the cache.
func (c *Cache) fetch(url string) ([]byte, error) {
	path := c.mapPath(url)

	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}

	// De-duplicate concurrent downloads of the same map.
	c.inFlightMu.Lock()
	if ch, exists := c.inFlight[url]; exists {
		c.inFlightMu.Unlock()
		<-ch
		return os.ReadFile(path)
	}
	ch := make(chan struct{})
	c.inFlight[url] = ch
	c.inFlightMu.Unlock()

	defer func() {
		c.inFlightMu.Lock()
		delete(c.inFlight, url)
		close(ch)
		c.inFlightMu.Unlock()
	}()

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "lvlviewer/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch map: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("map server returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read map data: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		// The download still succeeded; the next run refetches.
		slog.Warn("failed to cache map", "path", path, "error", err)
	}

	return data, nil
}
