package photos

import (
	"container/list"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"tasklist/internal/apperr"
)

// Cache keeps decoded thumbnails keyed by photo reference and evicts the
// least recently used one when full.
type Cache struct {
	size       int
	side       int
	httpClient *http.Client

	mu      sync.Mutex
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	ref string
	img image.Image
}

// NewCache creates a cache of at most size thumbnails, each side x side pixels
func NewCache(size, side int) *Cache {
	if size < 1 {
		size = 1
	}
	return &Cache{
		size:       size,
		side:       side,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// Get returns the thumbnail for ref, fetching and decoding it on a miss.
// URLs are fetched over HTTP, anything else is read from disk.
func (c *Cache) Get(ctx context.Context, ref string) (image.Image, error) {
	if img, ok := c.lookup(ref); ok {
		return img, nil
	}

	img, err := c.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.put(ref, img)
	return img, nil
}

// Len returns the number of cached thumbnails
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) lookup(ref string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[ref]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).img, true
}

func (c *Cache) put(ref string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[ref]; ok {
		el.Value.(*cacheEntry).img = img
		c.order.MoveToFront(el)
		return
	}
	c.entries[ref] = c.order.PushFront(&cacheEntry{ref: ref, img: img})

	for c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).ref)
	}
}

func (c *Cache) load(ctx context.Context, ref string) (image.Image, error) {
	if !IsURL(ref) {
		f, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrNotFound, err)
		}
		defer f.Close()
		return decode(f, c.side)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch photo: %v", apperr.ErrExternalService, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch photo: %s", apperr.ErrExternalService, resp.Status)
	}

	img, err := decode(io.LimitReader(resp.Body, 10<<20), c.side)
	if err != nil {
		return nil, fmt.Errorf("%w: decode photo: %v", apperr.ErrExternalService, err)
	}
	return img, nil
}
