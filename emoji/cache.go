package emoji

import (
	"container/list"
	"context"
	"image"
	"sync"
)

// DefaultCacheSize 是默认缓存的码点数量。
const DefaultCacheSize = 512

// Stats 记录缓存命中情况。
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

type cacheEntry struct {
	r   rune
	img image.Image
}

// Cache 是按码点缓存解析结果的 LRU，位于合成器与真实 Resolver 之间。
// 只缓存成功的结果；失败不会写入缓存，下次仍会重新获取。
type Cache struct {
	next Resolver
	max  int

	mu     sync.Mutex
	ll     *list.List
	items  map[rune]*list.Element
	hits   int64
	misses int64
}

var _ Resolver = (*Cache)(nil)

// NewCache 用容量 size 包装 next；size<=0 时使用 DefaultCacheSize。
func NewCache(next Resolver, size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{
		next:  next,
		max:   size,
		ll:    list.New(),
		items: make(map[rune]*list.Element, size),
	}
}

// Resolve implements Resolver.
func (c *Cache) Resolve(ctx context.Context, r rune) (image.Image, error) {
	if img, ok := c.get(r); ok {
		return img, nil
	}
	img, err := c.next.Resolve(ctx, r)
	if err != nil {
		return nil, err
	}
	c.put(r, img)
	return img, nil
}

// Stats 返回当前统计。
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: c.ll.Len()}
}

func (c *Cache) get(r rune) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[r]; ok {
		c.ll.MoveToFront(el)
		c.hits++
		return el.Value.(*cacheEntry).img, true
	}
	c.misses++
	return nil, false
}

func (c *Cache) put(r rune, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[r]; ok {
		el.Value.(*cacheEntry).img = img
		c.ll.MoveToFront(el)
		return
	}
	c.items[r] = c.ll.PushFront(&cacheEntry{r: r, img: img})
	for c.ll.Len() > c.max {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).r)
	}
}
