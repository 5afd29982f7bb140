package raster

import (
	"image"
	"sync"

	"github.com/yyyoichi/colorsample/internal/colorspace"
)

// Cache keeps one Source per color space for a single image.
type Cache struct {
	src  image.Image
	data sync.Map
}

func NewCache(src image.Image) *Cache {
	return &Cache{src: src}
}

func (c *Cache) Source(space colorspace.Model) *Source {
	key := space.Name()
	if v, ok := c.data.Load(key); ok {
		return v.(*Source)
	}
	s := NewSource(c.src, space)
	actual, loaded := c.data.LoadOrStore(key, s)
	if loaded {
		return actual.(*Source)
	}
	return s
}
