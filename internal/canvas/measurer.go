package canvas

import (
	"context"
	"strconv"

	"github.com/gogpu/gg/text"

	"github.com/adelrodriguez/sakuga/internal/cachemanager"
	"github.com/adelrodriguez/sakuga/internal/token"
)

type widthQuery struct {
	face    text.Face
	content string
}

// WidthCache memoizes text advances per font variant and size. One cache is
// shared by every measurer of a render and is safe for concurrent use.
type WidthCache struct {
	cache *cachemanager.ReadThroughCache[string, float64, widthQuery]
}

// NewWidthCache creates an empty width cache.
func NewWidthCache() *WidthCache {
	store := cachemanager.NewInMemoryCacheManager[string, float64](
		"text widths",
		cachemanager.NoExpiration,
		cachemanager.DefaultCleanupInterval,
	)
	return &WidthCache{
		cache: cachemanager.NewReadThroughCache[string, float64, widthQuery](store, advance, false),
	}
}

func advance(_ context.Context, q widthQuery) (float64, error) {
	return q.face.Advance(q.content), nil
}

// Stats reports cache hits and misses.
func (c *WidthCache) Stats() cachemanager.Stats {
	if c == nil {
		return cachemanager.Stats{}
	}
	return c.cache.Stats()
}

func (c *WidthCache) width(v variant, size float64, face text.Face, content string) float64 {
	if c == nil {
		return face.Advance(content)
	}
	key := v.String() + ":" + strconv.FormatFloat(size, 'f', -1, 64) + ":" + content
	// advance never fails
	w, _ := c.cache.Get(context.Background(), key, widthQuery{face: face, content: content}, cachemanager.NoExpiration)
	return w
}

// Measurer measures text without painting. It is not safe for concurrent use;
// create one per worker.
type Measurer struct {
	size   float64
	faces  [variantCount]text.Face
	widths *WidthCache
}

// NewMeasurer creates a measurer over fonts. widths may be nil.
func NewMeasurer(fonts *Fonts, widths *WidthCache) *Measurer {
	return &Measurer{size: fonts.size, faces: fonts.faces(), widths: widths}
}

// MeasureText returns the advance width of content in the variant selected by
// style. Underline does not affect width.
func (m *Measurer) MeasureText(content string, style token.FontStyle) float64 {
	if content == "" {
		return 0
	}
	v := variantOf(style)
	return m.widths.width(v, m.size, m.faces[v], content)
}
