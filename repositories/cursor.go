package repositories

import (
	"context"

	"xbrowse/models"
)

// SliceCursor streams an in-memory slice.
type SliceCursor struct {
	variants []models.Variant
	pos      int
	current  models.Variant
	err      error
}

func NewSliceCursor(variants []models.Variant) *SliceCursor {
	return &SliceCursor{variants: variants, pos: -1}
}

func (c *SliceCursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		c.err = err
		return false
	}
	c.pos++
	if c.pos >= len(c.variants) {
		return false
	}
	c.current = c.variants[c.pos]
	return true
}

func (c *SliceCursor) Variant() models.Variant { return c.current }
func (c *SliceCursor) Err() error              { return c.err }
func (c *SliceCursor) Close() error            { return nil }

// FilterCursor wraps another cursor, passing through only the variants keep
// accepts (possibly transformed).
type FilterCursor struct {
	inner   VariantCursor
	keep    func(models.Variant) (models.Variant, bool)
	current models.Variant
}

func NewFilterCursor(inner VariantCursor, keep func(models.Variant) (models.Variant, bool)) *FilterCursor {
	return &FilterCursor{inner: inner, keep: keep}
}

func (c *FilterCursor) Next(ctx context.Context) bool {
	for c.inner.Next(ctx) {
		if v, ok := c.keep(c.inner.Variant()); ok {
			c.current = v
			return true
		}
	}
	return false
}

func (c *FilterCursor) Variant() models.Variant { return c.current }
func (c *FilterCursor) Err() error              { return c.inner.Err() }
func (c *FilterCursor) Close() error            { return c.inner.Close() }

// Collect drains a cursor and closes it.
func Collect(ctx context.Context, cursor VariantCursor) ([]models.Variant, error) {
	defer cursor.Close()

	var out []models.Variant
	for cursor.Next(ctx) {
		out = append(out, cursor.Variant())
	}
	return out, cursor.Err()
}
