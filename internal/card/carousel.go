package card

// Carousel is the per-card image cursor. The index is always within
// [0, len(images)-1], or 0 when there are no images.
type Carousel struct {
	images   []string
	index    int
	hasError bool
}

func NewCarousel(images []string) *Carousel {
	return &Carousel{images: append([]string(nil), images...)}
}

func (c *Carousel) Len() int   { return len(c.images) }
func (c *Carousel) Index() int { return c.index }

// HasError reports whether the current image failed to load.
func (c *Carousel) HasError() bool { return c.hasError }

// Next moves forward one image. It does not wrap.
func (c *Carousel) Next() {
	if c.index < len(c.images)-1 {
		c.index++
		c.hasError = false
	}
}

// Previous moves back one image. It does not wrap.
func (c *Carousel) Previous() {
	if c.index > 0 {
		c.index--
		c.hasError = false
	}
}

// Seek jumps to i, clamped to the valid range.
func (c *Carousel) Seek(i int) {
	switch {
	case len(c.images) == 0 || i < 0:
		i = 0
	case i > len(c.images)-1:
		i = len(c.images) - 1
	}
	if i != c.index {
		c.hasError = false
	}
	c.index = i
}

// OnImageLoadError flags the current image only. No retry, no advance.
func (c *Carousel) OnImageLoadError() {
	if len(c.images) > 0 {
		c.hasError = true
	}
}

// ShowControls is false for zero or one image; controls are then omitted
// from the output rather than disabled.
func (c *Carousel) ShowControls() bool { return len(c.images) > 1 }

func (c *Carousel) CanPrevious() bool { return c.index > 0 }
func (c *Carousel) CanNext() bool     { return c.index < len(c.images)-1 }

// Current returns the URL to display, or false when the fallback glyph
// must be shown instead.
func (c *Carousel) Current() (string, bool) {
	if len(c.images) == 0 || c.hasError {
		return "", false
	}
	return c.images[c.index], true
}
