package scene

import (
	"StoneEngine/internal/image"
)

type TextureFilter int

const (
	FilterNearest TextureFilter = iota
	FilterLinear
	FilterCubic
)

type TextureWrap int

const (
	WrapRepeat TextureWrap = iota
	WrapMirroredRepeat
	WrapClampToEdge
	WrapClampToBorder
)

// Texture samples an image source with the given filtering and wrapping.
type Texture struct {
	RenderableBase

	source    *image.Source
	minFilter TextureFilter
	magFilter TextureFilter
	wrap      TextureWrap
}

func NewTexture(source *image.Source) *Texture {
	return &Texture{
		RenderableBase: newRenderableBase(),
		source:         source,
		minFilter:      FilterLinear,
		magFilter:      FilterLinear,
		wrap:           WrapRepeat,
	}
}

func (t *Texture) Image() *image.Source { return t.source }

func (t *Texture) SetImage(source *image.Source) {
	t.source = source
	t.MarkDirty()
}

func (t *Texture) MinFilter() TextureFilter { return t.minFilter }

func (t *Texture) SetMinFilter(f TextureFilter) {
	t.minFilter = f
	t.MarkDirty()
}

func (t *Texture) MagFilter() TextureFilter { return t.magFilter }

func (t *Texture) SetMagFilter(f TextureFilter) {
	t.magFilter = f
	t.MarkDirty()
}

// SetFilter sets both the minification and the magnification filter.
func (t *Texture) SetFilter(f TextureFilter) {
	t.minFilter = f
	t.magFilter = f
	t.MarkDirty()
}

func (t *Texture) Wrap() TextureWrap { return t.wrap }

func (t *Texture) SetWrap(w TextureWrap) {
	t.wrap = w
	t.MarkDirty()
}
