package image

import (
	stdimage "image"
	"image/color"

	perlin "github.com/aquilax/go-perlin"
)

const noiseScale = 0.05

// NewNoiseSource builds an in-memory source filled with perlin noise.
// The same seed always produces the same pixels.
func NewNoiseSource(name string, size Size, seed int64, channels Channel) *Source {
	p := perlin.NewPerlin(2, 2, 3, seed)
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, size.Width, size.Height))
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			v := noiseByte(p.Noise2D(float64(x)*noiseScale, float64(y)*noiseScale))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 0xff})
		}
	}
	return NewSourceFromImage(name, img, channels)
}

// noiseByte maps noise in roughly [-1, 1] to [0, 255].
func noiseByte(n float64) uint8 {
	v := (n + 1) * 0.5 * 255
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
