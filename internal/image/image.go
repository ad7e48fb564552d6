package image

import (
	"errors"
	"fmt"
	stdimage "image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Channel is the number of 8-bit components stored per pixel.
type Channel int

const (
	Grey Channel = 1
	Dual Channel = 2
	RGB  Channel = 3
	RGBA Channel = 4
)

func (c Channel) Valid() bool {
	return c >= Grey && c <= RGBA
}

func (c Channel) String() string {
	switch c {
	case Grey:
		return "grey"
	case Dual:
		return "dual"
	case RGB:
		return "rgb"
	case RGBA:
		return "rgba"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

type Size struct {
	Width  int
	Height int
}

func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

var ErrPixelCount = errors.New("pixel buffer does not match size and channels")

// Data is a decoded image, tightly packed, rows top-down.
type Data struct {
	size     Size
	channels Channel
	pixels   []byte
}

func NewData(size Size, channels Channel, pixels []byte) (*Data, error) {
	if !channels.Valid() {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	if len(pixels) != size.Width*size.Height*int(channels) {
		return nil, fmt.Errorf("%w: %dx%dx%d != %d", ErrPixelCount, size.Width, size.Height, channels, len(pixels))
	}
	return &Data{size: size, channels: channels, pixels: pixels}, nil
}

func (d *Data) Size() Size        { return d.size }
func (d *Data) Channels() Channel { return d.channels }
func (d *Data) Pixels() []byte    { return d.pixels }
func (d *Data) ByteLen() int      { return len(d.pixels) }

// FromImage converts any decoded image to packed Data with the requested channel count.
func FromImage(img stdimage.Image, channels Channel) (*Data, error) {
	if !channels.Valid() {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	b := img.Bounds()
	nrgba, ok := img.(*stdimage.NRGBA)
	if !ok || nrgba.Rect.Min != (stdimage.Point{}) || nrgba.Stride != b.Dx()*4 {
		nrgba = stdimage.NewNRGBA(stdimage.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(nrgba, nrgba.Bounds(), img, b.Min, xdraw.Src)
	}

	size := Size{Width: b.Dx(), Height: b.Dy()}
	n := size.Width * size.Height
	if channels == RGBA {
		pixels := make([]byte, n*4)
		copy(pixels, nrgba.Pix)
		return NewData(size, channels, pixels)
	}

	pixels := make([]byte, 0, n*int(channels))
	for i := 0; i < n; i++ {
		r, g, bl, a := nrgba.Pix[i*4], nrgba.Pix[i*4+1], nrgba.Pix[i*4+2], nrgba.Pix[i*4+3]
		switch channels {
		case RGB:
			pixels = append(pixels, r, g, bl)
		case Dual:
			pixels = append(pixels, luminance(r, g, bl), a)
		case Grey:
			pixels = append(pixels, luminance(r, g, bl))
		}
	}
	return NewData(size, channels, pixels)
}

func luminance(r, g, b uint8) uint8 {
	return color.GrayModel.Convert(color.RGBA{R: r, G: g, B: b, A: 0xff}).(color.Gray).Y
}

// Source is a lazily loaded image, either backed by a file or by an in-memory image.
type Source struct {
	path     string
	channels Channel
	memory   stdimage.Image
	data     *Data
}

func NewSource(path string, channels Channel) *Source {
	return &Source{path: path, channels: channels}
}

// NewSourceFromImage wraps an in-memory image. name identifies it in caches and logs.
func NewSourceFromImage(name string, img stdimage.Image, channels Channel) *Source {
	return &Source{path: name, channels: channels, memory: img}
}

func (s *Source) Path() string      { return s.path }
func (s *Source) Channels() Channel { return s.channels }
func (s *Source) IsLoaded() bool    { return s.data != nil }

// InMemory reports whether s wraps an image rather than a file.
func (s *Source) InMemory() bool { return s.memory != nil }

// LoadData decodes the image unless it is already loaded and force is false.
func (s *Source) LoadData(force bool) error {
	if s.data != nil && !force {
		return nil
	}
	img := s.memory
	if img == nil {
		f, err := os.Open(s.path)
		if err != nil {
			return fmt.Errorf("opening image %s: %w", s.path, err)
		}
		defer f.Close()
		img, _, err = stdimage.Decode(f)
		if err != nil {
			return fmt.Errorf("decoding image %s: %w", s.path, err)
		}
	}
	data, err := FromImage(img, s.channels)
	if err != nil {
		return fmt.Errorf("converting image %s: %w", s.path, err)
	}
	s.data = data
	return nil
}

func (s *Source) UnloadData() {
	s.data = nil
}

// LoadedImage returns the decoded data. With loadIfNeeded false an unloaded
// source returns nil and no error.
func (s *Source) LoadedImage(loadIfNeeded bool) (*Data, error) {
	if s.data == nil && loadIfNeeded {
		if err := s.LoadData(false); err != nil {
			return nil, err
		}
	}
	return s.data, nil
}
