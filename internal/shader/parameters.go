package shader

import (
	"strings"

	"StoneEngine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Type is the class of value a material provides for a channel.
type Type uint8

const (
	None Type = iota
	Scalar
	Vector
	Texture
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Scalar:
		return "scalar"
	case Vector:
		return "vector"
	case Texture:
		return "texture"
	}
	return "invalid"
}

// Channel is a material input the generated shaders know about.
type Channel int

const (
	Diffuse Channel = iota
	Specular
	Ambient
	Emissive
	Shininess
	Opacity
	Roughness
	Metallic
	Normal
	Occlusion
	Height

	ChannelCount
)

var channelNames = [ChannelCount]string{
	"diffuse",
	"specular",
	"ambient",
	"emissive",
	"shininess",
	"opacity",
	"roughness",
	"metallic",
	"normal",
	"occlusion",
	"height",
}

func (c Channel) String() string {
	if c < 0 || c >= ChannelCount {
		return "unknown"
	}
	return channelNames[c]
}

// ChannelByName maps a material location name to its channel.
func ChannelByName(name string) (Channel, bool) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return 0, false
}

// Parameters records the Type of every channel. It is comparable and is the
// key of the shader variant caches: two materials with the same channel
// classes share one compiled shader whatever their values are.
type Parameters [ChannelCount]Type

func (p *Parameters) Set(c Channel, t Type) {
	if c < 0 || c >= ChannelCount {
		return
	}
	p[c] = t & 3
}

func (p Parameters) Get(c Channel) Type {
	if c < 0 || c >= ChannelCount {
		return None
	}
	return p[c]
}

// SetByName sets the channel called name. Unknown names are ignored and
// reported with false.
func (p *Parameters) SetByName(name string, t Type) bool {
	c, ok := ChannelByName(name)
	if !ok {
		return false
	}
	p.Set(c, t)
	return true
}

// Key packs two bits per channel, diffuse in the lowest bits.
func (p Parameters) Key() uint32 {
	var key uint32
	for i, t := range p {
		key |= uint32(t&3) << (2 * uint(i))
	}
	return key
}

// Count returns the number of channels that are not None.
func (p Parameters) Count() int {
	n := 0
	for _, t := range p {
		if t != None {
			n++
		}
	}
	return n
}

func (p Parameters) String() string {
	var parts []string
	for i, t := range p {
		if t != None {
			parts = append(parts, channelNames[i]+"="+t.String())
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// FromMaterial derives the parameters of m. Only named locations count;
// indexed locations address fixed slots and never change the variant. A name
// used in several maps ends up with the class of the last map scanned:
// scalars, then vectors, then textures.
func FromMaterial(m *scene.Material) Parameters {
	var p Parameters
	if m == nil {
		return p
	}
	m.ForEachScalars(func(loc scene.Location, _ float32) {
		if loc.IsNamed() {
			p.SetByName(loc.Name(), Scalar)
		}
	})
	m.ForEachVectors(func(loc scene.Location, _ mgl32.Vec3) {
		if loc.IsNamed() {
			p.SetByName(loc.Name(), Vector)
		}
	})
	m.ForEachTextures(func(loc scene.Location, _ *scene.Texture) {
		if loc.IsNamed() {
			p.SetByName(loc.Name(), Texture)
		}
	})
	return p
}
