package vulkan

import (
	"errors"
	"strings"
)

var errFake = errors.New("fake device failure")

type fakeResource struct {
	device *fakeDevice
	id     int
	kind   string
	size   int
	desc   ImageDesc
}

func (r *fakeResource) Destroy() {
	if !r.device.live[r.id] {
		r.device.doubleFrees++
		return
	}
	delete(r.device.live, r.id)
}

// fakeDevice hands out resources without a GPU and tracks which are alive.
type fakeDevice struct {
	nextID      int
	live        map[int]bool
	created     map[string]int
	doubleFrees int
	waits       int

	failBuffers bool
	failImages  bool
	failModules bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		live:    make(map[int]bool),
		created: make(map[string]int),
	}
}

func (d *fakeDevice) resource(kind string, size int) *fakeResource {
	d.nextID++
	d.live[d.nextID] = true
	d.created[kind]++
	return &fakeResource{device: d, id: d.nextID, kind: kind, size: size}
}

func (d *fakeDevice) CreateShaderModule(code []uint32) (Resource, error) {
	if d.failModules {
		return nil, errFake
	}
	return d.resource("module", len(code)*4), nil
}

func (d *fakeDevice) CreateBuffer(usage BufferUsage, data []byte) (Resource, error) {
	if d.failBuffers {
		return nil, errFake
	}
	return d.resource(usage.String(), len(data)), nil
}

func (d *fakeDevice) CreateImage(desc ImageDesc) (Resource, error) {
	if d.failImages {
		return nil, errFake
	}
	kind := "image"
	if desc.Usage != ImageSampled {
		kind = "target"
	}
	r := d.resource(kind, len(desc.Pixels))
	r.desc = desc
	return r, nil
}

func (d *fakeDevice) WaitIdle() { d.waits++ }

func (d *fakeDevice) liveCount() int { return len(d.live) }

// fakeCompiler returns a valid SPIR-V header and records every source.
type fakeCompiler struct {
	sources []string
	fail    func(source string) bool
}

func (c *fakeCompiler) compile(source string) ([]uint32, error) {
	if c.fail != nil && c.fail(source) {
		return nil, errFake
	}
	c.sources = append(c.sources, source)
	return []uint32{spirvMagic, 0x00010000, 0, 1, 0}, nil
}

func (c *fakeCompiler) containing(s string) int {
	n := 0
	for _, src := range c.sources {
		if strings.Contains(src, s) {
			n++
		}
	}
	return n
}
