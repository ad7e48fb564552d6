package opengl

import (
	"StoneEngine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformCache caches uniform locations to avoid repeated driver lookups.
type UniformCache struct {
	driver    Driver
	locations map[string]int32
	program   uint32
}

func NewUniformCache(driver Driver, program uint32) *UniformCache {
	return &UniformCache{
		driver:    driver,
		locations: make(map[string]int32),
		program:   program,
	}
}

// GetLocation returns the cached uniform location or fetches and caches it.
func (uc *UniformCache) GetLocation(name string) int32 {
	if loc, exists := uc.locations[name]; exists {
		return loc
	}
	loc := uc.driver.UniformLocation(uc.program, name)
	uc.locations[name] = loc
	return loc
}

// Resolve maps a material location to a uniform location. Named locations are
// looked up by name, indexed ones are explicit uniform locations.
func (uc *UniformCache) Resolve(loc scene.Location) int32 {
	if loc.IsNamed() {
		return uc.GetLocation(loc.Name())
	}
	return int32(loc.Binding())
}

func (uc *UniformCache) SetFloat(name string, value float32) {
	uc.setFloat(uc.GetLocation(name), value)
}

func (uc *UniformCache) SetVec3(name string, value mgl32.Vec3) {
	uc.setVec3(uc.GetLocation(name), value)
}

func (uc *UniformCache) SetInt(name string, value int32) {
	uc.setInt(uc.GetLocation(name), value)
}

func (uc *UniformCache) SetMat3(name string, value mgl32.Mat3) {
	if loc := uc.GetLocation(name); loc != -1 {
		uc.driver.UniformMatrix3(loc, value)
	}
}

func (uc *UniformCache) SetMat4(name string, value mgl32.Mat4) {
	if loc := uc.GetLocation(name); loc != -1 {
		uc.driver.UniformMatrix4(loc, value)
	}
}

func (uc *UniformCache) SetMat4Array(name string, values []mgl32.Mat4) {
	if loc := uc.GetLocation(name); loc != -1 && len(values) > 0 {
		uc.driver.UniformMatrix4Array(loc, values)
	}
}

// SetFloatAt, SetVec3At and SetIntAt address a uniform by material location.
func (uc *UniformCache) SetFloatAt(loc scene.Location, value float32) {
	uc.setFloat(uc.Resolve(loc), value)
}

func (uc *UniformCache) SetVec3At(loc scene.Location, value mgl32.Vec3) {
	uc.setVec3(uc.Resolve(loc), value)
}

func (uc *UniformCache) SetIntAt(loc scene.Location, value int32) {
	uc.setInt(uc.Resolve(loc), value)
}

func (uc *UniformCache) setFloat(loc int32, value float32) {
	if loc != -1 {
		uc.driver.Uniform1f(loc, value)
	}
}

func (uc *UniformCache) setVec3(loc int32, value mgl32.Vec3) {
	if loc != -1 {
		uc.driver.Uniform3f(loc, value)
	}
}

func (uc *UniformCache) setInt(loc int32, value int32) {
	if loc != -1 {
		uc.driver.Uniform1i(loc, value)
	}
}

// Clear clears the cache (call when the program changes).
func (uc *UniformCache) Clear() {
	uc.locations = make(map[string]int32)
}
