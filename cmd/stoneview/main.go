// Command stoneview opens a window and renders a small demo world with the
// configured back end.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"StoneEngine/internal/behaviour"
	"StoneEngine/internal/config"
	"StoneEngine/internal/engine"
	"StoneEngine/internal/image"
	"StoneEngine/internal/loader"
	"StoneEngine/internal/logger"
	"StoneEngine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "stone.toml", "path to the TOML settings file")
	backend := flag.String("backend", "", "renderer back end, opengl or vulkan (overrides the config)")
	writeDefault := flag.Bool("write-default-config", false, "write the default settings to -config and exit")
	flag.Parse()

	if *writeDefault {
		if err := config.Default().Save(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *backend != "" {
		settings.Renderer.Backend = *backend
	}
	if err := logger.Configure(settings.Logging.Level, settings.Logging.Development); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	world, spinning := demoWorld(settings)
	e, err := engine.New(settings, world)
	if err != nil {
		logger.Log.Fatal("Invalid engine settings", zap.Error(err))
	}
	e.Behaviours.Add(behaviour.NewSpin(spinning, mgl32.Vec3{0, 1, 0}, 0.8))
	if moon := scene.Find(world, "moon"); moon != nil {
		e.Behaviours.Add(behaviour.Create("orbit", moon.(*scene.PivotNode)))
	}

	if err := e.Run(); err != nil {
		logger.Log.Fatal("Engine stopped", zap.Error(err))
	}
}

// demoWorld builds a textured cube with a ring of instanced copies, an
// orbiting moon, a noise terrain and an axis gizmo. It returns the pivot the
// spin behaviour drives.
func demoWorld(settings config.Settings) (*scene.WorldNode, *scene.PivotNode) {
	world := scene.NewWorldNode("world")

	camera := scene.NewCameraNode("camera")
	camera.SetPerspective(mgl32.DegToRad(60),
		float32(settings.Renderer.FrameWidth)/float32(settings.Renderer.FrameHeight), 0.1, 500)
	camera.SetPosition(mgl32.Vec3{0, 4, 12})
	camera.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	world.AddChild(camera)
	world.SetActiveCamera(camera)

	noise := scene.NewTexture(image.NewNoiseSource("noise", image.Size{Width: 256, Height: 256}, 42, image.RGBA))
	noise.SetFilter(scene.FilterLinear)

	material := scene.NewMaterial("stone")
	material.SetTextureParameter(scene.NamedLocation("diffuse"), noise)
	material.SetScalarParameter(scene.NamedLocation("roughness"), 0.7)

	cube := scene.NewStaticMesh(loader.LoadCube(1))

	pivot := scene.NewPivotNode("pivot")
	world.AddChild(pivot)

	center := scene.NewMeshNode("cube")
	center.SetMesh(cube)
	center.SetMaterial(material)
	pivot.AddChild(center)

	ring := scene.NewInstancedMeshNode("ring")
	ring.SetMesh(cube)
	ring.SetMaterial(material)
	for i := 0; i < 12; i++ {
		angle := float32(i) * 2 * math.Pi / 12
		ring.AddInstance(mgl32.HomogRotate3DY(angle).
			Mul4(mgl32.Translate3D(5, 0, 0)).
			Mul4(mgl32.Scale3D(0.4, 0.4, 0.4)))
	}
	pivot.AddChild(ring)

	moon := scene.NewPivotNode("moon")
	moon.SetPosition(mgl32.Vec3{0, 2, 0})
	moon.SetScale(mgl32.Vec3{0.3, 0.3, 0.3})
	moonMesh := scene.NewMeshNode("moon-mesh")
	moonMesh.SetMesh(cube)
	moon.AddChild(moonMesh)
	world.AddChild(moon)

	if terrainMesh, err := loader.LoadTerrain(64, 0.5, 1.5, 7); err == nil {
		ground := scene.NewPivotNode("ground")
		ground.SetPosition(mgl32.Vec3{-16, -2, -16})
		terrain := scene.NewMeshNode("terrain")
		terrain.SetMesh(terrainMesh)
		terrain.SetMaterial(material)
		ground.AddChild(terrain)
		world.AddChild(ground)
	}

	gizmo := scene.NewWireframeShape("axes")
	gizmo.AddLine(mgl32.Vec3{}, mgl32.Vec3{2, 0, 0})
	gizmo.AddLine(mgl32.Vec3{}, mgl32.Vec3{0, 2, 0})
	gizmo.AddLine(mgl32.Vec3{}, mgl32.Vec3{0, 0, 2})
	gizmo.SetColor(mgl32.Vec3{1, 0.8, 0.2})
	gizmo.SetIgnoreDepth(true)
	world.AddChild(gizmo)

	return world, pivot
}
