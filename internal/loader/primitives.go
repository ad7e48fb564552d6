// Package loader builds procedural meshes for scenes.
package loader

import (
	"errors"

	"StoneEngine/internal/scene"

	perlin "github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

type cubeFace struct {
	normal, tangent, bitangent mgl32.Vec3
}

var cubeFaces = []cubeFace{
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
}

// LoadCube builds a cube of the given half extent with one quad per face.
func LoadCube(half float32) *scene.DynamicMesh {
	mesh := scene.NewDynamicMesh()
	mesh.WithElementsRef(func(vertices *[]scene.Vertex, indices *[]uint32) {
		for _, f := range cubeFaces {
			base := uint32(len(*vertices))
			for _, corner := range [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
				u, v := corner.X()*2-1, corner.Y()*2-1
				pos := f.normal.Add(f.tangent.Mul(u)).Add(f.bitangent.Mul(v)).Mul(half)
				*vertices = append(*vertices, scene.Vertex{
					Position:  pos,
					Normal:    f.normal,
					Tangent:   f.tangent,
					Bitangent: f.bitangent,
					UV:        corner,
				})
			}
			*indices = append(*indices, base, base+1, base+2, base, base+2, base+3)
		}
	})
	return mesh
}

// LoadPlane builds a flat gridSize x gridSize vertex grid on the XZ plane,
// starting at the origin.
func LoadPlane(gridSize int, gridSpacing float32) (*scene.DynamicMesh, error) {
	return loadGrid(gridSize, gridSpacing, func(x, z int) float32 { return 0 })
}

// LoadTerrain is LoadPlane with perlin noise heights scaled by amplitude.
func LoadTerrain(gridSize int, gridSpacing, amplitude float32, seed int64) (*scene.DynamicMesh, error) {
	p := perlin.NewPerlin(2, 2, 3, seed)
	return loadGrid(gridSize, gridSpacing, func(x, z int) float32 {
		return float32(p.Noise2D(float64(x)*0.1, float64(z)*0.1)) * amplitude
	})
}

func loadGrid(gridSize int, gridSpacing float32, height func(x, z int) float32) (*scene.DynamicMesh, error) {
	if gridSize < 2 {
		return nil, errors.New("gridSize must be at least 2")
	}

	mesh := scene.NewDynamicMesh()
	mesh.WithElementsRef(func(vertices *[]scene.Vertex, indices *[]uint32) {
		*vertices = make([]scene.Vertex, 0, gridSize*gridSize)
		*indices = make([]uint32, 0, (gridSize-1)*(gridSize-1)*6)

		uvStep := 1 / float32(gridSize-1)
		for x := 0; x < gridSize; x++ {
			for z := 0; z < gridSize; z++ {
				*vertices = append(*vertices, scene.Vertex{
					Position:  mgl32.Vec3{float32(x) * gridSpacing, height(x, z), float32(z) * gridSpacing},
					Tangent:   mgl32.Vec3{1, 0, 0},
					Bitangent: mgl32.Vec3{0, 0, 1},
					UV:        mgl32.Vec2{float32(x) * uvStep, float32(z) * uvStep},
				})
			}
		}

		for x := 0; x < gridSize-1; x++ {
			for z := 0; z < gridSize-1; z++ {
				topLeft := uint32(x*gridSize + z)
				topRight := topLeft + 1
				bottomLeft := uint32((x+1)*gridSize + z)
				bottomRight := bottomLeft + 1
				*indices = append(*indices, topLeft, topRight, bottomRight, topLeft, bottomRight, bottomLeft)
			}
		}
	})
	RecalculateNormals(mesh)
	return mesh, nil
}

// RecalculateNormals replaces every vertex normal with the normalized sum of
// the face normals around it. Triangles with an out of range index are
// skipped.
func RecalculateNormals(mesh *scene.DynamicMesh) {
	mesh.WithElementsRef(func(vertices *[]scene.Vertex, indices *[]uint32) {
		verts := *vertices
		faces := *indices
		normals := make([]mgl32.Vec3, len(verts))

		for i := 0; i+2 < len(faces); i += 3 {
			i0, i1, i2 := faces[i], faces[i+1], faces[i+2]
			if int(i0) >= len(verts) || int(i1) >= len(verts) || int(i2) >= len(verts) {
				continue
			}
			edge1 := verts[i1].Position.Sub(verts[i0].Position)
			edge2 := verts[i2].Position.Sub(verts[i0].Position)
			normal := edge1.Cross(edge2)
			normals[i0] = normals[i0].Add(normal)
			normals[i1] = normals[i1].Add(normal)
			normals[i2] = normals[i2].Add(normal)
		}

		for i := range verts {
			if normals[i].Len() > 0 {
				verts[i].Normal = normals[i].Normalize()
			}
		}
	})
}
