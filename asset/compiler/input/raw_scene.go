package input

import (
	"fmt"

	"github.com/achilleasa/ashtrace/types"
)

// The shading model used by a material. The numeric value is the type tag
// written to the material records of the compiled scene.
type ShadingModel uint8

const (
	// Surface color is sampled from the material diffuse map when present.
	DiffuseMapShading ShadingModel = iota

	// Physically based shading driven by roughness and metallic values.
	PbrShading
)

func (s ShadingModel) String() string {
	switch s {
	case DiffuseMapShading:
		return "diffuse"
	case PbrShading:
		return "pbr"
	}
	return fmt.Sprintf("ShadingModel(%d)", uint8(s))
}

// Parse a shading model name. An empty name selects DiffuseMapShading.
func ParseShadingModel(name string) (ShadingModel, error) {
	switch name {
	case "", "diffuse":
		return DiffuseMapShading, nil
	case "pbr":
		return PbrShading, nil
	}
	return 0, fmt.Errorf("input: unknown shading model %q", name)
}

const (
	DefaultRoughness float32 = 1.0
	DefaultMetallic  float32 = 0.0
)

// An image referenced by a material. Bitmaps are resolved by the scene reader
// which fills in the image dimensions.
type Bitmap struct {
	Path   string
	Width  uint32
	Height uint32

	Resolved bool
}

type Material struct {
	ID   uint32
	Name string

	Roughness float32
	Metallic  float32
	Color     types.Vec3
	Emissive  types.Vec3
	Shading   ShadingModel

	// Optional diffuse texture.
	DiffuseMap *Bitmap
}

// Create a material with default roughness and metallic values.
func NewMaterial(id uint32, name string) *Material {
	return &Material{
		ID:        id,
		Name:      name,
		Roughness: DefaultRoughness,
		Metallic:  DefaultMetallic,
		Color:     types.XYZ(1, 1, 1),
	}
}

// Returns true if any emissive component is positive.
func (m *Material) IsEmissive() bool {
	return m.Emissive[0] > 0 || m.Emissive[1] > 0 || m.Emissive[2] > 0
}

// A face corner. Each field is a 0-based index into the matching Geometry list.
type FaceVertex struct {
	V int
	T int
	N int
}

// A triangle. Area and Normal are calculated in local space by the reader.
type Face struct {
	Vertices [3]FaceVertex
	Area     float32
	Normal   types.Vec3
}

// Indexed triangle geometry shared by all faces of a mesh.
type Geometry struct {
	Vertices []types.Vec3
	UVs      []types.Vec2
	Normals  []types.Vec3
	Faces    []Face
}

// Get the positions of a face's corners.
func (g *Geometry) FacePositions(face int) (v0, v1, v2 types.Vec3) {
	f := &g.Faces[face]
	return g.Vertices[f.Vertices[0].V], g.Vertices[f.Vertices[1].V], g.Vertices[f.Vertices[2].V]
}

// Append a face and calculate its area and normal. Faces whose position
// indices are out of range are appended as-is and reported by Validate.
func (g *Geometry) AddFace(corners [3]FaceVertex) {
	face := Face{Vertices: corners}
	if g.validPosition(corners[0].V) && g.validPosition(corners[1].V) && g.validPosition(corners[2].V) {
		v0, v1, v2 := g.Vertices[corners[0].V], g.Vertices[corners[1].V], g.Vertices[corners[2].V]
		face.Area = types.TriangleArea(v0, v1, v2)
		face.Normal = types.TriangleNormal(v0, v1, v2)
	}
	g.Faces = append(g.Faces, face)
}

func (g *Geometry) validPosition(index int) bool {
	return index >= 0 && index < len(g.Vertices)
}

// Check that the geometry has at least one face and that all face indices
// refer to existing positions, uvs and normals.
func (g *Geometry) Validate() error {
	if len(g.Faces) == 0 {
		return fmt.Errorf("%w: no faces", ErrMalformedGeometry)
	}

	for faceIndex, face := range g.Faces {
		for corner, fv := range face.Vertices {
			switch {
			case !g.validPosition(fv.V):
				return fmt.Errorf("%w: face %d corner %d: position index %d out of range [0, %d)", ErrMalformedGeometry, faceIndex, corner, fv.V, len(g.Vertices))
			case fv.T < 0 || fv.T >= len(g.UVs):
				return fmt.Errorf("%w: face %d corner %d: uv index %d out of range [0, %d)", ErrMalformedGeometry, faceIndex, corner, fv.T, len(g.UVs))
			case fv.N < 0 || fv.N >= len(g.Normals):
				return fmt.Errorf("%w: face %d corner %d: normal index %d out of range [0, %d)", ErrMalformedGeometry, faceIndex, corner, fv.N, len(g.Normals))
			}
		}
	}

	return nil
}

// A mesh places a geometry in the scene and assigns a material to it.
type Mesh struct {
	Name     string
	Geometry *Geometry
	Material *Material

	Position types.Vec3

	// Euler angles in degrees.
	Rotation types.Vec3
	Scale    types.Vec3
}

// Create a mesh with unit scale positioned at the origin.
func NewMesh(name string, geometry *Geometry, material *Material) *Mesh {
	return &Mesh{
		Name:     name,
		Geometry: geometry,
		Material: material,
		Scale:    types.XYZ(1, 1, 1),
	}
}

// Get the matrix that transforms the mesh geometry from local to world space.
func (m *Mesh) ModelMatrix() types.Mat4 {
	rot := types.QuatFromEuler(m.Rotation[0], m.Rotation[1], m.Rotation[2])
	return types.FromRotationTranslationScale(rot, m.Position, m.Scale)
}

// Get the matrix for transforming normals to world space.
func (m *Mesh) NormalMatrix() types.Mat4 {
	return m.ModelMatrix().Inv().Transpose()
}

// The scene contains all elements that are processed and optimized by the scene compiler.
type Scene struct {
	Meshes []*Mesh

	// A digest of the scene sources. Scenes with the same digest compile
	// to the same output.
	Digest uint64
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		Meshes: make([]*Mesh, 0),
	}
}

// Get the meshes whose material emits light.
func (sc *Scene) EmissiveMeshes() []*Mesh {
	out := make([]*Mesh, 0)
	for _, mesh := range sc.Meshes {
		if mesh.Material != nil && mesh.Material.IsEmissive() {
			out = append(out, mesh)
		}
	}
	return out
}

// Count the faces of all scene meshes.
func (sc *Scene) TriangleCount() int {
	count := 0
	for _, mesh := range sc.Meshes {
		if mesh.Geometry != nil {
			count += len(mesh.Geometry.Faces)
		}
	}
	return count
}
