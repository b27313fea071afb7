package input

import (
	"errors"
	"testing"

	"github.com/achilleasa/ashtrace/types"
	"github.com/stretchr/testify/require"
)

func quadGeometry() *Geometry {
	g := &Geometry{
		Vertices: []types.Vec3{types.XYZ(0, 0, 0), types.XYZ(2, 0, 0), types.XYZ(2, 2, 0), types.XYZ(0, 2, 0)},
		UVs:      []types.Vec2{types.XY(0, 0), types.XY(1, 0), types.XY(1, 1), types.XY(0, 1)},
		Normals:  []types.Vec3{types.XYZ(0, 0, 1)},
	}
	g.AddFace([3]FaceVertex{{0, 0, 0}, {1, 1, 0}, {2, 2, 0}})
	g.AddFace([3]FaceVertex{{0, 0, 0}, {2, 2, 0}, {3, 3, 0}})
	return g
}

func TestAddFaceComputesAreaAndNormal(t *testing.T) {
	g := quadGeometry()

	require.Len(t, g.Faces, 2)
	for _, face := range g.Faces {
		require.InDelta(t, 2.0, face.Area, 1e-6)
		require.Equal(t, types.XYZ(0, 0, 1), face.Normal)
	}

	v0, v1, v2 := g.FacePositions(1)
	require.Equal(t, types.XYZ(0, 0, 0), v0)
	require.Equal(t, types.XYZ(2, 2, 0), v1)
	require.Equal(t, types.XYZ(0, 2, 0), v2)
}

func TestGeometryValidate(t *testing.T) {
	specs := []struct {
		descr  string
		mutate func(g *Geometry)
		expErr bool
	}{
		{"valid geometry", func(g *Geometry) {}, false},
		{"no faces", func(g *Geometry) { g.Faces = nil }, true},
		{"position index out of range", func(g *Geometry) { g.Faces[0].Vertices[1].V = 4 }, true},
		{"negative position index", func(g *Geometry) { g.Faces[1].Vertices[2].V = -1 }, true},
		{"uv index out of range", func(g *Geometry) { g.Faces[0].Vertices[0].T = 9 }, true},
		{"missing normals", func(g *Geometry) { g.Normals = nil }, true},
	}

	for specIndex, spec := range specs {
		g := quadGeometry()
		spec.mutate(g)

		err := g.Validate()
		if !spec.expErr {
			require.NoErrorf(t, err, "[spec %d] %s", specIndex, spec.descr)
			continue
		}
		require.Truef(t, errors.Is(err, ErrMalformedGeometry), "[spec %d] %s: got %v", specIndex, spec.descr, err)
	}
}

func TestMaterialDefaults(t *testing.T) {
	mat := NewMaterial(3, "floor")

	require.Equal(t, DefaultRoughness, mat.Roughness)
	require.Equal(t, DefaultMetallic, mat.Metallic)
	require.Equal(t, DiffuseMapShading, mat.Shading)
	require.False(t, mat.IsEmissive())

	mat.Emissive = types.XYZ(0, 0, 0.5)
	require.True(t, mat.IsEmissive())
}

func TestParseShadingModel(t *testing.T) {
	specs := []struct {
		in     string
		exp    ShadingModel
		expErr bool
	}{
		{"", DiffuseMapShading, false},
		{"diffuse", DiffuseMapShading, false},
		{"pbr", PbrShading, false},
		{"phong", 0, true},
	}

	for specIndex, spec := range specs {
		got, err := ParseShadingModel(spec.in)
		if spec.expErr {
			require.Errorf(t, err, "[spec %d]", specIndex)
			continue
		}
		require.NoErrorf(t, err, "[spec %d]", specIndex)
		require.Equalf(t, spec.exp, got, "[spec %d]", specIndex)
		if spec.in != "" {
			require.Equalf(t, spec.in, got.String(), "[spec %d]", specIndex)
		}
	}
}

func TestMeshModelMatrix(t *testing.T) {
	mesh := NewMesh("box", quadGeometry(), NewMaterial(0, "default"))
	mesh.Position = types.XYZ(1, 2, 3)
	mesh.Scale = types.XYZ(2, 2, 2)

	p := mesh.ModelMatrix().TransformPoint(types.XYZ(1, 1, 1))
	require.InDeltaSlice(t, []float32{3, 4, 5}, p[:], 1e-5)

	// Scaling must not affect transformed normal length or direction
	n := mesh.NormalMatrix().TransformNormal(types.XYZ(0, 0, 1))
	require.InDeltaSlice(t, []float32{0, 0, 1}, n[:], 1e-5)

	// 90 degree rotation around Y maps +X to -Z
	mesh.Scale = types.XYZ(1, 1, 1)
	mesh.Position = types.Vec3{}
	mesh.Rotation = types.XYZ(0, 90, 0)
	p = mesh.ModelMatrix().TransformPoint(types.XYZ(1, 0, 0))
	require.InDeltaSlice(t, []float32{0, 0, -1}, p[:], 1e-5)
}

func TestSceneEmissiveMeshes(t *testing.T) {
	light := NewMaterial(1, "light")
	light.Emissive = types.XYZ(10, 10, 10)

	sc := NewScene()
	sc.Meshes = append(sc.Meshes,
		NewMesh("floor", quadGeometry(), NewMaterial(0, "floor")),
		NewMesh("lamp", quadGeometry(), light),
	)

	emissive := sc.EmissiveMeshes()
	require.Len(t, emissive, 1)
	require.Equal(t, "lamp", emissive[0].Name)
	require.Equal(t, 4, sc.TriangleCount())
}
