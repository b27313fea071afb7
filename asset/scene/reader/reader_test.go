package reader

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/ashtrace/asset"
	"github.com/achilleasa/ashtrace/asset/compiler"
	"github.com/achilleasa/ashtrace/asset/compiler/input"
	"github.com/achilleasa/ashtrace/asset/scene"
	"github.com/achilleasa/ashtrace/asset/scene/writer"
	"github.com/achilleasa/ashtrace/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

const jsonDescriptor = `{
  "materials": [
    {"id": 1, "name": "floor", "color": [0.5, 0.5, 0.5], "roughness": 0.25, "metallic": 0.75, "shading": "pbr", "diffuseMap": "textures/wood.bmp"},
    {"id": 2, "name": "light", "emissive": [8, 8, 8]}
  ],
  "meshes": [
    {"name": "floor", "obj": "models/quad.obj", "material": 1},
    {"name": "lamp", "obj": "models/tri.obj", "material": 2, "position": [0, 5, 0]},
    {"name": "floor2", "obj": "models/quad.obj", "material": 1, "position": [3, 0, 0], "rotation": [0, 90, 0], "scale": [2, 2, 2]}
  ]
}`

const yamlDescriptor = `
materials:
  - id: 7
    name: light
    emissive: [1, 0, 0]
meshes:
  - name: lamp
    obj: models/tri.obj
    material: 7
    position: [0, 1, 0]
`

// Write files relative to dir, creating any missing directories.
func writeFiles(t *testing.T, dir string, files map[string][]byte) {
	for name, data := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, data, 0644))
	}
}

func bmpBitmap(t *testing.T, width, height int) []byte {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

// Create a scene directory with both descriptors, their models and textures.
func sceneDir(t *testing.T) string {
	dir := t.TempDir()
	writeFiles(t, dir, map[string][]byte{
		"scene.json":        []byte(jsonDescriptor),
		"scene.yaml":        []byte(yamlDescriptor),
		"models/quad.obj":   []byte(quadObj),
		"models/tri.obj":    []byte(triangleObj),
		"textures/wood.bmp": bmpBitmap(t, 4, 2),
	})
	return dir
}

func readInput(t *testing.T, path string) (*input.Scene, error) {
	res, err := asset.NewResource(path, nil)
	require.NoError(t, err)
	defer res.Close()
	return newDescriptorReader().ReadInput(res)
}

func TestReadJSONDescriptor(t *testing.T) {
	dir := sceneDir(t)

	in, err := readInput(t, filepath.Join(dir, "scene.json"))
	require.NoError(t, err)
	require.NotZero(t, in.Digest)
	require.Len(t, in.Meshes, 3)

	floor := in.Meshes[0].Material
	require.Equal(t, uint32(1), floor.ID)
	require.Equal(t, types.XYZ(0.5, 0.5, 0.5), floor.Color)
	require.Equal(t, float32(0.25), floor.Roughness)
	require.Equal(t, float32(0.75), floor.Metallic)
	require.Equal(t, input.PbrShading, floor.Shading)
	require.Equal(t, &input.Bitmap{Path: "textures/wood.bmp", Width: 4, Height: 2, Resolved: true}, floor.DiffuseMap)

	light := in.Meshes[1].Material
	require.Equal(t, input.DefaultRoughness, light.Roughness)
	require.Equal(t, input.DiffuseMapShading, light.Shading)
	require.True(t, light.IsEmissive())

	// Meshes sharing a model and a material share the parsed objects
	require.True(t, in.Meshes[0].Geometry == in.Meshes[2].Geometry)
	require.True(t, in.Meshes[0].Material == in.Meshes[2].Material)

	require.Equal(t, types.XYZ(1, 1, 1), in.Meshes[0].Scale)
	require.Equal(t, types.XYZ(0, 5, 0), in.Meshes[1].Position)
	require.Equal(t, types.XYZ(0, 90, 0), in.Meshes[2].Rotation)
	require.Equal(t, types.XYZ(2, 2, 2), in.Meshes[2].Scale)
	require.Equal(t, 5, in.TriangleCount())

	// Reading the same sources yields the same digest
	again, err := readInput(t, filepath.Join(dir, "scene.json"))
	require.NoError(t, err)
	require.Equal(t, in.Digest, again.Digest)
}

func TestReadYAMLDescriptor(t *testing.T) {
	dir := sceneDir(t)

	in, err := readInput(t, filepath.Join(dir, "scene.yaml"))
	require.NoError(t, err)
	require.Len(t, in.Meshes, 1)

	mesh := in.Meshes[0]
	require.Equal(t, "lamp", mesh.Name)
	require.Equal(t, uint32(7), mesh.Material.ID)
	require.Equal(t, types.XYZ(1, 0, 0), mesh.Material.Emissive)
	require.Equal(t, types.XYZ(0, 1, 0), mesh.Position)
	require.Equal(t, types.XYZ(1, 1, 1), mesh.Scale)
	require.Len(t, in.EmissiveMeshes(), 1)
}

func TestReadSceneCompilesDescriptors(t *testing.T) {
	dir := sceneDir(t)

	sc, err := ReadScene(filepath.Join(dir, "scene.json"))
	require.NoError(t, err)
	require.NoError(t, sc.Validate())

	require.Equal(t, uint32(3), sc.Header.MeshCount)
	require.Equal(t, uint32(9), sc.Header.BvhNodeCount)
	require.Equal(t, uint32(2), sc.Header.MaterialCount)
	require.Equal(t, uint32(1), sc.Header.EmissiveTriangleCount)
	require.Equal(t, uint32(5), sc.TriangleCount)

	emissive, err := sc.Record(scene.EmissiveSection, 0)
	require.NoError(t, err)
	require.Equal(t, []float32{2, 1, 0, 0}, emissive)

	// Unchanged sources are served from the compile cache
	again, err := ReadScene(filepath.Join(dir, "scene.json"))
	require.NoError(t, err)
	require.True(t, sc == again, "expected cached scene")
}

func TestReadDescriptorErrors(t *testing.T) {
	specs := []struct {
		descr      string
		descriptor string
		expErr     error
	}{
		{
			"unknown material",
			`{"materials": [{"id": 1}], "meshes": [{"obj": "models/tri.obj", "material": 2}]}`,
			ErrUnknownMaterial,
		},
		{
			"duplicate material",
			`{"materials": [{"id": 1}, {"id": 1}], "meshes": []}`,
			ErrDuplicateMaterial,
		},
		{
			"unknown field",
			`{"materials": [{"id": 1, "ior": 1.5}]}`,
			ErrInvalidDescriptor,
		},
		{
			"unknown shading model",
			`{"materials": [{"id": 1, "shading": "toon"}]}`,
			ErrInvalidDescriptor,
		},
		{
			"mesh without obj",
			`{"materials": [{"id": 1}], "meshes": [{"name": "empty", "material": 1}]}`,
			ErrInvalidDescriptor,
		},
		{
			"missing bitmap",
			`{"materials": [{"id": 1, "diffuseMap": "textures/missing.png"}]}`,
			compiler.ErrUnresolvedBitmap,
		},
		{
			"bitmap is not an image",
			`{"materials": [{"id": 1, "diffuseMap": "models/tri.obj"}]}`,
			compiler.ErrUnresolvedBitmap,
		},
		{
			"malformed geometry",
			`{"materials": [{"id": 1}], "meshes": [{"obj": "models/bad.obj", "material": 1}]}`,
			input.ErrMalformedGeometry,
		},
		{
			"empty document",
			``,
			ErrInvalidDescriptor,
		},
	}

	for specIndex, spec := range specs {
		dir := sceneDir(t)
		writeFiles(t, dir, map[string][]byte{
			"broken.json":    []byte(spec.descriptor),
			"models/bad.obj": []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"),
		})

		_, err := readInput(t, filepath.Join(dir, "broken.json"))
		require.Truef(t, errors.Is(err, spec.expErr), "[spec %d] %s: got %v", specIndex, spec.descr, err)
	}
}

func TestReadSceneUnsupportedFormat(t *testing.T) {
	dir := sceneDir(t)

	_, err := ReadScene(filepath.Join(dir, "models", "quad.obj"))
	require.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestZipRoundTrip(t *testing.T) {
	dir := sceneDir(t)

	sc, err := ReadScene(filepath.Join(dir, "scene.yaml"))
	require.NoError(t, err)

	zipFile := filepath.Join(dir, "scene.zip")
	require.NoError(t, writer.WriteScene(sc, zipFile))

	loaded, err := ReadScene(zipFile)
	require.NoError(t, err)
	require.Equal(t, sc, loaded)
}

func TestZipReaderErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string][]byte{
		"garbage.zip": []byte("not a zip file"),
	})

	_, err := ReadScene(filepath.Join(dir, "garbage.zip"))
	require.True(t, errors.Is(err, ErrInvalidArchive))
}
