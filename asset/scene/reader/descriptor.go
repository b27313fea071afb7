package reader

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/achilleasa/ashtrace/asset"
	"github.com/achilleasa/ashtrace/asset/compiler"
	"github.com/achilleasa/ashtrace/asset/compiler/input"
	"github.com/achilleasa/ashtrace/asset/scene"
	"github.com/achilleasa/ashtrace/log"
	"github.com/achilleasa/ashtrace/types"
	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"
)

// A scene descriptor lists the scene materials and the meshes that use them.
// Mesh geometry is loaded from wavefront obj files whose paths are relative
// to the descriptor.
type sceneDescriptor struct {
	Materials []materialDescriptor `json:"materials" yaml:"materials"`
	Meshes    []meshDescriptor     `json:"meshes" yaml:"meshes"`
}

type materialDescriptor struct {
	ID         uint32      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Color      *[3]float32 `json:"color,omitempty" yaml:"color,omitempty"`
	Roughness  *float32    `json:"roughness,omitempty" yaml:"roughness,omitempty"`
	Metallic   *float32    `json:"metallic,omitempty" yaml:"metallic,omitempty"`
	Emissive   [3]float32  `json:"emissive" yaml:"emissive"`
	Shading    string      `json:"shading,omitempty" yaml:"shading,omitempty"`
	DiffuseMap string      `json:"diffuseMap,omitempty" yaml:"diffuseMap,omitempty"`
}

type meshDescriptor struct {
	Name     string      `json:"name" yaml:"name"`
	Obj      string      `json:"obj" yaml:"obj"`
	Material uint32      `json:"material" yaml:"material"`
	Position [3]float32  `json:"position" yaml:"position"`
	Rotation [3]float32  `json:"rotation" yaml:"rotation"`
	Scale    *[3]float32 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

type descriptorReader struct {
	logger log.Logger

	// Geometries indexed by obj path so that meshes sharing a model
	// also share its geometry.
	geometries map[string]*input.Geometry

	// Resolved bitmaps indexed by path.
	bitmaps map[string]*input.Bitmap
}

func newDescriptorReader() *descriptorReader {
	return &descriptorReader{
		logger:     log.New("scene descriptor reader"),
		geometries: make(map[string]*input.Geometry),
		bitmaps:    make(map[string]*input.Bitmap),
	}
}

// Read a scene descriptor and compile it.
func (r *descriptorReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	parsedScene, err := r.ReadInput(sceneRes)
	if err != nil {
		return nil, err
	}
	return sceneCache.Get(parsedScene)
}

// Read a scene descriptor along with any referenced models and bitmaps.
func (r *descriptorReader) ReadInput(sceneRes *asset.Resource) (*input.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	desc, err := decodeDescriptor(sceneRes)
	if err != nil {
		return nil, err
	}

	materials, err := r.buildMaterials(sceneRes, desc.Materials)
	if err != nil {
		return nil, err
	}

	parsedScene := input.NewScene()
	for meshIndex, md := range desc.Meshes {
		mesh, err := r.buildMesh(sceneRes, meshIndex, md, materials)
		if err != nil {
			return nil, err
		}
		parsedScene.Meshes = append(parsedScene.Meshes, mesh)
	}
	parsedScene.Digest = sceneRes.Digest()

	r.logger.Noticef(
		"parsed scene in %d ms; meshes: %d, materials: %d, triangles: %d",
		time.Since(start).Nanoseconds()/1e6, len(parsedScene.Meshes), len(materials), parsedScene.TriangleCount(),
	)
	return parsedScene, nil
}

// Decode descriptor using the json or yaml decoder depending on the resource
// extension. Unknown fields are rejected.
func decodeDescriptor(res *asset.Resource) (*sceneDescriptor, error) {
	data, err := io.ReadAll(res)
	if err != nil {
		return nil, err
	}

	desc := &sceneDescriptor{}
	switch res.Ext() {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(desc)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(desc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, res.Path())
	}

	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s: empty document", ErrInvalidDescriptor, res.Path())
	} else if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidDescriptor, res.Path(), err)
	}
	return desc, nil
}

func (r *descriptorReader) buildMaterials(sceneRes *asset.Resource, descs []materialDescriptor) (map[uint32]*input.Material, error) {
	materials := make(map[uint32]*input.Material, len(descs))
	for _, md := range descs {
		if _, exists := materials[md.ID]; exists {
			return nil, fmt.Errorf("%w: %d (%q)", ErrDuplicateMaterial, md.ID, md.Name)
		}

		mat := input.NewMaterial(md.ID, md.Name)
		if md.Color != nil {
			mat.Color = types.Vec3(*md.Color)
		}
		if md.Roughness != nil {
			mat.Roughness = *md.Roughness
		}
		if md.Metallic != nil {
			mat.Metallic = *md.Metallic
		}
		mat.Emissive = types.Vec3(md.Emissive)

		shading, err := input.ParseShadingModel(md.Shading)
		if err != nil {
			return nil, fmt.Errorf("%w: material %q: %s", ErrInvalidDescriptor, md.Name, err)
		}
		mat.Shading = shading

		if md.DiffuseMap != "" {
			mat.DiffuseMap, err = r.resolveBitmap(sceneRes, md.DiffuseMap)
			if err != nil {
				return nil, fmt.Errorf("material %q: %w", md.Name, err)
			}
		}

		r.logger.Infof(`processed material "%s" (id %d, %s shading)`, mat.Name, mat.ID, mat.Shading)
		materials[md.ID] = mat
	}

	return materials, nil
}

func (r *descriptorReader) buildMesh(sceneRes *asset.Resource, meshIndex int, md meshDescriptor, materials map[uint32]*input.Material) (*input.Mesh, error) {
	mat, exists := materials[md.Material]
	if !exists {
		return nil, fmt.Errorf("%w: mesh %d (%q) references material %d", ErrUnknownMaterial, meshIndex, md.Name, md.Material)
	}
	if md.Obj == "" {
		return nil, fmt.Errorf("%w: mesh %d (%q) does not specify an obj file", ErrInvalidDescriptor, meshIndex, md.Name)
	}

	geom, err := r.loadGeometry(sceneRes, md.Obj)
	if err != nil {
		return nil, fmt.Errorf("mesh %d (%q): %w", meshIndex, md.Name, err)
	}

	name := md.Name
	if name == "" {
		name = fmt.Sprintf("mesh-%d", meshIndex)
	}

	mesh := input.NewMesh(name, geom, mat)
	mesh.Position = types.Vec3(md.Position)
	mesh.Rotation = types.Vec3(md.Rotation)
	if md.Scale != nil {
		mesh.Scale = types.Vec3(*md.Scale)
	}
	return mesh, nil
}

// Load an obj file relative to the scene resource. Each file is only parsed once.
func (r *descriptorReader) loadGeometry(sceneRes *asset.Resource, objPath string) (*input.Geometry, error) {
	if geom, exists := r.geometries[objPath]; exists {
		r.logger.Infof(`re-using already loaded geometry "%s"`, objPath)
		return geom, nil
	}

	objRes, err := asset.NewResource(objPath, sceneRes)
	if err != nil {
		return nil, err
	}
	defer objRes.Close()

	geom, err := newWavefrontReader().Read(objRes)
	if err != nil {
		return nil, err
	}

	r.geometries[objPath] = geom
	return geom, nil
}

// Resolve a bitmap relative to the scene resource. Each bitmap is only
// resolved once.
func (r *descriptorReader) resolveBitmap(sceneRes *asset.Resource, bitmapPath string) (*input.Bitmap, error) {
	if bitmap, exists := r.bitmaps[bitmapPath]; exists {
		return bitmap, nil
	}

	bitmap := &input.Bitmap{Path: bitmapPath}
	bitmapRes, err := asset.NewResource(bitmapPath, sceneRes)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %s", compiler.ErrUnresolvedBitmap, bitmapPath, err)
	}
	defer bitmapRes.Close()

	if err = resolveBitmap(bitmap, bitmapRes); err != nil {
		return nil, err
	}

	r.logger.Infof(`resolved bitmap "%s" (%dx%d)`, bitmapPath, bitmap.Width, bitmap.Height)
	r.bitmaps[bitmapPath] = bitmap
	return bitmap, nil
}
