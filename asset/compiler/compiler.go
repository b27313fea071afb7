package compiler

import (
	"fmt"
	"time"

	"github.com/achilleasa/ashtrace/asset/compiler/bvh"
	"github.com/achilleasa/ashtrace/asset/compiler/input"
	"github.com/achilleasa/ashtrace/asset/scene"
	"github.com/achilleasa/ashtrace/log"
	"github.com/achilleasa/ashtrace/types"
	"github.com/google/uuid"
)

// A mesh whose geometry has been transformed to world space. Per-face data
// is stored as 3 consecutive entries per face.
type worldMesh struct {
	mesh  *input.Mesh
	model types.Mat4

	positions []types.Vec3
	uvs       []types.Vec2
	normals   []types.Vec3

	// World-space face areas.
	areas []float32
}

func (wm *worldMesh) faceCount() int {
	return len(wm.areas)
}

type sceneCompiler struct {
	parsedScene *input.Scene
	logger      log.Logger

	meshes   []*worldMesh
	tree     *bvh.Tree
	maxDepth int
	flat     []bvh.FlatNode
}

// Compile a scene representation parsed by a scene reader into a GPU-friendly
// data texture.
func Compile(parsedScene *input.Scene) (*scene.Scene, error) {
	sc, err := compile(parsedScene)
	if err != nil {
		instrumentCompileError(err)
		return nil, err
	}

	instrumentCompile(int(sc.TriangleCount))
	return sc, nil
}

func compile(parsedScene *input.Scene) (*scene.Scene, error) {
	compiler := &sceneCompiler{
		parsedScene: parsedScene,
		logger:      log.New("scene compiler"),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	var err error
	err = compiler.validate()
	if err != nil {
		return nil, err
	}

	compiler.transformGeometry()

	err = compiler.partitionGeometry()
	if err != nil {
		return nil, err
	}

	sc, err := compiler.encode()
	if err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return sc, nil
}

// Check that all meshes have valid geometry and a material whose resources
// have been resolved.
func (sc *sceneCompiler) validate() error {
	defer instrumentStage("validate", time.Now())

	if sc.parsedScene == nil || len(sc.parsedScene.Meshes) == 0 {
		return ErrNoMeshes
	}

	for meshIndex, mesh := range sc.parsedScene.Meshes {
		if mesh.Material == nil {
			return fmt.Errorf("%w: mesh %d (%q)", ErrMissingMaterial, meshIndex, mesh.Name)
		}
		if bitmap := mesh.Material.DiffuseMap; bitmap != nil && !bitmap.Resolved {
			return fmt.Errorf("%w: material %q diffuse map %q", ErrUnresolvedBitmap, mesh.Material.Name, bitmap.Path)
		}
		if mesh.Geometry == nil {
			return fmt.Errorf("%w: mesh %d (%q) has no geometry", input.ErrMalformedGeometry, meshIndex, mesh.Name)
		}
		if err := mesh.Geometry.Validate(); err != nil {
			return fmt.Errorf("mesh %d (%q): %w", meshIndex, mesh.Name, err)
		}
	}

	return nil
}

// Apply each mesh model transformation to its vertices and normals.
func (sc *sceneCompiler) transformGeometry() {
	defer instrumentStage("transform", time.Now())

	sc.meshes = make([]*worldMesh, len(sc.parsedScene.Meshes))
	for meshIndex, mesh := range sc.parsedScene.Meshes {
		geom := mesh.Geometry
		model := mesh.ModelMatrix()
		normalMat := mesh.NormalMatrix()

		wm := &worldMesh{
			mesh:      mesh,
			model:     model,
			positions: make([]types.Vec3, 3*len(geom.Faces)),
			uvs:       make([]types.Vec2, 3*len(geom.Faces)),
			normals:   make([]types.Vec3, 3*len(geom.Faces)),
			areas:     make([]float32, len(geom.Faces)),
		}

		for faceIndex, face := range geom.Faces {
			base := 3 * faceIndex
			for corner, fv := range face.Vertices {
				wm.positions[base+corner] = model.TransformPoint(geom.Vertices[fv.V])
				wm.uvs[base+corner] = geom.UVs[fv.T]
				wm.normals[base+corner] = normalMat.TransformNormal(geom.Normals[fv.N])
			}
			wm.areas[faceIndex] = types.TriangleArea(wm.positions[base], wm.positions[base+1], wm.positions[base+2])
		}

		sc.meshes[meshIndex] = wm
	}
}

// Generate a two-level BVH tree for the scene. A BVH tree is built for the
// triangles of each mesh; the top level tree partitions the meshes and
// nests each mesh tree in its leaves.
func (sc *sceneCompiler) partitionGeometry() error {
	start := time.Now()
	sc.logger.Notice("partitioning geometry")

	meshPrims := make([]bvh.Primitive, len(sc.meshes))
	for meshIndex, wm := range sc.meshes {
		triPrims := make([]bvh.Primitive, wm.faceCount())
		for faceIndex := range triPrims {
			base := 3 * faceIndex
			triPrims[faceIndex] = bvh.Triangle(
				meshIndex,
				faceIndex,
				bvh.TriangleBBox(wm.positions[base], wm.positions[base+1], wm.positions[base+2]),
			)
		}

		sc.logger.Infof(`building BVH tree for "%s" (%d primitives)`, wm.mesh.Name, len(triPrims))
		meshStart := time.Now()
		meshTree, err := bvh.Build(triPrims)
		if err != nil {
			return fmt.Errorf("mesh %d (%q): %w", meshIndex, wm.mesh.Name, err)
		}
		instrumentStage("mesh_bvh", meshStart)

		meshPrims[meshIndex] = bvh.Nested(meshIndex, meshTree)
	}

	sc.logger.Infof("building scene BVH tree (%d meshes)", len(meshPrims))
	sceneStart := time.Now()
	tree, err := bvh.Build(meshPrims)
	if err != nil {
		return err
	}
	instrumentStage("scene_bvh", sceneStart)

	sc.maxDepth, err = tree.Depth()
	if err != nil {
		return err
	}

	sc.flat, err = bvh.Flatten(tree)
	if err != nil {
		return err
	}
	sc.tree = tree

	sc.logger.Noticef(
		"partitioned geometry in %d ms; bvh nodes: %d, max depth: %d",
		time.Since(start).Nanoseconds()/1e6, len(sc.flat), sc.maxDepth,
	)
	return nil
}

// Pack meshes, bvh nodes, materials and emissive triangles into a data texture.
func (sc *sceneCompiler) encode() (*scene.Scene, error) {
	defer instrumentStage("encode", time.Now())

	enc := newEncoder(sc.logger)
	data, header := enc.encode(sc.meshes, sc.flat)
	data, width, height := padTexture(data)

	if header.EmissiveTriangleCount == 0 {
		sc.logger.Warning("the scene contains no emissive primitives; output will appear black!")
	}

	out := &scene.Scene{
		ID:            uuid.New(),
		Data:          data,
		Width:         width,
		Height:        height,
		Header:        header,
		MaxBvhDepth:   uint32(sc.maxDepth),
		TriangleCount: uint32(sc.parsedScene.TriangleCount()),
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}

	sc.logger.Infof("data texture: %dx%d texels (%d floats used)", width, height, enc.usedFloats)
	return out, nil
}
