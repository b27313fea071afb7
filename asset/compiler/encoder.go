package compiler

import (
	"sort"

	"github.com/achilleasa/ashtrace/asset/compiler/bvh"
	"github.com/achilleasa/ashtrace/asset/compiler/input"
	"github.com/achilleasa/ashtrace/asset/scene"
	"github.com/achilleasa/ashtrace/log"
	"github.com/chewxy/math32"
)

type encoder struct {
	logger log.Logger

	data       []float32
	usedFloats int
}

func newEncoder(logger log.Logger) *encoder {
	return &encoder{logger: logger}
}

// Lay out the scene sections and return the encoded (unpadded) data along
// with its header. Sections are written in order: header, mesh meta, mesh
// geometry, bvh nodes, materials and emissive triangles.
func (e *encoder) encode(meshes []*worldMesh, flat []bvh.FlatNode) ([]float32, scene.Header) {
	materials := uniqueMaterials(meshes, e.logger)
	emissiveCount := 0
	geometryTexels := 0
	for _, wm := range meshes {
		geometryTexels += scene.MatrixTexels + wm.faceCount()*scene.TriangleTexels
		if wm.mesh.Material.IsEmissive() {
			emissiveCount += wm.faceCount()
		}
	}

	header := scene.Header{
		MeshCount:             uint32(len(meshes)),
		MeshMetaOffset:        scene.HeaderTexels,
		BvhNodeCount:          uint32(len(flat)),
		MaterialCount:         uint32(len(materials)),
		EmissiveTriangleCount: uint32(emissiveCount),
	}
	geometryOffset := header.MeshMetaOffset + header.MeshCount*scene.MeshMetaTexels
	header.BvhNodeOffset = geometryOffset + uint32(geometryTexels)
	header.MaterialOffset = header.BvhNodeOffset + header.BvhNodeCount*scene.BvhNodeTexels
	header.EmissiveTriangleOffset = header.MaterialOffset + header.MaterialCount*scene.MaterialTexels
	totalTexels := header.EmissiveTriangleOffset + header.EmissiveTriangleCount*scene.EmissiveTexels

	e.data = make([]float32, 0, totalTexels*scene.TexelSize)

	hdr := header.Floats()
	e.data = append(e.data, hdr[:]...)

	dataOffset := geometryOffset
	for _, wm := range meshes {
		e.data = append(e.data, float32(dataOffset), float32(wm.faceCount()), float32(wm.mesh.Material.ID), 0)
		dataOffset += scene.MatrixTexels + uint32(wm.faceCount())*scene.TriangleTexels
	}

	for _, wm := range meshes {
		e.encodeGeometry(wm)
	}

	for _, node := range flat {
		texels := node.Texels()
		e.data = append(e.data, texels[:]...)
	}

	for _, mat := range materials {
		e.data = append(e.data,
			float32(mat.ID), mat.Roughness, mat.Metallic, float32(mat.Shading),
			mat.Color[0], mat.Color[1], mat.Color[2], 1,
			mat.Emissive[0], mat.Emissive[1], mat.Emissive[2], 0,
		)
	}

	for meshIndex, wm := range meshes {
		if !wm.mesh.Material.IsEmissive() {
			continue
		}
		for faceIndex, area := range wm.areas {
			e.data = append(e.data, area, float32(meshIndex), float32(faceIndex), 0)
		}
	}

	e.usedFloats = len(e.data)
	return e.data, header
}

// Append the model matrix followed by the world-space position, uv and
// normal triples of each face.
func (e *encoder) encodeGeometry(wm *worldMesh) {
	e.data = append(e.data, wm.model[:]...)

	for faceIndex := 0; faceIndex < wm.faceCount(); faceIndex++ {
		base := 3 * faceIndex
		for corner := 0; corner < 3; corner++ {
			p := wm.positions[base+corner]
			e.data = append(e.data, p[0], p[1], p[2], 1)
		}
		for corner := 0; corner < 3; corner++ {
			uv := wm.uvs[base+corner]
			e.data = append(e.data, uv[0], uv[1], 0, 0)
		}
		for corner := 0; corner < 3; corner++ {
			n := wm.normals[base+corner]
			e.data = append(e.data, n[0], n[1], n[2], 1)
		}
	}
}

// Collect the materials used by the scene meshes ordered by id. Materials
// sharing an id are merged; the first definition wins.
func uniqueMaterials(meshes []*worldMesh, logger log.Logger) []*input.Material {
	byID := make(map[uint32]*input.Material)
	for _, wm := range meshes {
		mat := wm.mesh.Material
		if existing, found := byID[mat.ID]; found {
			if existing != mat && !sameMaterial(existing, mat) {
				logger.Warningf("materials %q and %q share id %d; using %q", existing.Name, mat.Name, mat.ID, existing.Name)
			}
			continue
		}
		byID[mat.ID] = mat
	}

	out := make([]*input.Material, 0, len(byID))
	for _, mat := range byID {
		out = append(out, mat)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func sameMaterial(m1, m2 *input.Material) bool {
	return m1.Roughness == m2.Roughness &&
		m1.Metallic == m2.Metallic &&
		m1.Color == m2.Color &&
		m1.Emissive == m2.Emissive &&
		m1.Shading == m2.Shading
}

// Calculate the dimensions of a texture that can hold the given number of
// RGBA texels. The width is the smallest power of two that is not less than
// sqrt(texels); the height is the number of rows needed to hold all texels.
func textureSize(texels int) (width, height uint32) {
	if texels <= 0 {
		return 1, 1
	}

	// 2^ceil(log2(sqrt(texels)))
	minWidth := uint32(math32.Ceil(math32.Sqrt(float32(texels))))
	width = 1
	for width < minWidth {
		width <<= 1
	}
	height = (uint32(texels) + width - 1) / width
	return width, height
}

// Zero-pad data so that it fills a texture and return the texture dimensions.
func padTexture(data []float32) ([]float32, uint32, uint32) {
	texels := (len(data) + scene.TexelSize - 1) / scene.TexelSize
	width, height := textureSize(texels)

	padded := int(width * height * scene.TexelSize)
	if padded > len(data) {
		data = append(data, make([]float32, padded-len(data))...)
	}
	return data, width, height
}
