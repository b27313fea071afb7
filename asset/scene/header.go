package scene

import (
	"fmt"
	"math"
)

// The number of floats used by the header.
const HeaderLen = HeaderTexels * TexelSize

// The Header is stored at the beginning of the data texture and describes
// where each section starts. Offsets are in texels.
type Header struct {
	MeshCount      uint32
	MeshMetaOffset uint32

	BvhNodeCount  uint32
	BvhNodeOffset uint32

	MaterialCount  uint32
	MaterialOffset uint32

	EmissiveTriangleCount  uint32
	EmissiveTriangleOffset uint32
}

// Encode header as 2 RGBA texels.
func (h Header) Floats() [HeaderLen]float32 {
	return [HeaderLen]float32{
		float32(h.MeshCount), float32(h.MeshMetaOffset),
		float32(h.BvhNodeCount), float32(h.BvhNodeOffset),
		float32(h.MaterialCount), float32(h.MaterialOffset),
		float32(h.EmissiveTriangleCount), float32(h.EmissiveTriangleOffset),
	}
}

// Decode the header stored at the beginning of a data texture.
func DecodeHeader(data []float32) (Header, error) {
	if len(data) < HeaderLen {
		return Header{}, fmt.Errorf("%w: got %d floats", ErrTruncatedHeader, len(data))
	}

	var fields [HeaderLen]uint32
	for index := range fields {
		v := data[index]
		if v < 0 || v != float32(math.Trunc(float64(v))) {
			return Header{}, fmt.Errorf("%w: header field %d has value %v", ErrCorruptLayout, index, v)
		}
		fields[index] = uint32(v)
	}

	return Header{
		MeshCount:              fields[0],
		MeshMetaOffset:         fields[1],
		BvhNodeCount:           fields[2],
		BvhNodeOffset:          fields[3],
		MaterialCount:          fields[4],
		MaterialOffset:         fields[5],
		EmissiveTriangleCount:  fields[6],
		EmissiveTriangleOffset: fields[7],
	}, nil
}

// Get the [start, end) texel range of section k. The geometry section spans
// the texels between the mesh meta and the bvh node sections.
func (h Header) bounds(k Section) (start, end uint32, err error) {
	switch k {
	case MeshMetaSection:
		return h.MeshMetaOffset, h.MeshMetaOffset + h.MeshCount*MeshMetaTexels, nil
	case GeometrySection:
		start = h.MeshMetaOffset + h.MeshCount*MeshMetaTexels
		if h.BvhNodeOffset < start {
			return 0, 0, fmt.Errorf("%w: bvh nodes start at texel %d inside mesh meta section", ErrCorruptLayout, h.BvhNodeOffset)
		}
		return start, h.BvhNodeOffset, nil
	case BvhNodeSection:
		return h.BvhNodeOffset, h.BvhNodeOffset + h.BvhNodeCount*BvhNodeTexels, nil
	case MaterialSection:
		return h.MaterialOffset, h.MaterialOffset + h.MaterialCount*MaterialTexels, nil
	case EmissiveSection:
		return h.EmissiveTriangleOffset, h.EmissiveTriangleOffset + h.EmissiveTriangleCount*EmissiveTexels, nil
	}
	return 0, 0, fmt.Errorf("%w: %d", ErrUnknownSection, k)
}
