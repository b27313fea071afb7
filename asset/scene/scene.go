package scene

import (
	"fmt"

	"github.com/google/uuid"
)

// All offsets stored in the data texture are expressed in RGBA texels.
const TexelSize = 4

// Record sizes in texels.
const (
	HeaderTexels   = 2
	MeshMetaTexels = 1
	MatrixTexels   = 4
	TriangleTexels = 9
	BvhNodeTexels  = 3
	MaterialTexels = 3
	EmissiveTexels = 1
)

// A Section identifies a contiguous region of the data texture.
type Section uint8

const (
	MeshMetaSection Section = iota
	GeometrySection
	BvhNodeSection
	MaterialSection
	EmissiveSection

	numSections
)

func (s Section) String() string {
	switch s {
	case MeshMetaSection:
		return "mesh meta"
	case GeometrySection:
		return "geometry"
	case BvhNodeSection:
		return "bvh nodes"
	case MaterialSection:
		return "materials"
	case EmissiveSection:
		return "emissives"
	}
	return fmt.Sprintf("Section(%d)", uint8(s))
}

// Sections lists all data texture sections in the order they are laid out.
func Sections() []Section {
	out := make([]Section, 0, numSections)
	for s := MeshMetaSection; s < numSections; s++ {
		out = append(out, s)
	}
	return out
}

// A compiled scene. All scene data is packed into a single float32 buffer
// that is uploaded as a Width x Height RGBA32F texture.
type Scene struct {
	ID uuid.UUID

	Data   []float32
	Width  uint32
	Height uint32

	Header Header

	// The max BVH depth including nested mesh trees. Sizes the GPU
	// traversal stack.
	MaxBvhDepth uint32

	TriangleCount uint32
}

// Get the float index of the first record of section k.
func (sc *Scene) Section(k Section) (int, error) {
	start, _, err := sc.Header.bounds(k)
	if err != nil {
		return 0, err
	}
	return int(start) * TexelSize, nil
}

// Get the number of floats occupied by section k.
func (sc *Scene) SectionLen(k Section) (int, error) {
	start, end, err := sc.Header.bounds(k)
	if err != nil {
		return 0, err
	}
	return int(end-start) * TexelSize, nil
}

// Get the floats of record index from a fixed-size record section.
func (sc *Scene) Record(k Section, index int) ([]float32, error) {
	var texels, count uint32
	switch k {
	case MeshMetaSection:
		texels, count = MeshMetaTexels, sc.Header.MeshCount
	case BvhNodeSection:
		texels, count = BvhNodeTexels, sc.Header.BvhNodeCount
	case MaterialSection:
		texels, count = MaterialTexels, sc.Header.MaterialCount
	case EmissiveSection:
		texels, count = EmissiveTexels, sc.Header.EmissiveTriangleCount
	case GeometrySection:
		return nil, fmt.Errorf("%w: %s records have variable size", ErrUnknownSection, k)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownSection, k)
	}

	if index < 0 || uint32(index) >= count {
		return nil, fmt.Errorf("%w: %s record %d (section has %d records)", ErrRecordOutOfRange, k, index, count)
	}

	offset, err := sc.Section(k)
	if err != nil {
		return nil, err
	}
	start := offset + index*int(texels)*TexelSize
	end := start + int(texels)*TexelSize
	if end > len(sc.Data) {
		return nil, fmt.Errorf("%w: %s record %d ends at %d; data has %d floats", ErrCorruptLayout, k, index, end, len(sc.Data))
	}
	return sc.Data[start:end], nil
}

// Get the geometry block (model matrix followed by triangle data) of a mesh.
func (sc *Scene) MeshGeometry(mesh int) ([]float32, error) {
	meta, err := sc.Record(MeshMetaSection, mesh)
	if err != nil {
		return nil, err
	}

	start := int(meta[0]) * TexelSize
	end := start + (MatrixTexels+int(meta[1])*TriangleTexels)*TexelSize
	if end > len(sc.Data) {
		return nil, fmt.Errorf("%w: mesh %d geometry ends at %d; data has %d floats", ErrCorruptLayout, mesh, end, len(sc.Data))
	}
	return sc.Data[start:end], nil
}

// Check that the header matches the data texture: the header must be stored
// at the beginning of the texture, sections must follow each other without
// overlapping and the texture must be large enough to hold them.
func (sc *Scene) Validate() error {
	if uint32(len(sc.Data)) != sc.Width*sc.Height*TexelSize {
		return fmt.Errorf("%w: data has %d floats; expected %dx%d texels", ErrCorruptLayout, len(sc.Data), sc.Width, sc.Height)
	}

	stored, err := DecodeHeader(sc.Data)
	if err != nil {
		return err
	}
	if stored != sc.Header {
		return fmt.Errorf("%w: stored header %+v does not match %+v", ErrCorruptLayout, stored, sc.Header)
	}

	prevEnd := uint32(HeaderTexels)
	for _, k := range Sections() {
		start, end, err := sc.Header.bounds(k)
		if err != nil {
			return err
		}
		if start != prevEnd {
			return fmt.Errorf("%w: %s starts at texel %d; previous section ends at %d", ErrCorruptLayout, k, start, prevEnd)
		}
		prevEnd = end
	}

	if int(prevEnd)*TexelSize > len(sc.Data) {
		return fmt.Errorf("%w: sections end at texel %d; texture has %d texels", ErrCorruptLayout, prevEnd, len(sc.Data)/TexelSize)
	}
	return nil
}
