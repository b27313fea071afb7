package bvh

import (
	"math"

	"github.com/achilleasa/ashtrace/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

var (
	posInf = float32(math.Inf(1))
	negInf = float32(math.Inf(-1))
)

// BBox is an axis-aligned bounding box. Boxes are values; Union and
// UnionPoint always return a new box. The centroid is computed on first use
// and cached, so a box must not be modified after Centroid has been called.
type BBox struct {
	Min types.Vec3
	Max types.Vec3

	centroid    types.Vec3
	hasCentroid bool
}

// Create an empty box that absorbs any point or box it is unioned with.
func EmptyBBox() BBox {
	return BBox{
		Min: types.Vec3{posInf, posInf, posInf},
		Max: types.Vec3{negInf, negInf, negInf},
	}
}

// Create a box spanning two points.
func NewBBox(p1, p2 types.Vec3) BBox {
	return BBox{
		Min: types.MinVec3(p1, p2),
		Max: types.MaxVec3(p1, p2),
	}
}

// Create the bounding box of a triangle.
func TriangleBBox(v0, v1, v2 types.Vec3) BBox {
	return NewBBox(v0, v1).UnionPoint(v2)
}

// Get a box that also encloses point p.
func (b BBox) UnionPoint(p types.Vec3) BBox {
	return BBox{
		Min: types.MinVec3(b.Min, p),
		Max: types.MaxVec3(b.Max, p),
	}
}

// Get a box enclosing both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		Min: types.MinVec3(b.Min, other.Min),
		Max: types.MaxVec3(b.Max, other.Max),
	}
}

// Get the box midpoint.
func (b *BBox) Centroid() types.Vec3 {
	if !b.hasCentroid {
		b.centroid = b.Min.Mul(0.5).Add(b.Max.Mul(0.5))
		b.hasCentroid = true
	}
	return b.centroid
}

// Get the box extent along each axis.
func (b BBox) Diagonal() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the axis with the largest extent. On equal extents X is preferred over
// Y and Z and Y is preferred over Z; tree shapes depend on this order.
func (b BBox) MaxExtent() Axis {
	d := b.Diagonal()
	switch {
	case d[0] >= d[1] && d[0] >= d[2]:
		return XAxis
	case d[1] >= d[2]:
		return YAxis
	default:
		return ZAxis
	}
}

// Check whether the box bounds are identical to other's. The cached centroid
// is ignored.
func (b BBox) Equal(other BBox) bool {
	return b.Min == other.Min && b.Max == other.Max
}
