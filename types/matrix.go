package types

import "github.com/go-gl/mathgl/mgl32"

// A column-major 4x4 matrix. Elements 12-14 hold the translation component.
type Mat4 mgl32.Mat4

// Create an identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Create a translation matrix.
func Translate4(v Vec3) Mat4 {
	return Mat4(mgl32.Translate3D(v[0], v[1], v[2]))
}

// Create a scale matrix.
func Scale4(v Vec3) Mat4 {
	return Mat4(mgl32.Scale3D(v[0], v[1], v[2]))
}

// Multiply two matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Multiply matrix with a 4 component column vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4(mgl32.Mat4(m).Mul4x1(mgl32.Vec4(v)))
}

// Calculate the matrix inverse. A zero matrix is returned if m is singular.
func (m Mat4) Inv() Mat4 {
	return Mat4(mgl32.Mat4(m).Inv())
}

// Transpose matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4(mgl32.Mat4(m).Transpose())
}

// Transform a point. The result is divided by the homogeneous w component
// unless it is zero.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	out := m.Mul4x1(p.Vec4(1))
	if out[3] != 0 && out[3] != 1 {
		return out.Vec3().Mul(1.0 / out[3])
	}
	return out.Vec3()
}

// Transform a direction vector using the upper 3x3 part of the matrix and
// normalize the result.
func (m Mat4) TransformNormal(n Vec3) Vec3 {
	return m.Mul4x1(n.Vec4(0)).Vec3().Normalize()
}
