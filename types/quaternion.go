package types

import "math"

// Quaternion implementation based on https://github.com/go-gl/mathgl/blob/master/mgl32/quat.go
type Quat struct {
	V Vec3
	W float32
}

// Create identity quaternion.
func QuatIdent() Quat {
	return Quat{
		V: Vec3{},
		W: 1.0,
	}
}

// Create a quaternion from euler angles (in degrees). Rotations are applied
// in X, Y, Z order which matches the gl-matrix fromEuler convention used by
// the scene authoring tools.
func QuatFromEuler(x, y, z float32) Quat {
	halfToRad := 0.5 * math.Pi / 180.0
	sx, cx := math.Sincos(float64(x) * halfToRad)
	sy, cy := math.Sincos(float64(y) * halfToRad)
	sz, cz := math.Sincos(float64(z) * halfToRad)

	return Quat{
		V: Vec3{
			float32(sx*cy*cz - cx*sy*sz),
			float32(cx*sy*cz + sx*cy*sz),
			float32(cx*cy*sz - sx*sy*cz),
		},
		W: float32(cx*cy*cz + sx*sy*sz),
	}
}

// Rotates a vector by the rotation this quaternion represents.
func (q1 Quat) Rotate(v Vec3) Vec3 {
	cross := q1.V.Cross(v)
	// v + 2q_w * (q_v x v) + 2q_v x (q_v x v)
	return v.Add(cross.Mul(2 * q1.W)).Add(q1.V.Mul(2).Cross(cross))
}

// Returns the Length of the quaternion, also known as its Norm.
func (q1 Quat) Len() float32 {
	return float32(math.Sqrt(float64(q1.W*q1.W + q1.V[0]*q1.V[0] + q1.V[1]*q1.V[1] + q1.V[2]*q1.V[2])))
}

// Normalizes the quaternion, returning its versor (unit quaternion).
func (q1 Quat) Normalize() Quat {
	length := q1.Len()

	absDelta := 1 - length
	if absDelta < 0 {
		absDelta = -absDelta
	}

	if absDelta < floatCmpEpsilon {
		return q1
	}
	if length == 0 {
		return QuatIdent()
	}

	return Quat{q1.V.Mul(1 / length), q1.W * 1 / length}
}

// Returns the homogeneous 3D rotation matrix corresponding to the quaternion.
func (q1 Quat) Mat4() Mat4 {
	w, x, y, z := q1.W, q1.V[0], q1.V[1], q1.V[2]
	return Mat4{
		1 - 2*y*y - 2*z*z, 2*x*y + 2*w*z, 2*x*z - 2*w*y, 0,
		2*x*y - 2*w*z, 1 - 2*x*x - 2*z*z, 2*y*z + 2*w*x, 0,
		2*x*z + 2*w*y, 2*y*z - 2*w*x, 1 - 2*x*x - 2*y*y, 0,
		0, 0, 0, 1,
	}
}

// Build a model matrix that applies scale, then rotation and finally
// translation: M = T * R * S.
func FromRotationTranslationScale(q Quat, t, s Vec3) Mat4 {
	return Translate4(t).Mul4(q.Normalize().Mat4()).Mul4(Scale4(s))
}
