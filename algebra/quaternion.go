package algebra

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var (
	axisX = mgl64.Vec3{1, 0, 0}
	axisY = mgl64.Vec3{0, 1, 0}
	axisZ = mgl64.Vec3{0, 0, 1}
)

// Quat builds a quaternion from its scalar part w and imaginary part (x, y, z).
func Quat(w, x, y, z float64) (mgl64.Quat, error) {
	q := mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}

	return q, CheckQuat(q)
}

// CheckQuat reports ErrInvalidArgument if any component is NaN or infinite.
func CheckQuat(q mgl64.Quat) error {
	if !isFinite(q.W) {
		return errors.Wrapf(ErrInvalidArgument, "quaternion scalar is %v", q.W)
	}

	return CheckVec3(q.V)
}

// FromAxisAngle returns the rotation of angle radians around axis.
// The axis does not need to be normalized; a zero axis yields the identity.
func FromAxisAngle(axis mgl64.Vec3, angle float64) mgl64.Quat {
	if axis.Len() == 0 {
		return mgl64.QuatIdent()
	}

	return mgl64.QuatRotate(angle, axis.Normalize())
}

// FromEulerAngles composes yaw (around Z), pitch (around Y) and roll (around X).
// Roll is applied first, then pitch, then yaw.
func FromEulerAngles(yaw, pitch, roll float64) mgl64.Quat {
	qx := mgl64.Quat{W: math.Cos(roll / 2), V: axisX.Mul(math.Sin(roll / 2))}
	qy := mgl64.Quat{W: math.Cos(pitch / 2), V: axisY.Mul(math.Sin(pitch / 2))}
	qz := mgl64.Quat{W: math.Cos(yaw / 2), V: axisZ.Mul(math.Sin(yaw / 2))}

	return qz.Mul(qy.Mul(qx))
}

// RotationMatrix returns the 3x3 matrix whose columns are the rotated basis vectors.
func RotationMatrix(q mgl64.Quat) mgl64.Mat3 {
	c0 := q.Rotate(axisX)
	c1 := q.Rotate(axisY)
	c2 := q.Rotate(axisZ)

	return mgl64.Mat3{
		c0[0], c0[1], c0[2],
		c1[0], c1[1], c1[2],
		c2[0], c2[1], c2[2],
	}
}
