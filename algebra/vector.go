// Package algebra holds the finite-checked vector and quaternion helpers the
// rest of the engine builds on. Values are the mgl64 array/struct types, so
// every operation returns a fresh copy and nothing aliases.
package algebra

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ErrInvalidArgument is returned for wrong arity or non-finite components.
var ErrInvalidArgument = errors.New("invalid argument")

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Vec3 builds a vector from exactly three finite values.
func Vec3(values ...float64) (mgl64.Vec3, error) {
	if len(values) != 3 {
		return mgl64.Vec3{}, errors.Wrapf(ErrInvalidArgument, "vec3 needs 3 components, got %d", len(values))
	}
	v := mgl64.Vec3{values[0], values[1], values[2]}

	return v, CheckVec3(v)
}

// Vec4 builds a vector from exactly four finite values.
func Vec4(values ...float64) (mgl64.Vec4, error) {
	if len(values) != 4 {
		return mgl64.Vec4{}, errors.Wrapf(ErrInvalidArgument, "vec4 needs 4 components, got %d", len(values))
	}
	v := mgl64.Vec4{values[0], values[1], values[2], values[3]}
	for i, c := range v {
		if !isFinite(c) {
			return mgl64.Vec4{}, errors.Wrapf(ErrInvalidArgument, "vec4 component %d is %v", i, c)
		}
	}

	return v, nil
}

// CheckVec3 reports ErrInvalidArgument if any component is NaN or infinite.
func CheckVec3(v mgl64.Vec3) error {
	for i, c := range v {
		if !isFinite(c) {
			return errors.Wrapf(ErrInvalidArgument, "vec3 component %d is %v", i, c)
		}
	}

	return nil
}

// MulElem returns the componentwise product a ⊙ b.
func MulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// DivElem returns the componentwise quotient a ⊘ b.
func DivElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] / b[0], a[1] / b[1], a[2] / b[2]}
}

// Reciprocal returns (1/x, 1/y, 1/z).
func Reciprocal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{1 / v[0], 1 / v[1], 1 / v[2]}
}

// Product returns x*y*z.
func Product(v mgl64.Vec3) float64 {
	return v[0] * v[1] * v[2]
}

// Project performs the perspective divide. A zero w leaves x, y, z as they are.
func Project(v mgl64.Vec4) mgl64.Vec3 {
	if v.W() == 0 {
		return v.Vec3()
	}

	return v.Vec3().Mul(1 / v.W())
}
