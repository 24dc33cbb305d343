// Package affine implements a 4x4 homogeneous affine transform that keeps the
// common translate/rotate/scale shapes in component form and only falls back to
// a dense matrix when the algebra requires it.
//
// Convention: column vectors, mgl64 column-major storage. Apply computes M·p and
// a.Compose(b) is the product a·b, that is "b first, then a".
package affine

import (
	"fmt"
	"math"

	"github.com/akmonengine/prism/algebra"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Kind identifies the internal representation of a Transform.
type Kind uint8

const (
	// KindTS is translation and non-uniform scale: M = T·S
	KindTS Kind = iota
	// KindTRS scales, then rotates, then translates: M = T·R·S
	KindTRS
	// KindSRT translates, then rotates, then scales: M = S·R·T (the inverse of a TRS)
	KindSRT
	// KindGeneral is an opaque dense matrix
	KindGeneral
)

func (k Kind) String() string {
	switch k {
	case KindTS:
		return "TS"
	case KindTRS:
		return "TRS"
	case KindSRT:
		return "SRT"
	case KindGeneral:
		return "General"
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

var (
	ErrInvalidArgument      = algebra.ErrInvalidArgument
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrSingularTransform    = errors.New("singular transform")
)

// Transform is an affine map in one of four representations.
// The dense matrix, the determinant and the inverse are derived lazily and
// dropped by every setter.
type Transform struct {
	kind        Kind
	translation mgl64.Vec3
	scale       mgl64.Vec3
	rotation    mgl64.Quat

	matrix      mgl64.Mat4
	hasMatrix   bool
	determinant float64
	hasDet      bool
	inverse     *Transform
}

// Identity returns a TS transform with no translation and unit scale.
func Identity() *Transform {
	return NewTS(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})
}

// NewTS creates a translation + scale transform. A zero scale component is
// accepted here; only Inverse fails on it.
func NewTS(translation, scale mgl64.Vec3) *Transform {
	return &Transform{
		kind:        KindTS,
		translation: translation,
		scale:       scale,
		rotation:    mgl64.QuatIdent(),
	}
}

// NewTRS creates a transform that scales, rotates, then translates.
// The rotation is normalized; a zero quaternion becomes the identity.
func NewTRS(translation, scale mgl64.Vec3, rotation mgl64.Quat) *Transform {
	return &Transform{
		kind:        KindTRS,
		translation: translation,
		scale:       scale,
		rotation:    rotation.Normalize(),
	}
}

// NewSRT creates a transform that translates, rotates, then scales.
func NewSRT(translation, scale mgl64.Vec3, rotation mgl64.Quat) *Transform {
	return &Transform{
		kind:        KindSRT,
		translation: translation,
		scale:       scale,
		rotation:    rotation.Normalize(),
	}
}

// New creates a General transform from 16 finite values in column-major order,
// the layout returned by Values.
func New(values []float64) (*Transform, error) {
	if len(values) != 16 {
		return nil, errors.Wrapf(ErrInvalidArgument, "a transform needs 16 values, got %d", len(values))
	}

	var m mgl64.Mat4
	for i, v := range values {
		if !isFinite(v) {
			return nil, errors.Wrapf(ErrInvalidArgument, "matrix value %d is %v", i, v)
		}
		m[i] = v
	}

	return FromMatrix(m), nil
}

// FromMatrix wraps a dense matrix as a General transform.
func FromMatrix(m mgl64.Mat4) *Transform {
	return &Transform{
		kind:      KindGeneral,
		matrix:    m,
		hasMatrix: true,
	}
}

func (t *Transform) Kind() Kind {
	return t.kind
}

func (t *Transform) IsGeneral() bool {
	return t.kind == KindGeneral
}

func (t *Transform) unsupported(op string) error {
	return errors.Wrapf(ErrUnsupportedOperation, "%s on a %s transform", op, t.kind)
}

// Translation returns the stored translation.
// For SRT it is the offset applied before rotation and scale.
func (t *Transform) Translation() (mgl64.Vec3, error) {
	if t.kind == KindGeneral {
		return mgl64.Vec3{}, t.unsupported("translation")
	}

	return t.translation, nil
}

func (t *Transform) Scale() (mgl64.Vec3, error) {
	if t.kind == KindGeneral {
		return mgl64.Vec3{}, t.unsupported("scale")
	}

	return t.scale, nil
}

// Rotation returns the stored rotation, the identity for TS.
func (t *Transform) Rotation() (mgl64.Quat, error) {
	if t.kind == KindGeneral {
		return mgl64.Quat{}, t.unsupported("rotation")
	}

	return t.rotation, nil
}

func (t *Transform) SetTranslation(v mgl64.Vec3) error {
	if t.kind == KindGeneral {
		return t.unsupported("set translation")
	}
	if err := algebra.CheckVec3(v); err != nil {
		return errors.Wrap(err, "set translation")
	}
	t.translation = v
	t.invalidate()

	return nil
}

func (t *Transform) SetScale(v mgl64.Vec3) error {
	if t.kind == KindGeneral {
		return t.unsupported("set scale")
	}
	if err := algebra.CheckVec3(v); err != nil {
		return errors.Wrap(err, "set scale")
	}
	t.scale = v
	t.invalidate()

	return nil
}

// SetRotation replaces the rotation, stored normalized. A TS transform becomes TRS.
func (t *Transform) SetRotation(q mgl64.Quat) error {
	if t.kind == KindGeneral {
		return t.unsupported("set rotation")
	}
	if err := algebra.CheckQuat(q); err != nil {
		return errors.Wrap(err, "set rotation")
	}
	if t.kind == KindTS {
		t.kind = KindTRS
	}
	t.rotation = q.Normalize()
	t.invalidate()

	return nil
}

func (t *Transform) invalidate() {
	t.hasMatrix = false
	t.hasDet = false
	t.inverse = nil
}

// Matrix returns the dense matrix, deriving it from the components if needed.
func (t *Transform) Matrix() mgl64.Mat4 {
	if t.hasMatrix {
		return t.matrix
	}

	switch t.kind {
	case KindTS:
		t.matrix = tsMatrix(t.translation, t.scale)
	case KindTRS:
		t.matrix = trsMatrix(t.translation, t.scale, t.rotation)
	case KindSRT:
		t.matrix = srtMatrix(t.translation, t.scale, t.rotation)
	}
	t.hasMatrix = true

	return t.matrix
}

// Values exports the dense matrix in column-major order, the layout New reads.
func (t *Transform) Values() []float64 {
	m := t.Matrix()
	values := make([]float64, 16)
	copy(values, m[:])

	return values
}

// Compose returns t ∘ other: other is applied first.
// Two TS transforms compose in closed form and stay TS; any other pair goes
// through the dense product and yields a General transform.
func (t *Transform) Compose(other *Transform) *Transform {
	if t.kind == KindTS && other.kind == KindTS {
		return NewTS(
			t.translation.Add(algebra.MulElem(t.scale, other.translation)),
			algebra.MulElem(t.scale, other.scale),
		)
	}

	return FromMatrix(t.Matrix().Mul4(other.Matrix()))
}

// Apply transforms a point (w = 1). The result is not divided by w.
func (t *Transform) Apply(p mgl64.Vec3) mgl64.Vec4 {
	if t.kind == KindTS {
		return algebra.MulElem(t.scale, p).Add(t.translation).Vec4(1)
	}

	return t.Matrix().Mul4x1(p.Vec4(1))
}

// Apply4 transforms an explicit homogeneous vector.
func (t *Transform) Apply4(v mgl64.Vec4) mgl64.Vec4 {
	return t.Matrix().Mul4x1(v)
}

// ApplyVector transforms a direction (w = 0), ignoring the translation.
func (t *Transform) ApplyVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.Matrix().Mul4x1(v.Vec4(0)).Vec3()
}

// Determinant returns the memoized determinant. Rotation and translation do
// not contribute for the component kinds.
func (t *Transform) Determinant() float64 {
	if t.hasDet {
		return t.determinant
	}

	if t.kind == KindGeneral {
		t.determinant = t.matrix.Det()
	} else {
		t.determinant = algebra.Product(t.scale)
	}
	t.hasDet = true

	return t.determinant
}

// Inverse returns the inverse transform, memoized until the next setter.
// The returned value is a copy the caller may mutate freely.
func (t *Transform) Inverse() (*Transform, error) {
	if t.inverse == nil {
		inverse, err := t.computeInverse()
		if err != nil {
			return nil, err
		}
		t.inverse = inverse
	}

	return t.inverse.Copy(), nil
}

func (t *Transform) computeInverse() (*Transform, error) {
	if t.Determinant() == 0 {
		return nil, errors.Wrapf(ErrSingularTransform, "cannot invert %s transform", t.kind)
	}

	switch t.kind {
	case KindTS:
		return NewTS(
			algebra.DivElem(t.translation, t.scale).Mul(-1),
			algebra.Reciprocal(t.scale),
		), nil
	case KindTRS:
		// (T·R·S)⁻¹ = S⁻¹·R⁻¹·T⁻¹
		return NewSRT(t.translation.Mul(-1), algebra.Reciprocal(t.scale), t.rotation.Conjugate()), nil
	case KindSRT:
		// (S·R·T)⁻¹ = T⁻¹·R⁻¹·S⁻¹
		return NewTRS(t.translation.Mul(-1), algebra.Reciprocal(t.scale), t.rotation.Conjugate()), nil
	}

	inverse := invertMatrix(t.matrix, t.determinant)
	if !isFiniteMatrix(inverse) {
		return nil, errors.Wrapf(ErrSingularTransform, "inverse of %s transform overflows (det %g)", t.kind, t.determinant)
	}

	return FromMatrix(inverse), nil
}

// Copy returns an independent transform of the same kind and values.
func (t *Transform) Copy() *Transform {
	c := *t

	return &c
}

// ApproxEqual compares the dense matrices of two transforms element by element,
// whatever their kind, with an absolute tolerance.
func (t *Transform) ApproxEqual(other *Transform, epsilon float64) bool {
	a, b := t.Matrix(), other.Matrix()
	for i := range a {
		if math.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}

	return true
}

func (t *Transform) String() string {
	if t.kind == KindGeneral {
		return fmt.Sprintf("General%v", t.matrix)
	}

	return fmt.Sprintf("%s{T:%v S:%v R:%v}", t.kind, t.translation, t.scale, t.rotation)
}
