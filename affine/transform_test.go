package affine

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/akmonengine/prism/algebra"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const epsilon = 1e-9

func vec3AlmostEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func vec4AlmostEqual(a, b mgl64.Vec4, tolerance float64) bool {
	return vec3AlmostEqual(a.Vec3(), b.Vec3(), tolerance) && math.Abs(a.W()-b.W()) < tolerance
}

func matAlmostEqual(a, b mgl64.Mat4, tolerance float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

func quatAlmostEqual(a, b mgl64.Quat, tolerance float64) bool {
	return math.Abs(a.W-b.W) < tolerance && vec3AlmostEqual(a.V, b.V, tolerance)
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

var samplePoints = []mgl64.Vec3{
	{0, 0, 0},
	{1, 2, 3},
	{-4.5, 0.25, 10},
	{100, -300, 7},
}

// sampleTransforms covers every kind with non-trivial values.
func sampleTransforms() map[string]*Transform {
	rotation := algebra.FromEulerAngles(0.4, -0.9, 1.3)

	return map[string]*Transform{
		"TS":      NewTS(mgl64.Vec3{3, -2, 5}, mgl64.Vec3{2, 0.5, -4}),
		"TRS":     NewTRS(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{2, 3, 0.5}, rotation),
		"SRT":     NewSRT(mgl64.Vec3{-7, 0, 2}, mgl64.Vec3{0.25, 4, 1.5}, rotation),
		"General": FromMatrix(mgl64.Translate3D(4, 5, 6).Mul4(mgl64.HomogRotate3DY(0.7)).Mul4(mgl64.Scale3D(1, 2, 3))),
	}
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		KindTS:      "TS",
		KindTRS:     "TRS",
		KindSRT:     "SRT",
		KindGeneral: "General",
		Kind(42):    "Kind(42)",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestIdentity(t *testing.T) {
	id := Identity()
	if id.Kind() != KindTS {
		t.Errorf("Identity().Kind() = %v, want TS", id.Kind())
	}
	if id.Matrix() != mgl64.Ident4() {
		t.Errorf("Identity().Matrix() = %v, want Ident4", id.Matrix())
	}
}

func TestNew(t *testing.T) {
	t.Run("wrong arity", func(t *testing.T) {
		_, err := New(make([]float64, 15))
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("New(15 values) error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("non finite", func(t *testing.T) {
		values := mgl64.Ident4()
		values[7] = math.NaN()
		_, err := New(values[:])
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("New(NaN) error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("column-major", func(t *testing.T) {
		tr, err := New([]float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			5, 6, 7, 1,
		})
		if err != nil {
			t.Fatalf("New() unexpected error: %v", err)
		}
		if !tr.IsGeneral() {
			t.Errorf("New().Kind() = %v, want General", tr.Kind())
		}
		got := tr.Apply(mgl64.Vec3{1, 1, 1})
		if !vec4AlmostEqual(got, mgl64.Vec4{6, 7, 8, 1}, epsilon) {
			t.Errorf("Apply() = %v, want [6 7 8 1]", got)
		}
	})
}

// =============================================================================
// Accessor Tests
// =============================================================================

func TestAccessors(t *testing.T) {
	ts := NewTS(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{4, 5, 6})

	translation, err := ts.Translation()
	if err != nil || translation != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("Translation() = %v, %v", translation, err)
	}
	scale, err := ts.Scale()
	if err != nil || scale != (mgl64.Vec3{4, 5, 6}) {
		t.Errorf("Scale() = %v, %v", scale, err)
	}
	rotation, err := ts.Rotation()
	if err != nil || rotation != mgl64.QuatIdent() {
		t.Errorf("TS Rotation() = %v, %v, want identity", rotation, err)
	}
}

func TestAccessors_General(t *testing.T) {
	general := FromMatrix(mgl64.Ident4())

	if _, err := general.Translation(); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Translation() error = %v, want ErrUnsupportedOperation", err)
	}
	if _, err := general.Scale(); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Scale() error = %v, want ErrUnsupportedOperation", err)
	}
	if _, err := general.Rotation(); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Rotation() error = %v, want ErrUnsupportedOperation", err)
	}
	if err := general.SetTranslation(mgl64.Vec3{}); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("SetTranslation() error = %v, want ErrUnsupportedOperation", err)
	}
	if err := general.SetScale(mgl64.Vec3{1, 1, 1}); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("SetScale() error = %v, want ErrUnsupportedOperation", err)
	}
	if err := general.SetRotation(mgl64.QuatIdent()); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("SetRotation() error = %v, want ErrUnsupportedOperation", err)
	}
}

func TestSetters_RejectNonFinite(t *testing.T) {
	tr := NewTS(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1})

	if err := tr.SetTranslation(mgl64.Vec3{math.NaN(), 0, 0}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetTranslation(NaN) error = %v, want ErrInvalidArgument", err)
	}
	if err := tr.SetScale(mgl64.Vec3{0, math.Inf(1), 0}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetScale(Inf) error = %v, want ErrInvalidArgument", err)
	}
	if err := tr.SetRotation(mgl64.Quat{W: math.NaN()}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetRotation(NaN) error = %v, want ErrInvalidArgument", err)
	}
	if tr.Kind() != KindTS {
		t.Errorf("failed SetRotation changed kind to %v", tr.Kind())
	}
	if translation, _ := tr.Translation(); translation != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("failed SetTranslation changed translation to %v", translation)
	}
}

func TestSetRotation_PromotesTS(t *testing.T) {
	tr := NewTS(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 2, 2})
	q := algebra.FromAxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/2)

	if err := tr.SetRotation(q); err != nil {
		t.Fatalf("SetRotation() unexpected error: %v", err)
	}
	if tr.Kind() != KindTRS {
		t.Errorf("Kind() = %v, want TRS", tr.Kind())
	}

	// scale (1,0,0) -> (2,0,0), rotate -> (0,2,0), translate -> (1,2,0)
	got := tr.Apply(mgl64.Vec3{1, 0, 0})
	if !vec4AlmostEqual(got, mgl64.Vec4{1, 2, 0, 1}, epsilon) {
		t.Errorf("Apply() = %v, want [1 2 0 1]", got)
	}
}

// =============================================================================
// Cache Invalidation Tests
// =============================================================================

func TestSetters_InvalidateCaches(t *testing.T) {
	tr := NewTRS(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 1, 1}, mgl64.QuatIdent())

	// warm every cache
	_ = tr.Matrix()
	if det := tr.Determinant(); det != 1 {
		t.Fatalf("Determinant() = %v, want 1", det)
	}
	if _, err := tr.Inverse(); err != nil {
		t.Fatalf("Inverse() unexpected error: %v", err)
	}

	if err := tr.SetTranslation(mgl64.Vec3{10, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if got := tr.Apply(mgl64.Vec3{}); !vec4AlmostEqual(got, mgl64.Vec4{10, 0, 0, 1}, epsilon) {
		t.Errorf("after SetTranslation Apply(origin) = %v, want [10 0 0 1]", got)
	}
	inv, _ := tr.Inverse()
	if got := inv.Apply(mgl64.Vec3{10, 0, 0}); !vec4AlmostEqual(got, mgl64.Vec4{0, 0, 0, 1}, epsilon) {
		t.Errorf("after SetTranslation Inverse().Apply = %v, want origin", got)
	}

	if err := tr.SetScale(mgl64.Vec3{2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	if det := tr.Determinant(); det != 24 {
		t.Errorf("after SetScale Determinant() = %v, want 24", det)
	}
	if err := tr.SetScale(mgl64.Vec3{0, 1, 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Inverse(); !errors.Is(err, ErrSingularTransform) {
		t.Errorf("after SetScale(0) Inverse() error = %v, want ErrSingularTransform", err)
	}

	if err := tr.SetScale(mgl64.Vec3{1, 1, 1}); err != nil {
		t.Fatal(err)
	}
	if err := tr.SetRotation(algebra.FromAxisAngle(mgl64.Vec3{0, 1, 0}, math.Pi)); err != nil {
		t.Fatal(err)
	}
	if got := tr.ApplyVector(mgl64.Vec3{1, 0, 0}); !vec3AlmostEqual(got, mgl64.Vec3{-1, 0, 0}, epsilon) {
		t.Errorf("after SetRotation ApplyVector(X) = %v, want [-1 0 0]", got)
	}
}

// =============================================================================
// Compose Tests
// =============================================================================

func TestCompose_TSClosedForm(t *testing.T) {
	tests := []struct {
		name string
		a, b *Transform
	}{
		{"identity", Identity(), Identity()},
		{"translate only", NewTS(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 1, 1}), NewTS(mgl64.Vec3{-4, 5, 0}, mgl64.Vec3{1, 1, 1})},
		{"scale and translate", NewTS(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{2, -1, 0.5}), NewTS(mgl64.Vec3{4, 4, 4}, mgl64.Vec3{3, 3, -2})},
		{"zero scale", NewTS(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 1, 1}), NewTS(mgl64.Vec3{7, 8, 9}, mgl64.Vec3{2, 2, 2})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.a.Compose(tt.b)
			if c.Kind() != KindTS {
				t.Fatalf("Compose().Kind() = %v, want TS", c.Kind())
			}

			at, _ := tt.a.Translation()
			as, _ := tt.a.Scale()
			bt, _ := tt.b.Translation()
			bs, _ := tt.b.Scale()
			ct, _ := c.Translation()
			cs, _ := c.Scale()

			if want := at.Add(algebra.MulElem(as, bt)); !vec3AlmostEqual(ct, want, epsilon) {
				t.Errorf("Compose().Translation() = %v, want %v", ct, want)
			}
			if want := algebra.MulElem(as, bs); !vec3AlmostEqual(cs, want, epsilon) {
				t.Errorf("Compose().Scale() = %v, want %v", cs, want)
			}
			if !matAlmostEqual(c.Matrix(), tt.a.Matrix().Mul4(tt.b.Matrix()), epsilon) {
				t.Errorf("closed form disagrees with dense product")
			}
		})
	}
}

func TestCompose_DenseFallback(t *testing.T) {
	transforms := sampleTransforms()

	for nameA, a := range transforms {
		for nameB, b := range transforms {
			if nameA == "TS" && nameB == "TS" {
				continue
			}
			c := a.Compose(b)
			if c.Kind() != KindGeneral {
				t.Errorf("%s∘%s Kind() = %v, want General", nameA, nameB, c.Kind())
			}
			for _, p := range samplePoints {
				want := a.Apply4(b.Apply(p))
				if got := c.Apply(p); !vec4AlmostEqual(got, want, 1e-6) {
					t.Errorf("%s∘%s Apply(%v) = %v, want %v", nameA, nameB, p, got, want)
				}
			}
		}
	}
}

func TestCompose_OrderMatters(t *testing.T) {
	translate := NewTS(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{1, 1, 1})
	rotate := NewTRS(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, algebra.FromAxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/2))

	// rotate first, then translate
	got := translate.Compose(rotate).Apply(mgl64.Vec3{1, 0, 0})
	if !vec4AlmostEqual(got, mgl64.Vec4{10, 1, 0, 1}, epsilon) {
		t.Errorf("translate∘rotate Apply = %v, want [10 1 0 1]", got)
	}

	// translate first, then rotate
	got = rotate.Compose(translate).Apply(mgl64.Vec3{1, 0, 0})
	if !vec4AlmostEqual(got, mgl64.Vec4{0, 11, 0, 1}, epsilon) {
		t.Errorf("rotate∘translate Apply = %v, want [0 11 0 1]", got)
	}
}

// =============================================================================
// Apply Tests
// =============================================================================

func TestApply_MatchesMatrix(t *testing.T) {
	for name, tr := range sampleTransforms() {
		m := tr.Matrix()
		for _, p := range samplePoints {
			want := m.Mul4x1(p.Vec4(1))
			if got := tr.Apply(p); !vec4AlmostEqual(got, want, epsilon) {
				t.Errorf("%s Apply(%v) = %v, want %v", name, p, got, want)
			}
		}
	}
}

func TestApply_SRTOrder(t *testing.T) {
	// translate (1,0,0) -> (2,0,0), rotate 90° around Z -> (0,2,0), scale y by 3 -> (0,6,0)
	tr := NewSRT(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 3, 1}, algebra.FromAxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/2))
	got := tr.Apply(mgl64.Vec3{1, 0, 0})
	if !vec4AlmostEqual(got, mgl64.Vec4{0, 6, 0, 1}, epsilon) {
		t.Errorf("SRT Apply = %v, want [0 6 0 1]", got)
	}
}

func TestApply4_Homogeneous(t *testing.T) {
	tr := NewTS(mgl64.Vec3{5, 5, 5}, mgl64.Vec3{2, 2, 2})
	got := tr.Apply4(mgl64.Vec4{1, 1, 1, 0})
	if !vec4AlmostEqual(got, mgl64.Vec4{2, 2, 2, 0}, epsilon) {
		t.Errorf("Apply4(direction) = %v, want [2 2 2 0]", got)
	}
}

// =============================================================================
// Determinant Tests
// =============================================================================

func TestDeterminant(t *testing.T) {
	rotation := algebra.FromAxisAngle(mgl64.Vec3{1, 2, 3}, 0.8)

	tests := []struct {
		name string
		tr   *Transform
		want float64
	}{
		{"identity", Identity(), 1},
		{"TS", NewTS(mgl64.Vec3{9, 9, 9}, mgl64.Vec3{2, 3, 4}), 24},
		{"TRS ignores rotation", NewTRS(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 3, 4}, rotation), 24},
		{"SRT", NewSRT(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{-1, 3, 2}, rotation), -6},
		{"General", FromMatrix(NewTRS(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 3, 4}, rotation).Matrix()), 24},
		{"zero scale", NewTS(mgl64.Vec3{}, mgl64.Vec3{1, 0, 1}), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Determinant(); !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("Determinant() = %v, want %v", got, tt.want)
			}
			if tt.tr.Kind() != KindGeneral {
				dense := tt.tr.Matrix().Det()
				if !almostEqual(dense, tt.want, 1e-9) {
					t.Errorf("dense Det() = %v, want %v", dense, tt.want)
				}
			}
		})
	}
}

// =============================================================================
// Inverse Tests
// =============================================================================

func TestInverse_RoundTrip(t *testing.T) {
	perspective := FromMatrix(mgl64.Perspective(mgl64.DegToRad(60), 4.0/3.0, 0.1, 100))
	transforms := sampleTransforms()
	transforms["Perspective"] = perspective

	for name, tr := range transforms {
		t.Run(name, func(t *testing.T) {
			inv, err := tr.Inverse()
			if err != nil {
				t.Fatalf("Inverse() unexpected error: %v", err)
			}

			for _, p := range samplePoints {
				got := tr.Compose(inv).Apply(p)
				if !vec4AlmostEqual(got, p.Vec4(1), 1e-6) {
					t.Errorf("T∘T⁻¹ Apply(%v) = %v", p, got)
				}
				got = inv.Compose(tr).Apply(p)
				if !vec4AlmostEqual(got, p.Vec4(1), 1e-6) {
					t.Errorf("T⁻¹∘T Apply(%v) = %v", p, got)
				}
			}
		})
	}
}

func TestInverse_Kinds(t *testing.T) {
	want := map[string]Kind{
		"TS":      KindTS,
		"TRS":     KindSRT,
		"SRT":     KindTRS,
		"General": KindGeneral,
	}

	for name, tr := range sampleTransforms() {
		inv, err := tr.Inverse()
		if err != nil {
			t.Fatalf("%s Inverse() unexpected error: %v", name, err)
		}
		if inv.Kind() != want[name] {
			t.Errorf("%s Inverse().Kind() = %v, want %v", name, inv.Kind(), want[name])
		}
	}
}

func TestInverse_Involution(t *testing.T) {
	for name, tr := range sampleTransforms() {
		t.Run(name, func(t *testing.T) {
			inv, err := tr.Inverse()
			if err != nil {
				t.Fatal(err)
			}
			back, err := inv.Inverse()
			if err != nil {
				t.Fatal(err)
			}

			if back.Kind() != tr.Kind() {
				t.Errorf("Inverse().Inverse().Kind() = %v, want %v", back.Kind(), tr.Kind())
			}
			if !back.ApproxEqual(tr, 1e-9) {
				t.Errorf("Inverse().Inverse() = %v, want %v", back, tr)
			}
			if tr.Kind() == KindGeneral {
				return
			}

			wantT, _ := tr.Translation()
			wantS, _ := tr.Scale()
			wantR, _ := tr.Rotation()
			gotT, _ := back.Translation()
			gotS, _ := back.Scale()
			gotR, _ := back.Rotation()
			if !vec3AlmostEqual(gotT, wantT, epsilon) || !vec3AlmostEqual(gotS, wantS, epsilon) ||
				!quatAlmostEqual(gotR, wantR, epsilon) {
				t.Errorf("Inverse().Inverse() components = %v %v %v, want %v %v %v",
					gotT, gotS, gotR, wantT, wantS, wantR)
			}
		})
	}
}

func TestInverse_TSValues(t *testing.T) {
	tr := NewTS(mgl64.Vec3{4, -6, 1}, mgl64.Vec3{2, 3, -0.5})
	inv, err := tr.Inverse()
	if err != nil {
		t.Fatal(err)
	}

	translation, _ := inv.Translation()
	scale, _ := inv.Scale()
	if !vec3AlmostEqual(translation, mgl64.Vec3{-2, 2, 2}, epsilon) {
		t.Errorf("Inverse().Translation() = %v, want [-2 2 2]", translation)
	}
	if !vec3AlmostEqual(scale, mgl64.Vec3{0.5, 1.0 / 3.0, -2}, epsilon) {
		t.Errorf("Inverse().Scale() = %v, want [0.5 0.333 -2]", scale)
	}
}

func TestInverse_ZeroScale(t *testing.T) {
	tr := NewTS(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 0, 1})

	if _, err := tr.Inverse(); !errors.Is(err, ErrSingularTransform) {
		t.Errorf("Inverse() error = %v, want ErrSingularTransform", err)
	}

	got := tr.Apply(mgl64.Vec3{5, 5, 5})
	if !vec4AlmostEqual(got, mgl64.Vec4{6, 2, 8, 1}, epsilon) {
		t.Errorf("Apply() = %v, want [6 2 8 1]", got)
	}
}

func TestInverse_SingularGeneral(t *testing.T) {
	var m mgl64.Mat4
	m[0], m[5], m[15] = 1, 1, 1
	if _, err := FromMatrix(m).Inverse(); !errors.Is(err, ErrSingularTransform) {
		t.Errorf("Inverse() error = %v, want ErrSingularTransform", err)
	}
}

func TestInverse_TinyDeterminantGeneral(t *testing.T) {
	// det = 1e-21, well under the float tolerance mgl64 treats as singular
	tr := FromMatrix(NewTS(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1e-7, 1e-7, 1e-7}).Matrix())

	inv, err := tr.Inverse()
	if err != nil {
		t.Fatalf("Inverse() unexpected error: %v", err)
	}

	p := mgl64.Vec3{5, 6, 7}
	got := tr.Compose(inv).Apply(p)
	if !vec4AlmostEqual(got, p.Vec4(1), 1e-6) {
		t.Errorf("T∘T⁻¹ Apply(%v) = %v, want %v", p, got, p.Vec4(1))
	}

	back := inv.Apply(tr.Apply(p).Vec3())
	if !vec4AlmostEqual(back, p.Vec4(1), 1e-6) {
		t.Errorf("T⁻¹(T(%v)) = %v", p, back)
	}
}

func TestInverse_TinyDeterminantNonAffine(t *testing.T) {
	m := mgl64.Diag4(mgl64.Vec4{1e-7, 1e-7, 1e-7, 1})
	m[3] = 1e-9 // bottom row (1e-9, 0, 0, 1)

	inv, err := FromMatrix(m).Inverse()
	if err != nil {
		t.Fatalf("Inverse() unexpected error: %v", err)
	}
	if got := inv.Matrix().Mul4(m); !matAlmostEqual(got, mgl64.Ident4(), 1e-6) {
		t.Errorf("M⁻¹·M = %v, want identity", got)
	}
}

func TestInverse_ReturnsIndependentCopy(t *testing.T) {
	tr := NewTS(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 2, 2})
	inv, err := tr.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	if err := inv.SetTranslation(mgl64.Vec3{100, 100, 100}); err != nil {
		t.Fatal(err)
	}

	again, _ := tr.Inverse()
	translation, _ := again.Translation()
	if !vec3AlmostEqual(translation, mgl64.Vec3{-0.5, -0.5, -0.5}, epsilon) {
		t.Errorf("memoized inverse was mutated through a returned copy: %v", translation)
	}
}

func TestInverse_AffineFastPathAgreesWithAdjugate(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	checked := 0
	for checked < 200 {
		var m mgl64.Mat4
		for col := 0; col < 4; col++ {
			for row := 0; row < 3; row++ {
				m[col*4+row] = rng.Float64()*20 - 10
			}
		}
		m[15] = 1
		if math.Abs(m.Det()) < 1e-3 {
			continue
		}
		checked++

		fast := invertAffine(m, m.Det())
		full := invertAdjugate(m, m.Det())
		if !matAlmostEqual(fast, full, 1e-6) {
			t.Fatalf("affine inverse %v disagrees with adjugate inverse %v for %v", fast, full, m)
		}
		if invertMatrix(m, m.Det()) != fast {
			t.Fatalf("invertMatrix did not take the affine path for %v", m)
		}
	}
}

func TestInverse_NonAffineUsesAdjugate(t *testing.T) {
	m := mgl64.Frustum(-1, 1, -1, 1, 1, 10)
	if isAffine(m) {
		t.Fatal("frustum matrix should not be affine")
	}
	got := invertMatrix(m, m.Det()).Mul4(m)
	if !matAlmostEqual(got, mgl64.Ident4(), 1e-9) {
		t.Errorf("M⁻¹·M = %v, want identity", got)
	}
}

// =============================================================================
// Export / Copy Tests
// =============================================================================

func TestValues_GeneralRoundTrip(t *testing.T) {
	for name, tr := range sampleTransforms() {
		general, err := New(tr.Values())
		if err != nil {
			t.Fatalf("%s New(Values()) unexpected error: %v", name, err)
		}
		if !general.IsGeneral() {
			t.Errorf("%s New(Values()).Kind() = %v, want General", name, general.Kind())
		}
		for _, p := range samplePoints {
			if got, want := general.Apply(p), tr.Apply(p); !vec4AlmostEqual(got, want, epsilon) {
				t.Errorf("%s: General Apply(%v) = %v, typed Apply = %v", name, p, got, want)
			}
		}
	}
}

func TestCopy_Independent(t *testing.T) {
	for name, tr := range sampleTransforms() {
		c := tr.Copy()
		if c == tr {
			t.Fatalf("%s Copy() returned the same pointer", name)
		}
		if c.Kind() != tr.Kind() {
			t.Errorf("%s Copy().Kind() = %v, want %v", name, c.Kind(), tr.Kind())
		}
		if !c.ApproxEqual(tr, 0) {
			t.Errorf("%s Copy() = %v, want %v", name, c, tr)
		}
		if tr.Kind() == KindGeneral {
			continue
		}

		before := tr.Matrix()
		if err := c.SetTranslation(mgl64.Vec3{99, 99, 99}); err != nil {
			t.Fatal(err)
		}
		if tr.Matrix() != before {
			t.Errorf("%s mutating the copy changed the original", name)
		}
	}
}
