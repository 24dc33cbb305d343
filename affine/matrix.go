package affine

import (
	"math"

	"github.com/akmonengine/prism/algebra"
	"github.com/go-gl/mathgl/mgl64"
)

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// mgl64 matrices are column-major: element (row, col) lives at col*4+row.

func tsMatrix(t, s mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Mat4{
		s[0], 0, 0, 0,
		0, s[1], 0, 0,
		0, 0, s[2], 0,
		t[0], t[1], t[2], 1,
	}
}

func trsMatrix(t, s mgl64.Vec3, q mgl64.Quat) mgl64.Mat4 {
	r := algebra.RotationMatrix(q)

	var m mgl64.Mat4
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[col*4+row] = r[col*3+row] * s[col]
		}
	}
	m[12], m[13], m[14], m[15] = t[0], t[1], t[2], 1

	return m
}

func srtMatrix(t, s mgl64.Vec3, q mgl64.Quat) mgl64.Mat4 {
	r := algebra.RotationMatrix(q)
	rt := r.Mul3x1(t)

	var m mgl64.Mat4
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[col*4+row] = s[row] * r[col*3+row]
		}
	}
	m[12], m[13], m[14], m[15] = s[0]*rt[0], s[1]*rt[1], s[2]*rt[2], 1

	return m
}

// isAffine reports whether the bottom row is (0, 0, 0, 1).
func isAffine(m mgl64.Mat4) bool {
	return m[3] == 0 && m[7] == 0 && m[11] == 0 && m[15] == 1
}

// invertMatrix inverts a matrix of non-zero determinant det, taking the 3x3
// path for affine maps. For an affine map det is also the linear block's.
func invertMatrix(m mgl64.Mat4, det float64) mgl64.Mat4 {
	if isAffine(m) {
		return invertAffine(m, det)
	}

	return invertAdjugate(m, det)
}

// invertAffine inverts the linear 3x3 block and solves for the translation:
// [A t]⁻¹ = [A⁻¹ -A⁻¹t]. Row i of A⁻¹ is the cross product of the other two
// columns of A over det.
func invertAffine(m mgl64.Mat4, det float64) mgl64.Mat4 {
	a := mgl64.Vec3{m[0], m[1], m[2]}
	b := mgl64.Vec3{m[4], m[5], m[6]}
	c := mgl64.Vec3{m[8], m[9], m[10]}
	rows := [3]mgl64.Vec3{
		b.Cross(c).Mul(1 / det),
		c.Cross(a).Mul(1 / det),
		a.Cross(b).Mul(1 / det),
	}

	var inv mgl64.Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			inv[col*3+row] = rows[row][col]
		}
	}
	t := inv.Mul3x1(mgl64.Vec3{m[12], m[13], m[14]}).Mul(-1)

	return mgl64.Mat4{
		inv[0], inv[1], inv[2], 0,
		inv[3], inv[4], inv[5], 0,
		inv[6], inv[7], inv[8], 0,
		t[0], t[1], t[2], 1,
	}
}

// invertAdjugate is the full 4x4 adjugate / determinant inverse.
func invertAdjugate(m mgl64.Mat4, det float64) mgl64.Mat4 {
	var inv mgl64.Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			// inv(row, col) = cofactor(col, row) / det
			cofactor := minor(m, col, row)
			if (row+col)%2 == 1 {
				cofactor = -cofactor
			}
			inv[col*4+row] = cofactor / det
		}
	}

	return inv
}

// minor is the determinant of m without row skipRow and column skipCol.
func minor(m mgl64.Mat4, skipRow, skipCol int) float64 {
	var sub mgl64.Mat3
	c := 0
	for col := 0; col < 4; col++ {
		if col == skipCol {
			continue
		}
		r := 0
		for row := 0; row < 4; row++ {
			if row == skipRow {
				continue
			}
			sub[c*3+r] = m[col*4+row]
			r++
		}
		c++
	}

	return sub.Det()
}

func isFiniteMatrix(m mgl64.Mat4) bool {
	for _, v := range m {
		if !isFinite(v) {
			return false
		}
	}

	return true
}
