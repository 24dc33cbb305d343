package pick

import (
	"math"

	"github.com/akmonengine/prism/actor"
	"github.com/akmonengine/prism/affine"
	"github.com/akmonengine/prism/algebra"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ErrInvalidGeometry is returned for vertex lists that do not form triangles
var ErrInvalidGeometry = errors.New("invalid click geometry")

const (
	// barycentricEpsilon absorbs rounding on shared triangle edges, so that a
	// pixel on the diagonal of a quad is inside at least one of its halves
	barycentricEpsilon = 1e-9
	// degenerateArea is the smallest |det| in pixel units² of a triangle that
	// is still tested; below it the triangle is edge-on to the view
	degenerateArea = 1e-9
)

// Triangle is three vertices in the volume's local space.
type Triangle [3]mgl64.Vec3

// ClickVolume is a set of triangles attached under a visual node. Once
// projected through a camera it answers whether a pixel falls inside it.
type ClickVolume struct {
	*actor.NodeBase

	triangles []Triangle
	projected []Triangle
	bounds    actor.AABB
}

// New builds a volume from a flat vertex list, three vertices per triangle.
func New(name string, vertices []mgl64.Vec3) (*ClickVolume, error) {
	if len(vertices)%3 != 0 {
		return nil, errors.Wrapf(ErrInvalidGeometry, "%d vertices is not a multiple of 3", len(vertices))
	}

	triangles := make([]Triangle, len(vertices)/3)
	for i, v := range vertices {
		if err := algebra.CheckVec3(v); err != nil {
			return nil, errors.Wrapf(ErrInvalidGeometry, "vertex %d: %v", i, err)
		}
		triangles[i/3][i%3] = v
	}

	return newVolume(name, triangles), nil
}

func newVolume(name string, triangles []Triangle) *ClickVolume {
	cv := &ClickVolume{
		triangles: triangles,
		bounds:    actor.EmptyAABB(),
	}
	cv.NodeBase = actor.NewNodeBase(name, cv)

	return cv
}

// FromQuad builds a width x height rectangle centered on center, on the
// z = center.z plane.
func FromQuad(name string, width, height float64, center mgl64.Vec3) (*ClickVolume, error) {
	hw, hh := width/2, height/2
	x, y, z := center.X(), center.Y(), center.Z()

	return New(name, []mgl64.Vec3{
		{x - hw, y - hh, z}, {x + hw, y - hh, z}, {x + hw, y + hh, z},
		{x - hw, y - hh, z}, {x + hw, y + hh, z}, {x - hw, y + hh, z},
	})
}

// FromBox builds the twelve triangles of a box centered on the local origin.
func FromBox(name string, halfExtents mgl64.Vec3) (*ClickVolume, error) {
	hx, hy, hz := halfExtents.X(), halfExtents.Y(), halfExtents.Z()

	// Each face counter-clockwise seen from outside
	faces := [6][4]mgl64.Vec3{
		// +X face
		{{hx, -hy, -hz}, {hx, -hy, hz}, {hx, hy, hz}, {hx, hy, -hz}},
		// -X face
		{{-hx, -hy, hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {-hx, hy, hz}},
		// +Y face
		{{-hx, hy, -hz}, {-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}},
		// -Y face
		{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, -hy, -hz}, {-hx, -hy, -hz}},
		// +Z face
		{{-hx, -hy, hz}, {-hx, hy, hz}, {hx, hy, hz}, {hx, -hy, hz}},
		// -Z face
		{{hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz}, {-hx, -hy, -hz}},
	}

	vertices := make([]mgl64.Vec3, 0, 36)
	for _, f := range faces {
		vertices = append(vertices, f[0], f[1], f[2], f[0], f[2], f[3])
	}

	return New(name, vertices)
}

// Triangles returns a copy of the local-space triangles.
func (cv *ClickVolume) Triangles() []Triangle {
	triangles := make([]Triangle, len(cv.triangles))
	copy(triangles, cv.triangles)

	return triangles
}

// Projected returns a copy of the clip-space triangles of the last projection,
// nil if the volume was never projected.
func (cv *ClickVolume) Projected() []Triangle {
	if cv.projected == nil {
		return nil
	}
	projected := make([]Triangle, len(cv.projected))
	copy(projected, cv.projected)

	return projected
}

// Bounds is the box of the last projection in clip space. It is empty before
// the first projection.
func (cv *ClickVolume) Bounds() actor.AABB {
	return cv.bounds
}

// PixelBounds is Bounds converted to a width x height viewport.
func (cv *ClickVolume) PixelBounds(width, height float64) actor.AABB {
	if cv.bounds.IsEmpty() {
		return cv.bounds
	}

	return actor.AABBFromPoints(
		toPixel(cv.bounds.Min, width, height),
		toPixel(cv.bounds.Max, width, height),
	)
}

// FindChild returns the first click volume attached directly under owner.
func FindChild(owner actor.Node) (*ClickVolume, bool) {
	return actor.FindChildOfType[*ClickVolume](owner)
}

// Owner is the node the volume is attached under, nil when detached.
func (cv *ClickVolume) Owner() actor.Node {
	return cv.Parent()
}

// Project caches the clip-space triangles for the camera transform clip,
// through the volume's cascade.
func (cv *ClickVolume) Project(clip *affine.Transform) error {
	if clip == nil {
		return errors.Wrap(affine.ErrInvalidArgument, "nil clip transform")
	}
	cv.ProjectWith(clip.Compose(cv.CascadeTransform()))

	return nil
}

// ProjectWith caches the triangles projected through an already composed
// local -> clip transform. It only touches the volume's own cache.
func (cv *ClickVolume) ProjectWith(mvp *affine.Transform) {
	projected := make([]Triangle, len(cv.triangles))
	bounds := actor.EmptyAABB()
	for i, tri := range cv.triangles {
		for k, v := range tri {
			p := algebra.Project(mvp.Apply(v))
			projected[i][k] = p
			bounds = bounds.Extend(p)
		}
	}

	cv.projected = projected
	cv.bounds = bounds
}

// HitTest reports whether the pixel (x, y) of a width x height viewport falls
// inside one of the projected triangles with a depth in [0, 1].
// A volume that was never projected is never hit.
func (cv *ClickVolume) HitTest(x, y, width, height float64) bool {
	for _, tri := range cv.projected {
		if hitTriangle(tri, x, y, width, height) {
			return true
		}
	}

	return false
}

func toPixel(clip mgl64.Vec3, width, height float64) mgl64.Vec3 {
	return mgl64.Vec3{
		(clip.X() + 1) * width / 2,
		-(clip.Y() - 1) * height / 2,
		clip.Z(),
	}
}

func hitTriangle(tri Triangle, x, y, width, height float64) bool {
	a := toPixel(tri[0], width, height)
	e1 := toPixel(tri[1], width, height).Sub(a)
	e2 := toPixel(tri[2], width, height).Sub(a)

	// The z component of the plane normal e1 × e2 is also the determinant of
	// the 2×2 system below
	det := e1.X()*e2.Y() - e1.Y()*e2.X()
	if math.Abs(det) < degenerateArea {
		return false
	}

	dx, dy := x-a.X(), y-a.Y()

	normal := e1.Cross(e2)
	z := a.Z() - (normal.X()*dx+normal.Y()*dy)/normal.Z()
	if z < -barycentricEpsilon || z > 1+barycentricEpsilon {
		return false
	}

	s := (e2.Y()*dx - e2.X()*dy) / det
	t := (-e1.Y()*dx + e1.X()*dy) / det

	return s >= -barycentricEpsilon && t >= -barycentricEpsilon && s+t <= 1+barycentricEpsilon
}

// Clone shares the triangle list, which is never mutated, and starts with an
// empty projection cache.
func (cv *ClickVolume) Clone() actor.Node {
	clone := newVolume(cv.Name(), cv.triangles)
	cv.NodeBase.CloneInto(clone.NodeBase)

	return clone
}
