package actor

import (
	"math"

	"github.com/akmonengine/prism/affine"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ProjectionType represents the kind of camera projection
type ProjectionType int

const (
	// ProjectionOrthographic maps an axis-aligned box to clip space
	ProjectionOrthographic ProjectionType = iota
	// ProjectionPerspective maps a view frustum to clip space
	ProjectionPerspective
)

// depthRemap turns the OpenGL depth range [-1, 1] into [0, 1], the range the
// hit test accepts.
var depthRemap = mgl64.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Camera is a scene node supplying the world -> clip transform.
type Camera struct {
	*NodeBase

	Type       ProjectionType
	projection *affine.Transform
}

// NewOrthographic maps the box [corner, corner+size] to clip space: x to
// [-1, 1], y to [1, -1] so that y grows downward like pixel rows, z to [0, 1].
// The projection stays a TS transform.
func NewOrthographic(name string, corner, size mgl64.Vec3) (*Camera, error) {
	for i := 0; i < 3; i++ {
		if size[i] == 0 || math.IsNaN(size[i]) || math.IsInf(size[i], 0) {
			return nil, errors.Wrapf(affine.ErrInvalidArgument, "orthographic size %v", size)
		}
	}

	scale := mgl64.Vec3{2 / size.X(), -2 / size.Y(), 1 / size.Z()}
	translation := mgl64.Vec3{
		-1 - 2*corner.X()/size.X(),
		1 + 2*corner.Y()/size.Y(),
		-corner.Z() / size.Z(),
	}

	return newCamera(name, ProjectionOrthographic, affine.NewTS(translation, scale)), nil
}

// NewOrthographicViewport spans a width x height pixel viewport with the world
// origin on the top-left pixel, and depth centered on z = 0.
func NewOrthographicViewport(name string, width, height, depth float64) (*Camera, error) {
	return NewOrthographic(name, mgl64.Vec3{0, 0, -depth / 2}, mgl64.Vec3{width, height, depth})
}

// NewPerspective builds a perspective camera looking down -Z.
// fovy is in radians.
func NewPerspective(name string, fovy, aspect, near, far float64) (*Camera, error) {
	if fovy <= 0 || fovy >= math.Pi || aspect <= 0 || near <= 0 || far <= near {
		return nil, errors.Wrapf(affine.ErrInvalidArgument,
			"perspective fovy=%v aspect=%v near=%v far=%v", fovy, aspect, near, far)
	}

	projection := depthRemap.Mul4(mgl64.Perspective(fovy, aspect, near, far))

	return newCamera(name, ProjectionPerspective, affine.FromMatrix(projection)), nil
}

func newCamera(name string, projectionType ProjectionType, projection *affine.Transform) *Camera {
	c := &Camera{
		Type:       projectionType,
		projection: projection,
	}
	c.NodeBase = NewNodeBase(name, c)

	return c
}

// Projection returns a copy of the view -> clip transform.
func (c *Camera) Projection() *affine.Transform {
	return c.projection.Copy()
}

// SetProjection replaces the view -> clip transform, e.g. after a viewport resize.
func (c *Camera) SetProjection(projection *affine.Transform) error {
	if projection == nil {
		return errors.Wrapf(affine.ErrInvalidArgument, "nil projection for camera %q", c.name)
	}
	c.projection = projection.Copy()

	return nil
}

// ClipTransform returns projection ∘ inverse(cascade): world -> clip.
// It fails with affine.ErrSingularTransform if the camera's placement cannot
// be inverted.
func (c *Camera) ClipTransform() (*affine.Transform, error) {
	view, err := c.CascadeTransform().Inverse()
	if err != nil {
		return nil, errors.Wrapf(err, "camera %q", c.name)
	}

	return c.projection.Compose(view), nil
}

func (c *Camera) Clone() Node {
	clone := newCamera(c.name, c.Type, c.projection.Copy())
	c.NodeBase.CloneInto(clone.NodeBase)

	return clone
}
