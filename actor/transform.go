package actor

import (
	"github.com/akmonengine/prism/affine"
	"github.com/akmonengine/prism/algebra"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// LocalTransform returns the transform relative to the parent. It is owned by
// the node: changes made through it are seen by the next cascade.
func (nb *NodeBase) LocalTransform() *affine.Transform {
	return nb.transform
}

// SetLocalTransform replaces the local transform with a copy of t.
func (nb *NodeBase) SetLocalTransform(t *affine.Transform) error {
	if t == nil {
		return errors.Wrapf(affine.ErrInvalidArgument, "nil transform for %q", nb.name)
	}
	nb.transform = t.Copy()

	return nil
}

// Position is the local translation.
func (nb *NodeBase) Position() (mgl64.Vec3, error) {
	return nb.transform.Translation()
}

func (nb *NodeBase) SetPosition(position mgl64.Vec3) error {
	return nb.transform.SetTranslation(position)
}

// Move offsets the local translation by delta.
func (nb *NodeBase) Move(delta mgl64.Vec3) error {
	position, err := nb.transform.Translation()
	if err != nil {
		return err
	}

	return nb.transform.SetTranslation(position.Add(delta))
}

func (nb *NodeBase) Scale() (mgl64.Vec3, error) {
	return nb.transform.Scale()
}

func (nb *NodeBase) SetScale(scale mgl64.Vec3) error {
	return nb.transform.SetScale(scale)
}

func (nb *NodeBase) Rotation() (mgl64.Quat, error) {
	return nb.transform.Rotation()
}

func (nb *NodeBase) SetRotation(rotation mgl64.Quat) error {
	return nb.transform.SetRotation(rotation)
}

// SetPositionAndScale sets both components at once. A General local transform
// is replaced by a TS one, which makes the node addressable by components again.
func (nb *NodeBase) SetPositionAndScale(position, scale mgl64.Vec3) error {
	if err := algebra.CheckVec3(position); err != nil {
		return errors.Wrap(err, "position")
	}
	if err := algebra.CheckVec3(scale); err != nil {
		return errors.Wrap(err, "scale")
	}

	if nb.transform.IsGeneral() {
		nb.transform = affine.NewTS(position, scale)
		return nil
	}
	if err := nb.transform.SetTranslation(position); err != nil {
		return err
	}

	return nb.transform.SetScale(scale)
}

// CascadeTransform composes the local transform with every ancestor's:
// parent.CascadeTransform() ∘ local. It is recomputed on each call and the
// result belongs to the caller.
func (nb *NodeBase) CascadeTransform() *affine.Transform {
	if nb.parent == nil {
		return nb.transform.Copy()
	}

	return nb.parent.CascadeTransform().Compose(nb.transform)
}

// WorldPosition is the image of the local origin in root space.
func (nb *NodeBase) WorldPosition() mgl64.Vec3 {
	return nb.CascadeTransform().Apply(mgl64.Vec3{}).Vec3()
}
