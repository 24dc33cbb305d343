package actor

import (
	"github.com/akmonengine/prism/affine"
	"github.com/pkg/errors"
)

var (
	// ErrAlreadyParented is returned when attaching a node that has a parent
	ErrAlreadyParented = errors.New("node already has a parent")
	// ErrCycle is returned when attaching a node under itself or one of its descendants
	ErrCycle = errors.New("node would become its own ancestor")
	// ErrNotChild is returned when detaching a node that is not a direct child
	ErrNotChild = errors.New("node is not a child")
)

// Node is the capability of being part of the scene graph.
// Entities get it by embedding *NodeBase and overriding Clone to copy their own
// fields, delegating the transform and hierarchy to NodeBase.CloneInto.
type Node interface {
	Base() *NodeBase
	Clone() Node
}

// NodeBase owns a local transform and an ordered list of children.
// The parent is a non-owning back reference; a node has at most one parent.
type NodeBase struct {
	name      string
	transform *affine.Transform
	parent    *NodeBase
	children  []Node
	// self is the entity embedding this base, returned by Parent and Walk
	self Node
}

// NewNode creates a plain grouping node with an identity transform.
func NewNode(name string) *NodeBase {
	return NewNodeBase(name, nil)
}

// NewNodeBase creates the base of the entity self. A nil self makes the base
// stand for itself.
func NewNodeBase(name string, self Node) *NodeBase {
	nb := &NodeBase{
		name:      name,
		transform: affine.Identity(),
		self:      self,
	}
	if self == nil {
		nb.self = nb
	}

	return nb
}

func (nb *NodeBase) Base() *NodeBase {
	return nb
}

func (nb *NodeBase) Name() string {
	return nb.name
}

func (nb *NodeBase) SetName(name string) {
	nb.name = name
}

// Self returns the entity this base belongs to.
func (nb *NodeBase) Self() Node {
	return nb.self
}

// Parent returns the owning entity, or nil for a root.
func (nb *NodeBase) Parent() Node {
	if nb.parent == nil {
		return nil
	}

	return nb.parent.self
}

// Root walks the parent chain up to the topmost node.
func (nb *NodeBase) Root() Node {
	root := nb
	for root.parent != nil {
		root = root.parent
	}

	return root.self
}

// Children returns a copy of the child list, in insertion order.
func (nb *NodeBase) Children() []Node {
	children := make([]Node, len(nb.children))
	copy(children, nb.children)

	return children
}

// IsAncestorOf reports whether nb is other or one of its ancestors.
func (nb *NodeBase) IsAncestorOf(other *NodeBase) bool {
	for n := other; n != nil; n = n.parent {
		if n == nb {
			return true
		}
	}

	return false
}

// Attach appends child to the children and sets its parent.
func (nb *NodeBase) Attach(child Node) error {
	cb := child.Base()
	if cb.parent != nil {
		return errors.Wrapf(ErrAlreadyParented, "attach %q to %q: parent is %q", cb.name, nb.name, cb.parent.name)
	}
	if cb.IsAncestorOf(nb) {
		return errors.Wrapf(ErrCycle, "attach %q to %q", cb.name, nb.name)
	}

	cb.parent = nb
	nb.children = append(nb.children, cb.self)

	return nil
}

// Detach removes child from the children and clears its parent.
func (nb *NodeBase) Detach(child Node) error {
	cb := child.Base()
	k := -1
	for i, c := range nb.children {
		if c.Base() == cb {
			k = i
			break
		}
	}
	if k == -1 {
		return errors.Wrapf(ErrNotChild, "detach %q from %q", cb.name, nb.name)
	}

	nb.children = append(nb.children[:k], nb.children[k+1:]...)
	cb.parent = nil

	return nil
}

// Walk visits the node and its descendants depth first, in insertion order.
// Returning false from fn skips the subtree of that node.
func (nb *NodeBase) Walk(fn func(Node) bool) {
	if !fn(nb.self) {
		return
	}
	for _, child := range nb.children {
		child.Base().Walk(fn)
	}
}

// FindChild returns the first direct child matching pred, or nil.
func (nb *NodeBase) FindChild(pred func(Node) bool) Node {
	for _, child := range nb.children {
		if pred(child) {
			return child
		}
	}

	return nil
}

// FindChildOfType returns the first direct child of n whose type is T.
func FindChildOfType[T Node](n Node) (T, bool) {
	for _, child := range n.Base().children {
		if c, ok := child.(T); ok {
			return c, true
		}
	}

	var zero T
	return zero, false
}

// FindAllOfType returns every node of type T in the subtree of n, n included,
// in depth-first order.
func FindAllOfType[T Node](n Node) []T {
	var found []T
	n.Base().Walk(func(node Node) bool {
		if c, ok := node.(T); ok {
			found = append(found, c)
		}
		return true
	})

	return found
}

// Clone returns an unparented deep copy of a plain node.
func (nb *NodeBase) Clone() Node {
	clone := NewNode(nb.name)
	nb.CloneInto(clone)

	return clone
}

// CloneInto copies the name and the local transform by value into dst and
// attaches a clone of every child to it. dst keeps its own self and stays
// unparented.
func (nb *NodeBase) CloneInto(dst *NodeBase) {
	dst.name = nb.name
	dst.transform = nb.transform.Copy()
	dst.children = make([]Node, 0, len(nb.children))
	for _, child := range nb.children {
		c := child.Clone()
		c.Base().parent = dst
		dst.children = append(dst.children, c)
	}
}
