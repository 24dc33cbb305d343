package actor

// Sprite is a visual node. Image is a reference the renderer resolves to a
// texture; loading it happens outside this package.
type Sprite struct {
	*NodeBase

	Image   string
	Width   float64
	Height  float64
	Visible bool
}

func NewSprite(name, image string, width, height float64) *Sprite {
	s := &Sprite{
		Image:   image,
		Width:   width,
		Height:  height,
		Visible: true,
	}
	s.NodeBase = NewNodeBase(name, s)

	return s
}

// Clone copies the image reference and the size, and the hierarchy through
// NodeBase.CloneInto.
func (s *Sprite) Clone() Node {
	clone := NewSprite(s.name, s.Image, s.Width, s.Height)
	clone.Visible = s.Visible
	s.NodeBase.CloneInto(clone.NodeBase)

	return clone
}
