package prism

import (
	"math"

	"github.com/akmonengine/prism/actor"
	"github.com/akmonengine/prism/affine"
	"github.com/akmonengine/prism/pick"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const DEFAULT_WORKERS = 1

var (
	// ErrCameraNotInScene is returned when activating a camera that is not under the scene root
	ErrCameraNotInScene = errors.New("camera is not in the scene")
	// ErrNodeNotInScene is returned when removing a node that is not under the scene root
	ErrNodeNotInScene = errors.New("node is not in the scene")
	// ErrRemoveActiveCamera is returned when removing a subtree that holds the active camera
	ErrRemoveActiveCamera = errors.New("node holds the active camera")
)

// Scene owns a node tree, the camera it is seen through and the pointer
// state. A frame is: mutate the nodes, Project, feed pointer input, Flush.
type Scene struct {
	Root        *actor.NodeBase
	Camera      *actor.Camera
	Config      Config
	SpatialGrid *SpatialGrid
	Workers     int

	Events Events

	// camera built from Config, reshaped by Resize
	viewportCamera *actor.Camera

	// volumes of the last projection, indexed by the grid
	volumes []*pick.ClickVolume

	pointer    mgl64.Vec2
	hasPointer bool
}

// NewScene validates cfg and creates a scene with an empty root and a default
// camera built from cfg.Camera, attached under the root and active.
func NewScene(cfg Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	camera, err := newCamera(cfg)
	if err != nil {
		return nil, err
	}

	s := &Scene{
		Root:        actor.NewNode("root"),
		Camera:      camera,
		Config:      cfg,
		SpatialGrid: NewSpatialGrid(cfg.Grid.CellSize, cfg.Grid.Cells),
		Workers:     cfg.Workers,
		Events:      NewEvents(),

		viewportCamera: camera,
	}
	if err := s.Root.Attach(camera); err != nil {
		return nil, err
	}

	return s, nil
}

func newCamera(cfg Config) (*actor.Camera, error) {
	if cfg.Camera.Projection == CameraPerspective {
		return actor.NewPerspective("camera",
			mgl64.DegToRad(cfg.Camera.FovY),
			cfg.Viewport.Width/cfg.Viewport.Height,
			cfg.Camera.Near,
			cfg.Camera.Far,
		)
	}

	return actor.NewOrthographicViewport("camera", cfg.Viewport.Width, cfg.Viewport.Height, cfg.Viewport.Depth)
}

// Instantiate attaches a clone of template under the root and returns it.
// The template itself is left untouched and may be reused.
func (s *Scene) Instantiate(template actor.Node) (actor.Node, error) {
	if template == nil {
		return nil, errors.Wrap(affine.ErrInvalidArgument, "nil template")
	}

	instance := template.Clone()
	if err := s.Root.Attach(instance); err != nil {
		return nil, err
	}
	Logger().Debug("prism: instantiated", "name", instance.Base().Name())

	return instance, nil
}

// Remove detaches node from its parent and drops the pointer state of the
// volumes below it.
func (s *Scene) Remove(node actor.Node) error {
	nb := node.Base()
	if nb == s.Root || !s.Root.IsAncestorOf(nb) {
		return errors.Wrapf(ErrNodeNotInScene, "remove %q", nb.Name())
	}
	if nb.IsAncestorOf(s.Camera.Base()) {
		return errors.Wrapf(ErrRemoveActiveCamera, "remove %q", nb.Name())
	}

	if err := nb.Parent().Base().Detach(node); err != nil {
		return err
	}
	for _, v := range actor.FindAllOfType[*pick.ClickVolume](node) {
		s.Events.forget(v)
	}

	return nil
}

// SetActiveCamera switches the camera used by Project.
func (s *Scene) SetActiveCamera(camera *actor.Camera) error {
	if camera == nil || !s.Root.IsAncestorOf(camera.Base()) {
		return ErrCameraNotInScene
	}

	s.Camera = camera
	Logger().Info("prism: active camera", "name", camera.Name())

	return nil
}

// Resize changes the viewport. The scene's own camera gets the projection
// Config describes for the new size; other cameras keep theirs.
func (s *Scene) Resize(width, height float64) error {
	cfg := s.Config
	cfg.Viewport.Width, cfg.Viewport.Height = width, height
	if err := cfg.Validate(); err != nil {
		return err
	}

	fresh, err := newCamera(cfg)
	if err != nil {
		return err
	}
	if err := s.viewportCamera.SetProjection(fresh.Projection()); err != nil {
		return err
	}
	s.Config = cfg

	return nil
}

// Volumes returns every click volume under the root, depth first.
func (s *Scene) Volumes() []*pick.ClickVolume {
	return actor.FindAllOfType[*pick.ClickVolume](s.Root)
}

type projection struct {
	volume *pick.ClickVolume
	mvp    *affine.Transform
}

// Project refreshes the clip-space cache of every volume through the active
// camera, then rebuilds the pixel grid used by Pick.
func (s *Scene) Project() error {
	s.Workers = max(DEFAULT_WORKERS, s.Workers)

	clip, err := s.Camera.ClipTransform()
	if err != nil {
		return err
	}
	volumes := s.Volumes()

	// Phase 1: compose sequentially, the lazy matrix caches of shared
	// ancestors and of the camera are filled here
	projections := make([]projection, len(volumes))
	for i, v := range volumes {
		projections[i] = projection{volume: v, mvp: clip.Compose(v.CascadeTransform())}
	}

	// Phase 2: each worker writes only the caches of its own volumes
	task(s.Workers, projections, func(p projection) {
		p.volume.ProjectWith(p.mvp)
	})

	// Phase 3: broad phase over the viewport
	s.volumes = volumes
	s.SpatialGrid.Clear()
	inserted := 0
	for i, v := range volumes {
		bounds, ok := s.clampToViewport(v.PixelBounds(s.Config.Viewport.Width, s.Config.Viewport.Height))
		if !ok {
			continue
		}
		s.SpatialGrid.Insert(i, bounds)
		inserted++
	}
	s.SpatialGrid.SortCells()

	Logger().Debug("prism: projected", "volumes", len(volumes), "visible", inserted, "workers", s.Workers)

	return nil
}

// clampToViewport intersects pixel bounds with the viewport. It reports false
// for volumes entirely outside it or with a projection that is not a number.
func (s *Scene) clampToViewport(bounds actor.AABB) (actor.AABB, bool) {
	if bounds.IsEmpty() {
		return bounds, false
	}
	for i := 0; i < 2; i++ {
		if math.IsNaN(bounds.Min[i]) || math.IsNaN(bounds.Max[i]) {
			Logger().Warn("prism: skipped volume with NaN projection")
			return bounds, false
		}
	}

	viewport := actor.AABB{
		Min: mgl64.Vec3{0, 0, bounds.Min.Z()},
		Max: mgl64.Vec3{s.Config.Viewport.Width, s.Config.Viewport.Height, bounds.Max.Z()},
	}
	if !bounds.Overlaps(viewport) {
		return bounds, false
	}
	for i := 0; i < 2; i++ {
		bounds.Min[i] = math.Max(bounds.Min[i], viewport.Min[i])
		bounds.Max[i] = math.Min(bounds.Max[i], viewport.Max[i])
	}

	return bounds, true
}

// Pick returns the volumes hit at pixel (x, y) by the last projection, in
// tree order. A pixel outside the viewport hits nothing.
func (s *Scene) Pick(x, y float64) []*pick.ClickVolume {
	width, height := s.Config.Viewport.Width, s.Config.Viewport.Height
	if !(x >= 0 && x <= width && y >= 0 && y <= height) {
		return nil
	}

	var hits []*pick.ClickVolume
	for _, idx := range s.SpatialGrid.Query(x, y) {
		v := s.volumes[idx]
		// Removed since the last projection
		if !s.Root.IsAncestorOf(v.Base()) {
			continue
		}
		if v.HitTest(x, y, width, height) {
			hits = append(hits, v)
		}
	}

	return hits
}

// Subscribe adds a listener for a pointer event type
func (s *Scene) Subscribe(eventType EventType, listener EventListener) {
	s.Events.Subscribe(eventType, listener)
}

// PointerMove records the pointer position; hover events are resolved at Flush.
func (s *Scene) PointerMove(x, y float64) {
	s.pointer = mgl64.Vec2{x, y}
	s.hasPointer = true
}

// PointerLeave removes the pointer from the viewport; every hovered volume
// gets an exit event at the next Flush.
func (s *Scene) PointerLeave() {
	s.hasPointer = false
}

func (s *Scene) PointerDown(x, y float64) {
	s.PointerMove(x, y)
	s.Events.recordDown(s.Pick(x, y), x, y)
}

func (s *Scene) PointerUp(x, y float64) {
	s.PointerMove(x, y)
	s.Events.recordUp(s.Pick(x, y), x, y)
}

// Flush resolves hover against the last projection and sends the buffered
// events to the listeners.
func (s *Scene) Flush() {
	if s.hasPointer {
		s.Events.recordHover(s.Pick(s.pointer.X(), s.pointer.Y()), s.pointer.X(), s.pointer.Y())
	}
	Logger().Debug("prism: flush", "buffered", len(s.Events.buffer))

	s.Events.flush()
}
