package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/akmonengine/prism"
	"github.com/akmonengine/prism/actor"
	"github.com/akmonengine/prism/pick"
	"github.com/go-gl/mathgl/mgl64"
)

// NewButton creates a sprite with a click quad of the same size
func NewButton(name string, width, height float64) (*actor.Sprite, error) {
	sprite := actor.NewSprite(name, name+".png", width, height)

	volume, err := pick.FromQuad(name+"-click", width, height, mgl64.Vec3{})
	if err != nil {
		return nil, err
	}
	if err := sprite.Attach(volume); err != nil {
		return nil, err
	}

	return sprite, nil
}

// SetupScene creates a scene holding a row of buttons and a spinning crate
func SetupScene(cfg prism.Config) (*prism.Scene, actor.Node, error) {
	scene, err := prism.NewScene(cfg)
	if err != nil {
		return nil, nil, err
	}

	template, err := NewButton("button", 120, 40)
	if err != nil {
		return nil, nil, err
	}
	for i := 0; i < 3; i++ {
		button, err := scene.Instantiate(template)
		if err != nil {
			return nil, nil, err
		}
		button.Base().SetName(fmt.Sprintf("button-%d", i))
		if err := button.Base().SetPosition(mgl64.Vec3{200 + 200*float64(i), 100, 0}); err != nil {
			return nil, nil, err
		}
	}

	crate := actor.NewNode("crate")
	box, err := pick.FromBox("crate-click", mgl64.Vec3{50, 50, 50})
	if err != nil {
		return nil, nil, err
	}
	if err := crate.Attach(box); err != nil {
		return nil, nil, err
	}
	if err := crate.SetPosition(mgl64.Vec3{400, 400, 0}); err != nil {
		return nil, nil, err
	}
	if err := scene.Root.Attach(crate); err != nil {
		return nil, nil, err
	}

	return scene, crate, nil
}

func ownerName(volume *pick.ClickVolume) string {
	if owner := volume.Owner(); owner != nil {
		return owner.Base().Name()
	}
	return volume.Name()
}

func main() {
	prism.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg := prism.DefaultConfig()
	if len(os.Args) > 1 {
		loaded, err := prism.LoadConfigFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	scene, crate, err := SetupScene(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	scene.Subscribe(prism.POINTER_ENTER, func(event prism.Event) {
		fmt.Printf("  enter %s\n", ownerName(event.(prism.PointerEnterEvent).Volume))
	})
	scene.Subscribe(prism.POINTER_EXIT, func(event prism.Event) {
		fmt.Printf("  exit  %s\n", ownerName(event.(prism.PointerExitEvent).Volume))
	})
	scene.Subscribe(prism.CLICK, func(event prism.Event) {
		e := event.(prism.ClickEvent)
		fmt.Printf("  click %s at (%.0f, %.0f)\n", ownerName(e.Volume), e.X, e.Y)
	})

	// A scripted pointer: hover the buttons from left to right, click the
	// middle one, then rest on the crate while it spins
	path := []mgl64.Vec2{{200, 100}, {400, 100}, {400, 100}, {600, 100}, {400, 400}, {400, 400}, {400, 400}}
	spin := mgl64.QuatRotate(mgl64.DegToRad(30), mgl64.Vec3{1, 1, 0}.Normalize())

	for frame, p := range path {
		fmt.Printf("--- FRAME %d pointer (%.0f, %.0f) ---\n", frame+1, p.X(), p.Y())

		rotation, err := crate.Base().Rotation()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := crate.Base().SetRotation(spin.Mul(rotation)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if err := scene.Project(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		scene.PointerMove(p.X(), p.Y())
		if frame == 2 {
			scene.PointerDown(p.X(), p.Y())
			scene.PointerUp(p.X(), p.Y())
		}
		scene.Flush()
	}

	fmt.Println(scene.Dump())
}
