package prism

import (
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate and the loaders
var ErrInvalidConfig = errors.New("invalid scene configuration")

const (
	CameraOrthographic = "orthographic"
	CameraPerspective  = "perspective"
)

type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// Depth is the z range seen by the orthographic camera, centered on z = 0
	Depth float64 `yaml:"depth"`
}

type CameraConfig struct {
	Projection string `yaml:"projection"`
	// FovY is the vertical field of view in degrees, perspective only
	FovY float64 `yaml:"fovy"`
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

type GridConfig struct {
	// CellSize is the side of a grid cell, in pixels
	CellSize float64 `yaml:"cell_size"`
	// Cells is rounded up to a power of two
	Cells int `yaml:"cells"`
}

// Config holds the scene settings. Fields missing from a YAML document keep
// their DefaultConfig value.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Camera   CameraConfig   `yaml:"camera"`
	Grid     GridConfig     `yaml:"grid"`
	Workers  int            `yaml:"workers"`
}

func DefaultConfig() Config {
	return Config{
		Viewport: ViewportConfig{Width: 800, Height: 600, Depth: 1000},
		Camera: CameraConfig{
			Projection: CameraOrthographic,
			FovY:       60,
			Near:       0.1,
			Far:        1000,
		},
		Grid:    GridConfig{CellSize: 64, Cells: 1024},
		Workers: DEFAULT_WORKERS,
	}
}

// LoadConfig decodes a YAML document over DefaultConfig and validates it.
// An empty document yields the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "decode: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "open config %s", path)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}

	return cfg, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func (cfg Config) Validate() error {
	if !positive(cfg.Viewport.Width) || !positive(cfg.Viewport.Height) || !positive(cfg.Viewport.Depth) {
		return errors.Wrapf(ErrInvalidConfig, "viewport %vx%vx%v", cfg.Viewport.Width, cfg.Viewport.Height, cfg.Viewport.Depth)
	}
	if !positive(cfg.Grid.CellSize) || cfg.Grid.Cells <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "grid cell size %v, %d cells", cfg.Grid.CellSize, cfg.Grid.Cells)
	}
	if cfg.Workers < 0 {
		return errors.Wrapf(ErrInvalidConfig, "%d workers", cfg.Workers)
	}

	switch cfg.Camera.Projection {
	case CameraOrthographic:
	case CameraPerspective:
		if !(cfg.Camera.FovY > 0 && cfg.Camera.FovY < 180) || !positive(cfg.Camera.Near) || !(cfg.Camera.Far > cfg.Camera.Near) {
			return errors.Wrapf(ErrInvalidConfig, "perspective fovy=%v near=%v far=%v", cfg.Camera.FovY, cfg.Camera.Near, cfg.Camera.Far)
		}
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown camera projection %q", cfg.Camera.Projection)
	}

	return nil
}
