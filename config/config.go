// Package config holds the editor's startup settings. Every field has a
// default; a TOML file may override any subset of them.
package config

import (
	"errors"
	"fmt"
	"os"

	"fortio.org/log"
	"github.com/pelletier/go-toml/v2"
)

type Vec3 [3]float32

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type CameraConfig struct {
	FOV      float32 `toml:"fov"` // vertical, degrees
	Near     float32 `toml:"near"`
	Far      float32 `toml:"far"`
	Position Vec3    `toml:"position"`
	Target   Vec3    `toml:"target"`
}

type ControlsConfig struct {
	Damping       float32 `toml:"damping"`
	MinDistance   float32 `toml:"min_distance"`
	MaxDistance   float32 `toml:"max_distance"`
	MaxPolarAngle float32 `toml:"max_polar_angle"` // degrees
}

type GridConfig struct {
	Size      float32 `toml:"size"`
	Divisions int     `toml:"divisions"`
}

type LightConfig struct {
	Color     uint32  `toml:"color"`
	Intensity float32 `toml:"intensity"`
	Direction Vec3    `toml:"direction"`
}

type LogoConfig struct {
	Path     string  `toml:"path"`
	Width    float32 `toml:"width"`
	Height   float32 `toml:"height"`
	Position Vec3    `toml:"position"`
}

// ModelEntry is one load item of the idle menu.
type ModelEntry struct {
	Label    string `toml:"label"`
	Path     string `toml:"path"`
	Position Vec3   `toml:"position"`
}

type LoaderConfig struct {
	ModelScale  float32 `toml:"model_scale"`
	Workers     int     `toml:"workers"`
	HelperColor uint32  `toml:"helper_color"`
}

type MenuConfig struct {
	Width     int `toml:"width"`
	RowHeight int `toml:"row_height"`
}

type Config struct {
	LogLevel   string `toml:"log_level"`
	AssetRoot  string `toml:"asset_root"`
	Background uint32 `toml:"background"`

	Window      WindowConfig   `toml:"window"`
	Camera      CameraConfig   `toml:"camera"`
	Controls    ControlsConfig `toml:"controls"`
	Grid        GridConfig     `toml:"grid"`
	Ambient     LightConfig    `toml:"ambient"`
	Directional LightConfig    `toml:"directional"`
	Logo        LogoConfig     `toml:"logo"`
	Loader      LoaderConfig   `toml:"loader"`
	Menu        MenuConfig     `toml:"menu"`
	Models      []ModelEntry   `toml:"models"`
}

// DefaultModels is the idle menu's load list.
func DefaultModels() []ModelEntry {
	return []ModelEntry{
		{Label: "Totem", Path: "/TESTPI_02.gltf", Position: Vec3{0, 0, 0}},
		{Label: "Lobby Counter", Path: "/LOBBYCOUNTER.gltf", Position: Vec3{100, 0, 0}},
		{Label: "Placa Imantada", Path: "/PLACAIMANTADA_PR.gltf", Position: Vec3{200, 0, 0}},
		{Label: "Tensa Barrier", Path: "/TENSABARRIER_02.gltf", Position: Vec3{300, 0, 0}},
	}
}

func Default() Config {
	return Config{
		LogLevel:   "info",
		AssetRoot:  "public",
		Background: 0xf0f0f0,
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Grid Editor",
			VSync:  true,
		},
		Camera: CameraConfig{
			FOV:      45,
			Near:     1,
			Far:      10000,
			Position: Vec3{500, 800, 1300},
		},
		Controls: ControlsConfig{
			Damping:       0.25,
			MinDistance:   100,
			MaxDistance:   5000,
			MaxPolarAngle: 90,
		},
		Grid: GridConfig{Size: 1000, Divisions: 20},
		Ambient: LightConfig{
			Color:     0x606060,
			Intensity: 3,
		},
		Directional: LightConfig{
			Color:     0xffffff,
			Intensity: 3,
			Direction: Vec3{1, 0.75, 0.5},
		},
		Logo: LogoConfig{
			Path:     "/LATAMLOGO.svg",
			Width:    200,
			Height:   100,
			Position: Vec3{0, 100, -500},
		},
		Loader: LoaderConfig{
			ModelScale:  50,
			Workers:     4,
			HelperColor: 0xffff00,
		},
		Menu:   MenuConfig{Width: 256, RowHeight: 40},
		Models: DefaultModels(),
	}
}

// Load overlays the TOML file at path on Default and validates the result.
// An empty path returns the defaults. A file that lists no models keeps the
// default model list.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	cfg.Models = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	log.Infof("Loaded config from %s (%d models)", path, len(cfg.Models))
	return cfg, nil
}

var (
	ErrWindowSize = errors.New("window size must be positive")
	ErrCamera     = errors.New("camera needs 0 < fov < 180 and 0 < near < far")
	ErrControls   = errors.New("controls need 0 < damping <= 1, 0 <= min_distance <= max_distance, 0 < max_polar_angle <= 180")
	ErrGrid       = errors.New("grid needs a positive size and at least one division")
	ErrLoader     = errors.New("loader needs a positive model_scale and at least one worker")
	ErrMenu       = errors.New("menu width and row_height must be positive")
	ErrAssetRoot  = errors.New("asset_root must not be empty")
	ErrModel      = errors.New("every model needs a label and a path")
)

// Validate reports the first setting that cannot produce a working editor.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return ErrWindowSize
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180 || c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return ErrCamera
	case c.Controls.Damping <= 0 || c.Controls.Damping > 1 ||
		c.Controls.MinDistance < 0 || c.Controls.MaxDistance < c.Controls.MinDistance ||
		c.Controls.MaxPolarAngle <= 0 || c.Controls.MaxPolarAngle > 180:
		return ErrControls
	case c.Grid.Size <= 0 || c.Grid.Divisions < 1:
		return ErrGrid
	case c.Loader.ModelScale <= 0 || c.Loader.Workers < 1:
		return ErrLoader
	case c.Menu.Width <= 0 || c.Menu.RowHeight <= 0:
		return ErrMenu
	case c.AssetRoot == "":
		return ErrAssetRoot
	}
	for i, m := range c.Models {
		if m.Label == "" || m.Path == "" {
			return fmt.Errorf("models[%d]: %w", i, ErrModel)
		}
	}
	return nil
}
