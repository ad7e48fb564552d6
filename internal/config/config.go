package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	BackendOpenGL = "opengl"
	BackendVulkan = "vulkan"
)

// RendererSettings configures the back end and the offscreen targets.
type RendererSettings struct {
	Backend         string     `toml:"backend"`
	FrameWidth      int32      `toml:"frame_width"`
	FrameHeight     int32      `toml:"frame_height"`
	Wireframe       bool       `toml:"wireframe"`
	ClearColor      [3]float32 `toml:"clear_color"`
	MaxTextureUnits int        `toml:"max_texture_units"`
	VertexShaderDir string     `toml:"vertex_shader_dir,omitempty"`
	LogTextureStats bool       `toml:"log_texture_stats"`
}

type LoggingSettings struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type WindowSettings struct {
	Title string `toml:"title"`
	X     int    `toml:"x"`
	Y     int    `toml:"y"`
}

// Settings is the full engine configuration as stored on disk.
type Settings struct {
	Renderer RendererSettings `toml:"renderer"`
	Logging  LoggingSettings  `toml:"logging"`
	Window   WindowSettings   `toml:"window"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		Renderer: RendererSettings{
			Backend:         BackendOpenGL,
			FrameWidth:      1024,
			FrameHeight:     768,
			ClearColor:      [3]float32{0.1, 0.1, 0.12},
			MaxTextureUnits: 32,
		},
		Logging: LoggingSettings{
			Level: "info",
		},
		Window: WindowSettings{
			Title: "Stone Engine",
			X:     100,
			Y:     100,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return s, s.Validate()
}

// Save writes the settings as TOML.
func (s Settings) Save(path string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

func (s Settings) Validate() error {
	switch s.Renderer.Backend {
	case BackendOpenGL, BackendVulkan:
	default:
		return fmt.Errorf("unknown renderer backend %q", s.Renderer.Backend)
	}
	if s.Renderer.FrameWidth <= 0 || s.Renderer.FrameHeight <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", s.Renderer.FrameWidth, s.Renderer.FrameHeight)
	}
	if s.Renderer.MaxTextureUnits <= 0 {
		return fmt.Errorf("max_texture_units must be positive, got %d", s.Renderer.MaxTextureUnits)
	}
	return nil
}
