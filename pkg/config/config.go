package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/ritzau/knowledge-graph/pkg/logging"
	"github.com/ritzau/knowledge-graph/pkg/model"
	"github.com/ritzau/knowledge-graph/pkg/sim"
	"github.com/ritzau/knowledge-graph/pkg/view"
	"github.com/spf13/pflag"
)

// DefaultFile is the optional config file read from the working directory
const DefaultFile = "knowledge-graph.toml"

const envPrefix = "KNOWLEDGE_GRAPH_"

// Config holds all configuration for the application
type Config struct {
	Topic      string      `koanf:"topic"`
	Serve      bool        `koanf:"serve"`
	Port       int         `koanf:"port"`
	Watch      bool        `koanf:"watch"`
	Open       bool        `koanf:"open"`
	Width      float64     `koanf:"width"`
	Height     float64     `koanf:"height"`
	FPS        int         `koanf:"fps"`
	Verbosity  string      `koanf:"verbosity"`
	VerboseCnt int         `koanf:"verbose"`
	JSONLogs   bool        `koanf:"json"`
	Force      ForceConfig `koanf:"force"`
}

// ForceConfig tunes the layout simulation and camera
type ForceConfig struct {
	AlphaDecay        float64 `koanf:"alpha_decay"`
	VelocityDecay     float64 `koanf:"velocity_decay"`
	LinkDistance      float64 `koanf:"link_distance"`
	LinkStrength      float64 `koanf:"link_strength"`
	ChargeStrength    float64 `koanf:"charge_strength"`
	ChargeDistanceMax float64 `koanf:"charge_distance_max"`
	CenterStrength    float64 `koanf:"center_strength"`
	CollideRadius     float64 `koanf:"collide_radius"` // margin added to each node's radius
	CollideStrength   float64 `koanf:"collide_strength"`
	CollideIterations int     `koanf:"collide_iterations"`
	CooldownMS        int     `koanf:"cooldown_ms"`
	WarmupTicks       int     `koanf:"warmup_ticks"`
	ZoomToFitMS       int     `koanf:"zoom_to_fit_ms"`
	ZoomToFitPadding  float64 `koanf:"zoom_to_fit_padding"`
}

func defaults() map[string]interface{} {
	s := sim.DefaultConfig()
	v := view.DefaultConfig()
	return map[string]interface{}{
		"topic":     "",
		"serve":     false,
		"port":      8080,
		"watch":     false,
		"open":      false,
		"width":     model.DefaultViewport.Width,
		"height":    model.DefaultViewport.Height,
		"fps":       view.DefaultFPS,
		"verbosity": "",
		"verbose":   0,
		"json":      false,

		"force": map[string]interface{}{
			"alpha_decay":         s.AlphaDecay,
			"velocity_decay":      s.VelocityDecay,
			"link_distance":       s.LinkDistance,
			"link_strength":       s.LinkStrength,
			"charge_strength":     s.ChargeStrength,
			"charge_distance_max": s.ChargeDistanceMax,
			"center_strength":     s.CenterStrength,
			"collide_radius":      s.CollideMargin,
			"collide_strength":    s.CollideStrength,
			"collide_iterations":  s.CollideIterations,
			"cooldown_ms":         int(s.Cooldown / time.Millisecond),
			"warmup_ticks":        s.WarmupTicks,
			"zoom_to_fit_ms":      int(v.ZoomToFitDuration / time.Millisecond),
			"zoom_to_fit_padding": v.ZoomToFitPadding,
		},
	}
}

// Flags registers the command-line flags understood by Load
func Flags(f *pflag.FlagSet) {
	f.String("topic", "", "Path to the topic dataset (.json, .toml, .yaml)")
	f.Bool("serve", false, "Serve the interactive graph over HTTP instead of printing a report")
	f.Int("port", 8080, "Port for the web server (only used with --serve)")
	f.Bool("watch", false, "Reload the dataset when the file changes")
	f.Bool("open", false, "Open the browser once the server is up (only used with --serve)")
	f.Float64("width", model.DefaultViewport.Width, "Initial viewport width in pixels")
	f.Float64("height", model.DefaultViewport.Height, "Initial viewport height in pixels")
	f.Int("fps", view.DefaultFPS, "Frame rate of the render loop")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.Bool("json", false, "Emit logs as JSON")
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return LoadFile(f, DefaultFile)
}

// LoadFile is Load with an explicit config file path
func LoadFile(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	// We ignore errors here as the file might not exist
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		logging.Trace("no config file loaded", "path", path, "error", err)
	}

	// 3. Environment Variables
	// Prefix: KNOWLEDGE_GRAPH_ (e.g., KNOWLEDGE_GRAPH_PORT=9090,
	// KNOWLEDGE_GRAPH_FORCE_LINK_DISTANCE=60)
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps KNOWLEDGE_GRAPH_FORCE_LINK_DISTANCE to force.link_distance.
// Only the block separator becomes a dot since force keys contain underscores.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "force_"); ok {
		return "force." + rest
	}
	return key
}

func (c *Config) validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid viewport %gx%g", c.Width, c.Height)
	case c.FPS <= 0:
		return fmt.Errorf("invalid fps %d", c.FPS)
	case c.Force.CollideIterations < 0 || c.Force.WarmupTicks < 0:
		return fmt.Errorf("force iterations and warmup ticks must not be negative")
	}
	if _, err := logging.ParseLevel(c.Verbosity); err != nil {
		return err
	}
	return nil
}

// LogLevel resolves the log level. An explicit verbosity wins over -v counts.
func (c *Config) LogLevel() slog.Level {
	if c.Verbosity != "" {
		level, err := logging.ParseLevel(c.Verbosity)
		if err == nil {
			return level
		}
	}
	switch {
	case c.VerboseCnt >= 2:
		return logging.LevelTrace
	case c.VerboseCnt == 1:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Viewport is the initial rendering surface size
func (c *Config) Viewport() model.Viewport {
	return model.Viewport{Width: c.Width, Height: c.Height}
}

// Addr is the listen address for the web server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// SimConfig applies the force block on top of the simulation defaults
func (c *Config) SimConfig() sim.Config {
	s := sim.DefaultConfig()
	f := c.Force
	s.AlphaDecay = f.AlphaDecay
	s.VelocityDecay = f.VelocityDecay
	s.LinkDistance = f.LinkDistance
	s.LinkStrength = f.LinkStrength
	s.ChargeStrength = f.ChargeStrength
	s.ChargeDistanceMax = f.ChargeDistanceMax
	s.CenterStrength = f.CenterStrength
	s.CollideMargin = f.CollideRadius
	s.CollideStrength = f.CollideStrength
	s.CollideIterations = f.CollideIterations
	s.Cooldown = time.Duration(f.CooldownMS) * time.Millisecond
	s.WarmupTicks = f.WarmupTicks
	return s
}

// ViewConfig is the view configuration including the simulation settings
func (c *Config) ViewConfig() view.Config {
	v := view.DefaultConfig()
	v.Sim = c.SimConfig()
	v.ZoomToFitDuration = time.Duration(c.Force.ZoomToFitMS) * time.Millisecond
	v.ZoomToFitPadding = c.Force.ZoomToFitPadding
	return v
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
