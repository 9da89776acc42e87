package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a character pipeline and of the simulation running it. A Config is
// immutable once loaded; behaviors copy the sections they need when they are created.
type Config struct {
	// Pipeline lists the behaviors attached to a new character, in registry order.
	Pipeline []string `toml:"pipeline" yaml:"pipeline"`

	Simulation    Simulation    `toml:"simulation" yaml:"simulation"`
	Body          Body          `toml:"body" yaml:"body"`
	Gravity       Gravity       `toml:"gravity" yaml:"gravity"`
	Ground        Ground        `toml:"ground" yaml:"ground"`
	Jump          Jump          `toml:"jump" yaml:"jump"`
	AutomaticJump AutomaticJump `toml:"automatic_jump" yaml:"automatic_jump"`
	EdgeFall      EdgeFall      `toml:"edge_fall" yaml:"edge_fall"`
	FreeFall      FreeFall      `toml:"free_fall" yaml:"free_fall"`
	WalkRun       WalkRun       `toml:"walk_run" yaml:"walk_run"`
	Camera        Camera        `toml:"camera" yaml:"camera"`

	// Conflicts overrides the conflict set of the behaviors it names. Behaviors it does not name keep
	// their default conflicts.
	Conflicts map[string][]string `toml:"conflicts" yaml:"conflicts"`

	pipeline  []character.ID
	conflicts map[character.ID][]character.ID
}

// Simulation configures the driver ticking characters.
type Simulation struct {
	// TickRate is the amount of ticks per second.
	TickRate int `toml:"tick_rate" yaml:"tick_rate"`
	// Workers is the amount of goroutines characters are ticked on. Zero ticks on the driver goroutine.
	Workers    int      `toml:"workers" yaml:"workers"`
	LogLevel   string   `toml:"log_level" yaml:"log_level"`
	DebugModes []string `toml:"debug_modes" yaml:"debug_modes"`
}

// Body configures the capsule of a character.
type Body struct {
	Radius     float64 `toml:"radius" yaml:"radius"`
	Height     float64 `toml:"height" yaml:"height"`
	StepHeight float64 `toml:"step_height" yaml:"step_height"`
}

type Gravity struct {
	// Acceleration is the signed vertical acceleration in m/s², negative pointing down.
	Acceleration float64 `toml:"acceleration" yaml:"acceleration"`
}

type Ground struct {
	// Stick is the vertical velocity written while grounded, keeping the body pressed on slopes.
	Stick float64 `toml:"stick" yaml:"stick"`
}

type Jump struct {
	Height float64 `toml:"height" yaml:"height"`
	// Timeout is both how long a jump request stays buffered and the cooldown after a jump.
	Timeout float64 `toml:"timeout" yaml:"timeout"`
}

type AutomaticJump struct {
	MinVelocity float64 `toml:"min_velocity" yaml:"min_velocity"`
}

type EdgeFall struct {
	SlideAngle float64 `toml:"slide_angle" yaml:"slide_angle"`
	SlideSpeed float64 `toml:"slide_speed" yaml:"slide_speed"`
}

type FreeFall struct {
	Timeout float64 `toml:"timeout" yaml:"timeout"`
}

type WalkRun struct {
	SlowWalkSpeed      float64 `toml:"slow_walk_speed" yaml:"slow_walk_speed"`
	WalkSpeed          float64 `toml:"walk_speed" yaml:"walk_speed"`
	SprintSpeed        float64 `toml:"sprint_speed" yaml:"sprint_speed"`
	RotationSmoothTime float64 `toml:"rotation_smooth_time" yaml:"rotation_smooth_time"`
	SpeedChangeRate    float64 `toml:"speed_change_rate" yaml:"speed_change_rate"`
}

type Camera struct {
	TopClamp      float64 `toml:"top_clamp" yaml:"top_clamp"`
	BottomClamp   float64 `toml:"bottom_clamp" yaml:"bottom_clamp"`
	AngleOverride float64 `toml:"angle_override" yaml:"angle_override"`
}

// Default returns the default configuration.
func Default() Config {
	c := Config{
		Pipeline: []string{"gravity", "ground", "jump", "automatic_jump", "edge_fall", "walk_run", "free_fall", "camera"},
	}
	c.Simulation.TickRate = 50
	c.Simulation.LogLevel = "info"

	c.Body.Radius = 0.5
	c.Body.Height = 2
	c.Body.StepHeight = 0.3

	c.Gravity.Acceleration = -15
	c.Ground.Stick = -2

	c.Jump.Height = 1.2
	c.Jump.Timeout = 0.5

	c.AutomaticJump.MinVelocity = 4

	c.EdgeFall.SlideAngle = 20
	c.EdgeFall.SlideSpeed = 1

	c.FreeFall.Timeout = 0.15

	c.WalkRun.SlowWalkSpeed = 2
	c.WalkRun.WalkSpeed = 3.5
	c.WalkRun.SprintSpeed = 5.5
	c.WalkRun.RotationSmoothTime = 0.5
	c.WalkRun.SpeedChangeRate = 10

	c.Camera.TopClamp = 70
	c.Camera.BottomClamp = -30

	if err := c.resolve(); err != nil {
		panic(err)
	}
	return c
}

// Format is an encoding configuration files can be written in.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format of a configuration file from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", oerror.New("unsupported config extension %q", filepath.Ext(path))
}

// Load reads the configuration file at path. Values missing from the file keep their defaults. An error
// is returned if the file names an unknown behavior or holds values no pipeline can run with.
func Load(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Config{}, oerror.New("config file %s doesn't exist", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, oerror.New("error reading config: %v", err)
	}
	return Decode(data, format)
}

// Decode decodes a configuration encoded in the format passed on top of the defaults.
func Decode(data []byte, format Format) (Config, error) {
	c := Default()
	// Decoding appends to slices and merges maps, so the lists a file may replace start empty.
	c.Pipeline, c.Conflicts = nil, nil

	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &c)
	case FormatYAML:
		err = yaml.Unmarshal(data, &c)
	default:
		return Config{}, oerror.New("unsupported config format %q", format)
	}
	if err != nil {
		return Config{}, oerror.New("error decoding config: %v", err)
	}
	if c.Pipeline == nil {
		c.Pipeline = Default().Pipeline
	}
	if err := c.resolve(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Encode encodes the configuration in the format passed.
func Encode(c Config, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(c)
	case FormatYAML:
		return yaml.Marshal(c)
	}
	return nil, oerror.New("unsupported config format %q", format)
}

// SaveDefault creates a configuration file holding the default configuration at path, picking the
// format from its extension. An error is returned if the file already exists.
func SaveDefault(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return oerror.New("config file %s already exists", path)
	}
	data, err := Encode(Default(), format)
	if err != nil {
		return oerror.New("failed encoding default config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return oerror.New("failed creating config file: %v", err)
	}
	return nil
}

// PipelineIDs returns the behaviors of the pipeline in registry order.
func (c Config) PipelineIDs() []character.ID {
	return append([]character.ID(nil), c.pipeline...)
}

// ConflictsOf returns the conflict set configured for id. ok is false if the configuration does not
// override the conflicts of id.
func (c Config) ConflictsOf(id character.ID) (conflicts []character.ID, ok bool) {
	conflicts, ok = c.conflicts[id]
	return append([]character.ID(nil), conflicts...), ok
}

// Level returns the logrus level of the simulation.
func (s Simulation) Level() (logrus.Level, error) {
	if s.LogLevel == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(s.LogLevel)
}

// Modes returns the debug modes enabled by the simulation.
func (s Simulation) Modes() ([]character.DebugMode, error) {
	modes := make([]character.DebugMode, 0, len(s.DebugModes))
	for _, name := range s.DebugModes {
		mode, err := character.ParseDebugMode(name)
		if err != nil {
			return nil, err
		}
		modes = append(modes, mode)
	}
	return modes, nil
}

// resolve turns the behavior names of the configuration into identities and validates its values.
func (c *Config) resolve() error {
	pipeline, err := character.ParseIDs(c.Pipeline)
	if err != nil {
		return oerror.New("pipeline: %v", err)
	}
	conflicts := make(map[character.ID][]character.ID, len(c.Conflicts))
	for name, names := range c.Conflicts {
		id, err := character.ParseID(name)
		if err != nil {
			return oerror.New("conflicts: %v", err)
		}
		ids, err := character.ParseIDs(names)
		if err != nil {
			return oerror.New("conflicts of %s: %v", id, err)
		}
		conflicts[id] = ids
	}

	switch {
	case c.Simulation.TickRate <= 0:
		return oerror.New("simulation: tick rate must be positive, got %d", c.Simulation.TickRate)
	case c.Simulation.Workers < 0:
		return oerror.New("simulation: worker count must not be negative, got %d", c.Simulation.Workers)
	case c.Body.Radius <= 0 || c.Body.Height < 2*c.Body.Radius:
		return oerror.New("body: invalid capsule radius=%v height=%v", c.Body.Radius, c.Body.Height)
	case c.Gravity.Acceleration == 0:
		return oerror.New("gravity: acceleration must not be zero")
	case c.Jump.Height <= 0:
		return oerror.New("jump: height must be positive, got %v", c.Jump.Height)
	case c.WalkRun.WalkSpeed <= 0 || c.WalkRun.SlowWalkSpeed < 0 || c.WalkRun.SprintSpeed < 0:
		return oerror.New("walk_run: speeds must be positive")
	case c.Camera.BottomClamp > c.Camera.TopClamp:
		return oerror.New("camera: bottom clamp %v above top clamp %v", c.Camera.BottomClamp, c.Camera.TopClamp)
	}
	if _, err := c.Simulation.Level(); err != nil {
		return oerror.New("simulation: %v", err)
	}
	if _, err := c.Simulation.Modes(); err != nil {
		return oerror.New("simulation: %v", err)
	}

	c.pipeline, c.conflicts = pipeline, conflicts
	return nil
}
