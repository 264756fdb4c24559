// Package config loads and validates the per-profile control configuration.
// A profile is a YAML file holding everything a learned mode needs: joint
// dimensions, gains, observation layout, scales and clip bounds. Profiles are
// immutable once loaded; the state machine fetches a fresh one from a
// [Provider] on every mode activation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/quadctl/internal/quat"
)

const (
	DefaultDt         = 0.002
	DefaultDecimation = 4
	DefaultClipObs    = 100.0
)

// PolicySpec selects the policy backend loaded at mode activation.
type PolicySpec struct {
	Kind   string `yaml:"kind"` // "zero", "linear" or "mlp"
	Path   string `yaml:"path"`
	Hidden int    `yaml:"hidden"`
	Layers int    `yaml:"layers"`
}

// Config is one immutable control profile.
type Config struct {
	Name string `yaml:"-"`

	Framework  string `yaml:"framework"` // quaternion scalar ordering, see quat.ParseConvention
	Simulation bool   `yaml:"simulation"`

	Dt         float64 `yaml:"dt"`
	Decimation int     `yaml:"decimation"`

	NumDOFs      int   `yaml:"num_of_dofs"`
	WheelIndices []int `yaml:"wheel_indices"`

	Observations        []string `yaml:"observations"`
	ObservationsHistory []int    `yaml:"observations_history"`
	ClipObs             float64  `yaml:"clip_obs"`

	ActionScale      []float64 `yaml:"action_scale"`
	ClipActionsLower []float64 `yaml:"clip_actions_lower"`
	ClipActionsUpper []float64 `yaml:"clip_actions_upper"`

	LinVelScale   float64   `yaml:"lin_vel_scale"`
	AngVelScale   float64   `yaml:"ang_vel_scale"`
	DofPosScale   float64   `yaml:"dof_pos_scale"`
	DofVelScale   float64   `yaml:"dof_vel_scale"`
	CommandsScale []float64 `yaml:"commands_scale"`

	RLKp          []float64 `yaml:"rl_kp"`
	RLKd          []float64 `yaml:"rl_kd"`
	FixedKp       []float64 `yaml:"fixed_kp"`
	FixedKd       []float64 `yaml:"fixed_kd"`
	TorqueLimits  []float64 `yaml:"torque_limits"`
	DefaultDofPos []float64 `yaml:"default_dof_pos"`

	RollThreshold  float64 `yaml:"roll_threshold"`  // degrees
	PitchThreshold float64 `yaml:"pitch_threshold"` // degrees

	Policy PolicySpec `yaml:"policy"`
}

// Default returns a valid profile for an n-DOF robot with conservative gains.
func Default(n int) *Config {
	return &Config{
		Name:       "default",
		Framework:  "isaacsim",
		Dt:         DefaultDt,
		Decimation: DefaultDecimation,
		NumDOFs:    n,
		Observations: []string{
			"ang_vel", "gravity_vec", "commands", "dof_pos", "dof_vel", "actions",
		},
		ClipObs:        DefaultClipObs,
		ActionScale:    repeat(0.25, n),
		LinVelScale:    2.0,
		AngVelScale:    0.25,
		DofPosScale:    1.0,
		DofVelScale:    0.05,
		CommandsScale:  []float64{2.0, 2.0, 0.25},
		RLKp:           repeat(20, n),
		RLKd:           repeat(0.5, n),
		FixedKp:        repeat(80, n),
		FixedKd:        repeat(3, n),
		TorqueLimits:   repeat(33.5, n),
		DefaultDofPos:  make([]float64, n),
		RollThreshold:  75,
		PitchThreshold: 75,
		Policy:         PolicySpec{Kind: "zero"},
	}
}

func repeat(v float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// Load reads a profile from path and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Dt:         DefaultDt,
		Decimation: DefaultDecimation,
		ClipObs:    DefaultClipObs,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the profile as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Period is the control-task period.
func (c *Config) Period() time.Duration {
	return time.Duration(c.Dt * float64(time.Second))
}

// SlowPeriod is the inference-task period, Dt stretched by the decimation.
func (c *Config) SlowPeriod() time.Duration {
	return time.Duration(c.Dt * float64(c.Decimation) * float64(time.Second))
}

// Convention returns the parsed quaternion ordering.
func (c *Config) Convention() (quat.Convention, error) {
	return quat.ParseConvention(c.Framework)
}

// Wheels returns the wheel DOF index set.
func (c *Config) Wheels() map[int]bool {
	w := make(map[int]bool, len(c.WheelIndices))
	for _, i := range c.WheelIndices {
		w[i] = true
	}
	return w
}

// Validate checks structural invariants and normalizes the frame-dependent
// ang_vel observation term: real hardware reports angular velocity in the
// body frame already, simulators report it in the world frame.
func (c *Config) Validate() error {
	if c.NumDOFs <= 0 {
		return fmt.Errorf("num_of_dofs must be positive, got %d", c.NumDOFs)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Decimation < 1 {
		return fmt.Errorf("decimation must be >= 1, got %d", c.Decimation)
	}
	if c.ClipObs <= 0 {
		return fmt.Errorf("clip_obs must be positive, got %f", c.ClipObs)
	}
	if _, err := c.Convention(); err != nil {
		return err
	}
	for name, s := range map[string][]float64{
		"action_scale":    c.ActionScale,
		"rl_kp":           c.RLKp,
		"rl_kd":           c.RLKd,
		"fixed_kp":        c.FixedKp,
		"fixed_kd":        c.FixedKd,
		"torque_limits":   c.TorqueLimits,
		"default_dof_pos": c.DefaultDofPos,
	} {
		if len(s) != c.NumDOFs {
			return fmt.Errorf("%s has %d entries, want %d", name, len(s), c.NumDOFs)
		}
	}
	if len(c.CommandsScale) != 3 {
		return fmt.Errorf("commands_scale has %d entries, want 3", len(c.CommandsScale))
	}
	if (len(c.ClipActionsLower) == 0) != (len(c.ClipActionsUpper) == 0) {
		return fmt.Errorf("clip_actions_lower and clip_actions_upper must be set together")
	}
	if len(c.ClipActionsLower) != 0 && len(c.ClipActionsLower) != c.NumDOFs {
		return fmt.Errorf("clip_actions bounds have %d entries, want %d", len(c.ClipActionsLower), c.NumDOFs)
	}
	for _, i := range c.WheelIndices {
		if i < 0 || i >= c.NumDOFs {
			return fmt.Errorf("wheel index %d out of range [0,%d)", i, c.NumDOFs)
		}
	}
	for _, off := range c.ObservationsHistory {
		if off < 0 {
			return fmt.Errorf("history offset %d is negative", off)
		}
	}
	for i, term := range c.Observations {
		if term == "ang_vel" {
			if c.Simulation {
				c.Observations[i] = "ang_vel_world"
			} else {
				c.Observations[i] = "ang_vel_body"
			}
		}
	}
	return nil
}

// Provider supplies an immutable profile per name at mode activation.
// A failed lookup is a recoverable activation error, not a fatal one.
type Provider interface {
	Profile(name string) (*Config, error)
}

// Dir is a Provider reading <dir>/<name>.yaml.
type Dir struct {
	dir string
}

func NewDir(dir string) Dir { return Dir{dir: dir} }

func (d Dir) Profile(name string) (*Config, error) {
	return Load(filepath.Join(d.dir, name+".yaml"))
}

// Static is a Provider serving fixed profiles, used by tests and simulation.
type Static map[string]*Config

func (s Static) Profile(name string) (*Config, error) {
	cfg, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown profile %q", name)
	}
	return cfg, nil
}
