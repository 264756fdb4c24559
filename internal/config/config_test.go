package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default(12)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.NumDOFs != 12 {
		t.Errorf("expected 12 DOFs, got %d", cfg.NumDOFs)
	}
	if len(cfg.RLKp) != 12 || len(cfg.DefaultDofPos) != 12 {
		t.Error("gain vectors not sized to DOF count")
	}
}

func TestValidateDimensionMismatch(t *testing.T) {
	cfg := Default(4)
	cfg.RLKp = []float64{1, 2}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for mismatched rl_kp length")
	}

	cfg = Default(4)
	cfg.CommandsScale = []float64{1, 1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short commands_scale")
	}

	cfg = Default(4)
	cfg.WheelIndices = []int{7}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range wheel index")
	}
}

func TestValidateConvention(t *testing.T) {
	cfg := Default(2)
	cfg.Framework = "unknown"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown framework")
	}
}

func TestValidateNormalizesAngVel(t *testing.T) {
	cfg := Default(2)
	cfg.Observations = []string{"ang_vel", "gravity_vec"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Observations[0] != "ang_vel_body" {
		t.Errorf("real hardware should use body frame, got %s", cfg.Observations[0])
	}

	cfg = Default(2)
	cfg.Simulation = true
	cfg.Observations = []string{"ang_vel"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Observations[0] != "ang_vel_world" {
		t.Errorf("simulation should use world frame, got %s", cfg.Observations[0])
	}
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "go2.yaml")
	if err := Save(path, Default(12)); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "go2" {
		t.Errorf("expected profile name go2, got %s", cfg.Name)
	}
	if cfg.NumDOFs != 12 {
		t.Errorf("expected 12 DOFs, got %d", cfg.NumDOFs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadDefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mini.yaml")
	body := []byte(`
framework: isaacgym
num_of_dofs: 2
action_scale: [0.25, 0.25]
rl_kp: [20, 20]
rl_kd: [0.5, 0.5]
fixed_kp: [80, 80]
fixed_kd: [3, 3]
torque_limits: [30, 30]
default_dof_pos: [0, 0]
commands_scale: [2, 2, 0.25]
`)
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dt != DefaultDt || cfg.Decimation != DefaultDecimation {
		t.Errorf("tick defaults not applied: dt=%f decimation=%d", cfg.Dt, cfg.Decimation)
	}
	if cfg.ClipObs != DefaultClipObs {
		t.Errorf("clip_obs default not applied: %f", cfg.ClipObs)
	}
}

func TestDirProvider(t *testing.T) {
	dir := t.TempDir()
	if err := Save(filepath.Join(dir, "loco.yaml"), Default(4)); err != nil {
		t.Fatal(err)
	}
	p := NewDir(dir)
	if _, err := p.Profile("loco"); err != nil {
		t.Errorf("expected profile, got %v", err)
	}
	if _, err := p.Profile("absent"); err == nil {
		t.Error("expected error for absent profile")
	}
}

func TestStaticProvider(t *testing.T) {
	p := Static{"a": Default(2)}
	if _, err := p.Profile("a"); err != nil {
		t.Error(err)
	}
	if _, err := p.Profile("b"); err == nil {
		t.Error("expected error for unknown profile")
	}
}
