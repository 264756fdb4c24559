package safety

import (
	"math"
	"testing"

	"github.com/edaniels/golog"

	"github.com/san-kum/quadctl/internal/action"
	"github.com/san-kum/quadctl/internal/config"
	"github.com/san-kum/quadctl/internal/quat"
	"github.com/san-kum/quadctl/internal/robot"
)

func testMonitor(t *testing.T) *Monitor {
	return &Monitor{
		Log:          golog.NewTestLogger(t),
		Conv:         quat.ScalarFirst,
		TorqueLimits: []float64{10, 10},
		RollLimit:    75,
		PitchLimit:   75,
	}
}

func TestCheckTorque(t *testing.T) {
	m := testMonitor(t)
	got := m.CheckTorque([]float64{5, -12})
	if len(got) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(got))
	}
	if got[0].Index != 1 || got[0].Value != -12 || got[0].Limit != 10 {
		t.Errorf("violation = %+v", got[0])
	}
}

func TestCheckTorqueClean(t *testing.T) {
	m := testMonitor(t)
	if got := m.CheckTorque([]float64{1, -1}); got != nil {
		t.Errorf("expected no violations, got %v", got)
	}
}

func TestCheckTorqueSeesDecodedRawTorque(t *testing.T) {
	cfg := config.Default(2)
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	dec := action.NewDecoder(cfg).Decode([]float64{1000, 1000}, robot.NewRobotState(2))

	m := testMonitor(t)
	m.TorqueLimits = cfg.TorqueLimits
	if got := m.CheckTorque(dec.TauRaw); len(got) != 2 {
		t.Fatalf("expected 2 violations on the unclamped torque, got %d", len(got))
	}
	// The clamped diagnostic can never trip the check; the monitor must not
	// be pointed at it.
	if got := m.CheckTorque(dec.Tau); got != nil {
		t.Errorf("clamped torque flagged: %v", got)
	}
}

func TestCheckAttitude(t *testing.T) {
	m := testMonitor(t)
	if m.CheckAttitude(quat.Identity(quat.ScalarFirst)) {
		t.Error("level attitude flagged")
	}

	// 80 degree roll about X, scalar-first.
	half := 80 * math.Pi / 180 / 2
	q := [4]float64{math.Cos(half), math.Sin(half), 0, 0}
	if !m.CheckAttitude(q) {
		t.Error("80 degree roll not flagged")
	}
}

func TestEscalateHook(t *testing.T) {
	m := testMonitor(t)
	var requested robot.Mode = -1
	m.Escalate = func(mode robot.Mode) { requested = mode }

	half := 80 * math.Pi / 180 / 2
	q := [4]float64{math.Cos(half), math.Sin(half), 0, 0}
	m.CheckAttitude(q)
	if requested != robot.ModeSitDown {
		t.Errorf("escalation requested %v, want sit_down", requested)
	}

	// Nil hook stays advisory.
	m.Escalate = nil
	m.CheckAttitude(q)
}
