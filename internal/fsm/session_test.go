package fsm

import (
	"testing"

	"github.com/san-kum/quadctl/internal/config"
	"github.com/san-kum/quadctl/internal/policy"
	"github.com/san-kum/quadctl/internal/robot"
)

func TestInferStacksHistoryAndFeedsBackActions(t *testing.T) {
	cfg := config.Default(2)
	cfg.Observations = []string{"actions"}
	cfg.ObservationsHistory = []int{0, 1}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	sess, err := NewSession(config.Static{"prof": cfg}, "prof")
	if err != nil {
		t.Fatal(err)
	}

	var lastInput []float64
	sess.Pol = policy.Func(func(obs []float64) []float64 {
		lastInput = append([]float64(nil), obs...)
		return []float64{0.5, -0.5}
	})

	st := robot.NewRobotState(2)
	sess.Infer(st, robot.ControlTarget{})
	if len(lastInput) != 4 {
		t.Fatalf("stacked input width = %d, want 4", len(lastInput))
	}
	// First step: no previous actions, both stacked rows are zero.
	for i, v := range lastInput {
		if v != 0 {
			t.Errorf("input[%d] = %f, want 0", i, v)
		}
	}

	sess.Infer(st, robot.ControlTarget{})
	// Second step: offset 0 carries the fed-back actions, offset 1 the
	// pre-filled zero row.
	want := []float64{0.5, -0.5, 0, 0}
	for i, v := range want {
		if lastInput[i] != v {
			t.Errorf("input[%d] = %f, want %f", i, lastInput[i], v)
		}
	}
	if sess.Steps != 2 {
		t.Errorf("steps = %d, want 2", sess.Steps)
	}
}

func TestInferEmptyPolicyOutputIsAbsent(t *testing.T) {
	cfg := testBase()
	sess, err := NewSession(config.Static{"prof": cfg}, "prof")
	if err != nil {
		t.Fatal(err)
	}
	sess.Pol = policy.Func(func(obs []float64) []float64 { return nil })

	dec := sess.Infer(robot.NewRobotState(2), robot.ControlTarget{})
	if !dec.Absent() {
		t.Error("empty policy output must decode to an absent result")
	}
	if sess.LastActions != nil {
		t.Error("absent output must not overwrite the actions feedback")
	}
}
