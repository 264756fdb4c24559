// Package policy treats the learned controller as an opaque function: a
// fixed-width observation vector in, one raw action per DOF out. Backends may
// fail to load or have the wrong shape, but only at mode activation; Forward
// itself never fails.
package policy

import (
	"fmt"

	"github.com/san-kum/quadctl/internal/config"
)

// Policy maps an observation (or stacked history window) to raw actions.
type Policy interface {
	Forward(obs []float64) []float64
}

// Func adapts a plain function to Policy.
type Func func(obs []float64) []float64

func (f Func) Forward(obs []float64) []float64 { return f(obs) }

// Zero always outputs zeros, which decodes to holding the default pose.
type Zero struct {
	n int
}

func NewZero(n int) Zero { return Zero{n: n} }

func (z Zero) Forward(obs []float64) []float64 {
	return make([]float64, z.n)
}

// Load resolves a profile's policy selection. inWidth is the width of the vector
// the assembler (plus history stacking) will feed the policy; shape mismatches
// are activation errors.
func Load(cfg *config.Config, inWidth int) (Policy, error) {
	switch cfg.Policy.Kind {
	case "", "zero":
		return NewZero(cfg.NumDOFs), nil
	case "linear":
		return LoadLinear(cfg.Policy.Path, inWidth, cfg.NumDOFs)
	case "mlp":
		return NewMLP(inWidth, cfg.NumDOFs, cfg.Policy.Hidden, cfg.Policy.Layers)
	}
	return nil, fmt.Errorf("policy: unknown kind %q", cfg.Policy.Kind)
}
