package policy

import (
	"fmt"

	"github.com/openfluke/loom/nn"
)

// MLP wraps a loom dense network. Weights start random, which is only useful
// for simulation smoke runs and benchmarks; real deployments export to the
// linear format instead.
type MLP struct {
	net *nn.Network
	in  int
	out int
}

// NewMLP builds a tanh MLP with the given topology.
func NewMLP(in, out, hidden, layers int) (*MLP, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("policy: mlp needs positive dimensions, got %dx%d", in, out)
	}
	if hidden <= 0 {
		hidden = 64
	}
	if layers <= 0 {
		layers = 2
	}
	net := nn.BuildSimpleNetwork(nn.SimpleNetworkConfig{
		InputSize:  in,
		HiddenSize: hidden,
		OutputSize: out,
		Activation: nn.ActivationTanh,
		InitScale:  0.2,
		NumLayers:  layers,
		LayerType:  nn.BrainDense,
		DType:      nn.DTypeFloat32,
	})
	return &MLP{net: net, in: in, out: out}, nil
}

func (m *MLP) Forward(obs []float64) []float64 {
	in := make([]float32, m.in)
	for i := 0; i < m.in && i < len(obs); i++ {
		in[i] = float32(obs[i])
	}
	// ForwardCPU's second return is the inference duration, not an error;
	// forward is contractually infallible after load.
	raw, _ := m.net.ForwardCPU(in)
	out := make([]float64, 0, m.out)
	for i := 0; i < m.out && i < len(raw); i++ {
		out = append(out, float64(raw[i]))
	}
	return out
}
