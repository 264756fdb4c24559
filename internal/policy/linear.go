package policy

import (
	"encoding/json"
	"fmt"
	"os"
)

// Linear is a single affine layer loaded from a JSON weight file. It is the
// portable exchange format for exported policies; anything deeper is distilled
// to it offline.
type Linear struct {
	in      int
	out     int
	weights [][]float64 // out x in
	bias    []float64   // out
}

type linearFile struct {
	In      int         `json:"in"`
	Out     int         `json:"out"`
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// LoadLinear reads a weight file and checks its shape against the expected
// input and output widths.
func LoadLinear(path string, in, out int) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}
	var f linearFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("policy: parse %s: %w", path, err)
	}
	if f.In != in || f.Out != out {
		return nil, fmt.Errorf("policy: %s has shape %dx%d, want %dx%d", path, f.Out, f.In, out, in)
	}
	if len(f.Weights) != f.Out {
		return nil, fmt.Errorf("policy: %s has %d weight rows, want %d", path, len(f.Weights), f.Out)
	}
	for i, row := range f.Weights {
		if len(row) != f.In {
			return nil, fmt.Errorf("policy: %s weight row %d has %d entries, want %d", path, i, len(row), f.In)
		}
	}
	if len(f.Bias) != 0 && len(f.Bias) != f.Out {
		return nil, fmt.Errorf("policy: %s has %d bias entries, want %d", path, len(f.Bias), f.Out)
	}
	return &Linear{in: f.In, out: f.Out, weights: f.Weights, bias: f.Bias}, nil
}

func (l *Linear) Forward(obs []float64) []float64 {
	out := make([]float64, l.out)
	for i := range out {
		sum := 0.0
		row := l.weights[i]
		for j := 0; j < l.in && j < len(obs); j++ {
			sum += row[j] * obs[j]
		}
		if i < len(l.bias) {
			sum += l.bias[i]
		}
		out[i] = sum
	}
	return out
}
