package telemetry

import (
	"sync"

	"github.com/guptarohit/asciigraph"
)

const sparkCapacity = 200

// Sparkline holds a sliding window of recent samples and renders them as a
// small terminal chart.
type Sparkline struct {
	mu      sync.Mutex
	caption string
	samples []float64
}

func NewSparkline(caption string) *Sparkline {
	return &Sparkline{caption: caption}
}

func (s *Sparkline) Push(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, v)
	if len(s.samples) > sparkCapacity {
		s.samples = s.samples[len(s.samples)-sparkCapacity:]
	}
}

// Render plots the window. Fewer than two samples render as an empty string.
func (s *Sparkline) Render() string {
	s.mu.Lock()
	data := append([]float64(nil), s.samples...)
	s.mu.Unlock()

	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(4),
		asciigraph.Width(60),
		asciigraph.Caption(s.caption))
}
