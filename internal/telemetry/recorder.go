// Package telemetry records control-loop traces for offline analysis and
// renders small terminal charts of recent joint activity.
package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/san-kum/quadctl/internal/robot"
)

// Recorder buffers one row per inference step: the calibrated torque, the
// estimated torque, the measured and target joint positions and the measured
// joint velocities, one column group per degree of freedom.
type Recorder struct {
	mu   sync.Mutex
	n    int
	rows [][]float64
}

func NewRecorder(n int) *Recorder {
	return &Recorder{n: n}
}

// Record captures one step. tauCal is the torque implied by the current
// position target and gains; a nil tauCal records zeros.
func (r *Recorder) Record(st robot.RobotState, cmd *robot.JointCommand, tauCal []float64) {
	row := make([]float64, 0, 5*r.n)
	for i := 0; i < r.n; i++ {
		v := 0.0
		if tauCal != nil {
			v = tauCal[i]
		}
		row = append(row, v)
	}
	row = append(row, st.TauEst...)
	row = append(row, st.Q...)
	row = append(row, cmd.Q...)
	row = append(row, st.DQ...)

	r.mu.Lock()
	r.rows = append(r.rows, row)
	r.mu.Unlock()
}

// Len reports the number of recorded steps.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// Save writes the buffered trace as CSV and clears the buffer.
func (r *Recorder) Save(path string) error {
	r.mu.Lock()
	rows := r.rows
	r.rows = nil
	r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := make([]string, 0, 5*r.n)
	for _, group := range []string{"tau_cal", "tau_est", "joint_pos", "joint_pos_target", "joint_vel"} {
		for i := 0; i < r.n; i++ {
			header = append(header, fmt.Sprintf("%s_%d", group, i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}
