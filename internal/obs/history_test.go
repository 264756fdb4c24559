package obs

import (
	"testing"
)

func TestHistoryOrder(t *testing.T) {
	h := NewHistory(2)
	r0 := []float64{0, 0}
	r1 := []float64{1, 1}
	r2 := []float64{2, 2}
	h.Insert(r0)
	h.Insert(r1)
	h.Insert(r2)

	out := h.Build([]int{0, 1, 2})
	want := []float64{2, 2, 1, 1, 0, 0}
	if len(out) != len(want) {
		t.Fatalf("length %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %f, want %f", i, out[i], want[i])
		}
	}
}

func TestHistoryPrefill(t *testing.T) {
	h := NewHistory(3)
	h.Insert([]float64{7})
	out := h.Build([]int{0, 1, 2, 3})
	for i, v := range out {
		if v != 7 {
			t.Errorf("slot %d not prefilled: %f", i, v)
		}
	}
}

func TestHistoryPartialFill(t *testing.T) {
	h := NewHistory(2)
	h.Insert([]float64{1})
	h.Insert([]float64{2})
	out := h.Build([]int{0, 1, 2})
	// Only two insertions; the deepest lookback repeats the oldest row.
	if out[0] != 2 || out[1] != 1 || out[2] != 1 {
		t.Errorf("got %v, want [2 1 1]", out)
	}
}

func TestHistoryEviction(t *testing.T) {
	h := NewHistory(1)
	for i := 1; i <= 5; i++ {
		h.Insert([]float64{float64(i)})
	}
	out := h.Build([]int{0, 1})
	if out[0] != 5 || out[1] != 4 {
		t.Errorf("got %v, want [5 4]", out)
	}
}

func TestHistoryCopiesRows(t *testing.T) {
	h := NewHistory(1)
	row := []float64{1}
	h.Insert(row)
	row[0] = 99
	out := h.Build([]int{0})
	if out[0] != 1 {
		t.Error("history aliased the caller's slice")
	}
}
