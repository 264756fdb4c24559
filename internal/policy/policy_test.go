package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/quadctl/internal/config"
)

func TestZero(t *testing.T) {
	p := NewZero(3)
	out := p.Forward([]float64{1, 2, 3, 4})
	if len(out) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("action[%d] = %f, want 0", i, v)
		}
	}
}

func writeLinear(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLinear(t *testing.T) {
	path := writeLinear(t, `{"in":2,"out":2,"weights":[[1,0],[0,2]],"bias":[0.5,0]}`)
	p, err := LoadLinear(path, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	out := p.Forward([]float64{3, 4})
	if out[0] != 3.5 || out[1] != 8 {
		t.Errorf("got %v, want [3.5 8]", out)
	}
}

func TestLoadLinearShapeMismatch(t *testing.T) {
	path := writeLinear(t, `{"in":2,"out":2,"weights":[[1,0],[0,2]]}`)
	if _, err := LoadLinear(path, 10, 2); err == nil {
		t.Error("expected shape error")
	}
}

func TestLoadLinearRaggedWeights(t *testing.T) {
	path := writeLinear(t, `{"in":2,"out":2,"weights":[[1,0],[0]]}`)
	if _, err := LoadLinear(path, 2, 2); err == nil {
		t.Error("expected error for ragged weight rows")
	}
}

func TestLoadLinearMissingFile(t *testing.T) {
	if _, err := LoadLinear(filepath.Join(t.TempDir(), "nope.json"), 2, 2); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromSpec(t *testing.T) {
	cfg := config.Default(2)
	p, err := Load(cfg, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Forward(make([]float64, 10))) != 2 {
		t.Error("default zero policy has wrong width")
	}

	cfg.Policy.Kind = "hologram"
	if _, err := Load(cfg, 10); err == nil {
		t.Error("expected error for unknown kind")
	}

	cfg.Policy = config.PolicySpec{Kind: "linear", Path: "/does/not/exist.json"}
	if _, err := Load(cfg, 10); err == nil {
		t.Error("expected load failure for missing weight file")
	}
}
