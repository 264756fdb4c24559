package fsm

import (
	"github.com/san-kum/quadctl/internal/action"
	"github.com/san-kum/quadctl/internal/config"
	"github.com/san-kum/quadctl/internal/obs"
	"github.com/san-kum/quadctl/internal/policy"
	"github.com/san-kum/quadctl/internal/robot"
)

// Session bundles the inference-side resources of one learned-mode
// activation: profile, assembler, optional history stacking, policy and
// decoder. The inference task owns it exclusively once the machine hands it
// out; the control task only creates and discards it.
type Session struct {
	Cfg  *config.Config
	Asm  *obs.Assembler
	Hist *obs.History
	Pol  policy.Policy
	Dec  *action.Decoder

	Steps       int
	LastActions []float64
}

// NewSession resolves a profile and builds its inference resources. Any
// failure here is a mode-activation error.
func NewSession(profiles config.Provider, name string) (*Session, error) {
	cfg, err := profiles.Profile(name)
	if err != nil {
		return nil, err
	}
	asm, err := obs.NewAssembler(cfg)
	if err != nil {
		return nil, err
	}
	var hist *obs.History
	width := asm.Width()
	if len(cfg.ObservationsHistory) > 0 {
		maxOff := 0
		for _, off := range cfg.ObservationsHistory {
			if off > maxOff {
				maxOff = off
			}
		}
		hist = obs.NewHistory(maxOff)
		width *= len(cfg.ObservationsHistory)
	}
	pol, err := policy.Load(cfg, width)
	if err != nil {
		return nil, err
	}
	return &Session{
		Cfg:  cfg,
		Asm:  asm,
		Hist: hist,
		Pol:  pol,
		Dec:  action.NewDecoder(cfg),
	}, nil
}

// Infer runs one inference step: assemble the observation, stack history if
// configured, invoke the policy, clip and decode. The clipped raw output is
// kept as the next step's actions feedback term. An empty policy output
// yields an absent result; the caller must not substitute zeros.
func (s *Session) Infer(st robot.RobotState, tgt robot.ControlTarget) action.Decoded {
	s.Steps++
	row := s.Asm.Assemble(st, tgt, s.LastActions, s.Steps)
	input := row
	if s.Hist != nil {
		s.Hist.Insert(row)
		input = s.Hist.Build(s.Cfg.ObservationsHistory)
	}
	raw := s.Pol.Forward(input)
	if len(raw) == 0 {
		return action.Decoded{}
	}
	raw = s.Dec.ClipActions(raw)
	s.LastActions = raw
	return s.Dec.Decode(raw, st)
}
