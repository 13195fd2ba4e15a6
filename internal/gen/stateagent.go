package gen

import (
	"fmt"

	"github.com/smoynes/forge/internal/genstate"
	"github.com/smoynes/forge/internal/reqqueue"
)

// modeNames maps a StateRequest.Name to the GenMode bit it addresses, mirroring the named
// EGenStateType values GenStateRequest carries in the source.
var modeNames = map[string]genstate.Mode{
	"SimOff":           genstate.SimOff,
	"NoIss":            genstate.NoIss,
	"ReExe":            genstate.ReExe,
	"Exception":        genstate.Exception,
	"NoSkip":           genstate.NoSkip,
	"InLoop":           genstate.InLoop,
	"DelayInit":        genstate.DelayInit,
	"NoJump":           genstate.NoJump,
	"LowPower":         genstate.LowPower,
	"RecordingState":   genstate.RecordingState,
	"RestoreStateLoop": genstate.RestoreStateLoop,
	"Filler":           genstate.Filler,
	"Speculative":      genstate.Speculative,
	"AddressShortage":  genstate.AddressShortage,
	"NoEscape":         genstate.NoEscape,
}

// StateAgent applies StateRequests to a GenMode, ported from GenStateRequest's
// push/pop/set-a-named-mode-bit semantics (spec.md §4.9). Push and Pop drive the mode stack; Set
// drives the overlay, with a zero Value disabling the bit and a non-zero Value enabling it.
type StateAgent struct {
	mode *genstate.GenMode
}

// NewStateAgent creates an Agent applying requests to mode.
func NewStateAgent(mode *genstate.GenMode) *StateAgent {
	return &StateAgent{mode: mode}
}

// Process implements reqqueue.Agent.
func (a *StateAgent) Process(req reqqueue.Request, _ *reqqueue.Queue) error {
	r, ok := req.(*reqqueue.StateRequest)
	if !ok {
		return fmt.Errorf("gen: StateAgent: unexpected request type %T", req)
	}

	bit, ok := modeNames[r.Name]
	if !ok {
		return fmt.Errorf("gen: StateAgent: unknown state name %q", r.Name)
	}

	switch r.Action {
	case reqqueue.StateActionPush:
		a.mode.PushGenMode(bit)
	case reqqueue.StateActionPop:
		a.mode.PopGenMode(bit)
	case reqqueue.StateActionSet:
		if r.Value != 0 {
			a.mode.EnableGenMode(bit)
		} else {
			a.mode.DisableGenMode(bit)
		}
	default:
		return fmt.Errorf("gen: StateAgent: unknown action %v", r.Action)
	}

	return nil
}

var _ reqqueue.Agent = (*StateAgent)(nil)
