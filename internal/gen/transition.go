// StateTransition applies a batch state change (privilege-level switch, exception-handler entry,
// reset initialization) to the register file and PC in one call: every StateElement in the target
// State is applied in order, or the caller sees the first handler's error; nothing past it is
// touched, and elements applied before it are not rolled back. Ported from StateTransition.cc/StateTransitionManager (22KB, the largest
// single source file after ConstraintUtils and RestoreLoop) -- the Python-handler-registration
// machinery there becomes plain Go func values here, and StateElement's type hierarchy becomes one
// struct tagged by StateElementType.
package gen

import (
	"errors"
	"fmt"

	"github.com/smoynes/forge/internal/genstate"
	"github.com/smoynes/forge/internal/log"
	"github.com/smoynes/forge/internal/register"
	"github.com/smoynes/forge/internal/reqqueue"
)

// StateElementType names the kind of architectural state one StateElement carries.
type StateElementType string

const (
	StateElemGPR            StateElementType = "GPR"
	StateElemSystemRegister StateElementType = "SystemRegister"
	StateElemPC             StateElementType = "PC"
	StateElemVector         StateElementType = "Vector"
	StateElemPredicate      StateElementType = "Predicate"
	StateElemMemory         StateElementType = "Memory"
)

// naturalOrder is the order StateElements are processed in when no explicit order is given,
// mirroring the source's EStateElementType enumeration order.
var naturalOrder = []StateElementType{
	StateElemGPR, StateElemSystemRegister, StateElemPC, StateElemVector, StateElemPredicate, StateElemMemory,
}

// StateElement is one piece of state a State transition touches: a named register (or PC, or a
// memory location) and the value/mask to set it to.
type StateElement struct {
	Type  StateElementType
	Name  string
	Value uint64
	Mask  uint64
}

// State is an ordered bag of StateElements to apply as one transition, ported from State.h's
// GetStateElements list.
type State struct {
	Elements []StateElement
}

// TransitionType names the circumstance driving a transition (reset initialization, an explicit
// front-end request, an exception-handler context switch, ...), used to select which handler set
// applies.
type TransitionType string

// Handler applies one StateElement's worth of state, writing through regs/pc.
type Handler func(elem StateElement, regs *register.Arena, pc *genstate.GenPC) error

// ErrNoHandler is returned when TransitionToState encounters a StateElementType with neither a
// type-specific handler registered for the TransitionType nor a default handler.
var ErrNoHandler = errors.New("gen: no handler registered for state element type")

// TransitionManager holds the per-TransitionType and default StateElementType handler tables and
// applies States against a register arena and PC, ported from StateTransitionManager.
type TransitionManager struct {
	handlers map[TransitionType]map[StateElementType]Handler
	defaults map[StateElementType]Handler
	order    map[TransitionType][]StateElementType

	regs *register.Arena
	pc   *genstate.GenPC
	log  *log.Logger
}

// Option configures a TransitionManager at construction.
type Option func(*TransitionManager)

// WithLogger attaches a logger to the manager.
func WithLogger(l *log.Logger) Option {
	return func(m *TransitionManager) { m.log = l }
}

// NewTransitionManager creates a TransitionManager applying states to regs and pc.
func NewTransitionManager(regs *register.Arena, pc *genstate.GenPC, opts ...Option) *TransitionManager {
	m := &TransitionManager{
		handlers: make(map[TransitionType]map[StateElementType]Handler),
		defaults: make(map[StateElementType]Handler),
		order:    make(map[TransitionType][]StateElementType),
		regs:     regs,
		pc:       pc,
		log:      log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RegisterHandler assigns handler to handle elemType StateElements during a transType transition,
// overriding any default handler for that element type.
func (m *TransitionManager) RegisterHandler(transType TransitionType, elemType StateElementType, handler Handler) {
	set, ok := m.handlers[transType]
	if !ok {
		set = make(map[StateElementType]Handler)
		m.handlers[transType] = set
	}

	set[elemType] = handler
}

// SetDefaultHandler assigns handler to handle elemType StateElements for any TransitionType that
// doesn't have its own handler registered for that type.
func (m *TransitionManager) SetDefaultHandler(elemType StateElementType, handler Handler) {
	m.defaults[elemType] = handler
}

// SetDefaultOrder records the StateElementType processing order used when TransitionToState isn't
// given an explicit one.
func (m *TransitionManager) SetDefaultOrder(transType TransitionType, order []StateElementType) {
	m.order[transType] = order
}

func (m *TransitionManager) resolveOrder(transType TransitionType, order []StateElementType) []StateElementType {
	if len(order) > 0 {
		return order
	}

	if o, ok := m.order[transType]; ok {
		return o
	}

	return naturalOrder
}

func (m *TransitionManager) handlerFor(transType TransitionType, elemType StateElementType) (Handler, bool) {
	if set, ok := m.handlers[transType]; ok {
		if h, ok := set[elemType]; ok {
			return h, true
		}
	}

	h, ok := m.defaults[elemType]

	return h, ok
}

// TransitionToState applies every element of state in order, selecting each one's handler by
// transType first falling back to the type-default handler. order, if non-empty, overrides the
// processing order; otherwise the manager's recorded default order (or naturalOrder) applies.
// The first handler to fail stops the transition; elements already applied are not rolled back --
// callers driving a transition that must be all-or-nothing are expected to validate before
// calling, the way the source's ProcessStateElements assumes a pre-validated target State.
func (m *TransitionManager) TransitionToState(state *State, transType TransitionType, order []StateElementType) error {
	byType := make(map[StateElementType][]StateElement)
	for _, elem := range state.Elements {
		byType[elem.Type] = append(byType[elem.Type], elem)
	}

	for _, elemType := range m.resolveOrder(transType, order) {
		elems, ok := byType[elemType]
		if !ok {
			continue
		}

		handler, ok := m.handlerFor(transType, elemType)
		if !ok {
			return fmt.Errorf("%w: %s transition, %s elements", ErrNoHandler, transType, elemType)
		}

		for _, elem := range elems {
			if err := handler(elem, m.regs, m.pc); err != nil {
				return fmt.Errorf("gen: state transition %s: %s %q: %w", transType, elemType, elem.Name, err)
			}
		}

		m.log.Debug("applied state elements", "transition", transType, "elemType", elemType, "count", len(elems))
	}

	return nil
}

// TransitionTarget is the payload a StateTransitionRequest carries: the State to transition to,
// which TransitionType selects handlers, and an optional explicit processing order.
type TransitionTarget struct {
	State *State
	Type  TransitionType
	Order []StateElementType
}

// NewStateTransitionRequest creates a StateTransitionRequest carrying target.
func NewStateTransitionRequest(target TransitionTarget) *reqqueue.StateTransitionRequest {
	return reqqueue.NewStateTransitionRequest(target)
}

// TransitionAgent adapts a TransitionManager to reqqueue.Agent for reqqueue.KindStateTransition
// requests.
type TransitionAgent struct {
	mgr *TransitionManager
}

// NewTransitionAgent creates an Agent applying requests through mgr.
func NewTransitionAgent(mgr *TransitionManager) *TransitionAgent {
	return &TransitionAgent{mgr: mgr}
}

// Process implements reqqueue.Agent.
func (a *TransitionAgent) Process(req reqqueue.Request, _ *reqqueue.Queue) error {
	r, ok := req.(*reqqueue.StateTransitionRequest)
	if !ok {
		return fmt.Errorf("gen: TransitionAgent: unexpected request type %T", req)
	}

	target, ok := r.TargetState.(TransitionTarget)
	if !ok {
		return fmt.Errorf("gen: TransitionAgent: unexpected target state type %T", r.TargetState)
	}

	return a.mgr.TransitionToState(target.State, target.Type, target.Order)
}

var _ reqqueue.Agent = (*TransitionAgent)(nil)
