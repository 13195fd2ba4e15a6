// Package reqqueue implements the generator's cooperative work queue: a FIFO of GenRequests
// dispatched to typed Agents, per spec.md §4.4, ported from
// original_source/base/inc/GenRequest.h and GenRequestQueue.h.
package reqqueue

import (
	"github.com/rs/xid"

	"github.com/smoynes/forge/internal/genstate"
)

// Kind identifies which Agent should process a Request.
type Kind int

const (
	KindInstruction Kind = iota
	KindSequence
	KindState
	KindException
	KindVirtualMemory
	KindCallBack
	KindQuery
	KindStateTransition
)

// String renders the kind's name, matching the agent package naming convention.
func (k Kind) String() string {
	switch k {
	case KindInstruction:
		return "Instruction"
	case KindSequence:
		return "Sequence"
	case KindState:
		return "State"
	case KindException:
		return "Exception"
	case KindVirtualMemory:
		return "VirtualMemory"
	case KindCallBack:
		return "CallBack"
	case KindQuery:
		return "Query"
	case KindStateTransition:
		return "StateTransition"
	default:
		return "Unknown"
	}
}

// Request is one unit of work submitted to the queue. Concrete request types embed Base and add
// their own fields, mirroring GenInstructionRequest/GenSequenceRequest/etc. in the source.
type Request interface {
	ID() string
	Kind() Kind
	// AddingInstruction reports whether processing this request adds an instruction to the
	// stream -- such requests must be checked for instruction collisions before escaping.
	AddingInstruction() bool
	// DelayHandle reports whether this request may be reordered behind other prepended work.
	// Requests that must run immediately (escape-collision handling, speculative BNT) return
	// false.
	DelayHandle() bool
}

// Base supplies the bookkeeping every concrete Request embeds: a unique id and the Kind used to
// route it to an Agent.
type Base struct {
	id   string
	kind Kind
}

// NewBase creates a Base with a fresh id.
func NewBase(kind Kind) Base {
	return Base{id: xid.New().String(), kind: kind}
}

func (b Base) ID() string { return b.id }

func (b Base) Kind() Kind { return b.kind }

func (b Base) AddingInstruction() bool { return false }

func (b Base) DelayHandle() bool { return true }

// InstructionRequest asks an Agent to generate one instruction.
type InstructionRequest struct {
	Base

	InstructionID string
	Operands      map[string]uint64
}

// NewInstructionRequest creates a request to generate the named instruction.
func NewInstructionRequest(instructionID string) *InstructionRequest {
	return &InstructionRequest{
		Base:          NewBase(KindInstruction),
		InstructionID: instructionID,
		Operands:      make(map[string]uint64),
	}
}

func (r *InstructionRequest) AddingInstruction() bool { return true }

// SequenceKind names the canned instruction sequence a SequenceRequest expands into.
type SequenceKind int

const (
	SequenceLoadRegister SequenceKind = iota
	SequenceReloadRegister
	SequenceBranchToTarget
	SequenceReExecution
	SequenceBnt
)

// SequenceRequest asks an Agent to expand a multi-instruction sequence, e.g. loading a register
// to an immediate value via however many instructions that takes on the target ISA.
type SequenceRequest struct {
	Base

	Sequence SequenceKind
	Register string
	Value    uint64
}

// NewSequenceRequest creates a sequence request of the given kind.
func NewSequenceRequest(seq SequenceKind) *SequenceRequest {
	return &SequenceRequest{Base: NewBase(KindSequence), Sequence: seq}
}

func (r *SequenceRequest) AddingInstruction() bool { return true }

// VmRequestKind names the specific virtual-memory operation a VirtualMemoryRequest performs.
type VmRequestKind int

const (
	VmRequestVa VmRequestKind = iota
	VmRequestPa
	VmRequestVaForPa
	VmRequestPhysicalRegion
)

// VirtualMemoryRequest asks the virtual-memory Agent to map or translate an address, returning
// its result via Result once processed.
type VirtualMemoryRequest struct {
	Base

	VmKind VmRequestKind
	Bank   string
	Size   uint64
	Align  uint64
	VA     uint64
	PA     uint64

	Result uint64
}

// NewVirtualMemoryRequest creates a virtual-memory request of the given kind.
func NewVirtualMemoryRequest(kind VmRequestKind) *VirtualMemoryRequest {
	return &VirtualMemoryRequest{Base: NewBase(KindVirtualMemory), VmKind: kind}
}

// CallBackRequest asks the front-end to invoke a named callback, e.g. to hand back a BntNode.
type CallBackRequest struct {
	Base

	Name string
}

// NewCallBackRequest creates a callback request.
func NewCallBackRequest(name string) *CallBackRequest {
	return &CallBackRequest{Base: NewBase(KindCallBack), Name: name}
}

// EscapeCollisionRequest asks the instruction Agent to resolve an address collision immediately;
// it cannot be delayed behind other prepended requests (spec.md §4.4).
type EscapeCollisionRequest struct {
	Base
}

// NewEscapeCollisionRequest creates an escape-collision request.
func NewEscapeCollisionRequest() *EscapeCollisionRequest {
	return &EscapeCollisionRequest{Base: NewBase(KindSequence)}
}

func (r *EscapeCollisionRequest) DelayHandle() bool { return false }

// StateAction names the operation a StateRequest performs on a named generator state value,
// mirroring EGenStateActionType.
type StateAction int

const (
	StateActionPush StateAction = iota
	StateActionPop
	StateActionSet
)

// StateRequest asks the state Agent to push, pop, or set a named generator state value (e.g. a
// GenMode bit), ported from GenStateRequest. Unlike most requests it cannot be reordered behind
// other prepended work: a mode change must take effect before the instructions that follow it are
// generated.
type StateRequest struct {
	Base

	Action StateAction
	Name   string
	Value  uint64
}

// NewStateRequest creates a state request.
func NewStateRequest(action StateAction, name string, value uint64) *StateRequest {
	return &StateRequest{Base: NewBase(KindState), Action: action, Name: name, Value: value}
}

func (r *StateRequest) DelayHandle() bool { return false }

// ExceptionKind names the specific exception-agent operation an ExceptionRequest performs,
// mirroring EExceptionRequestType.
type ExceptionKind int

const (
	ExceptionHandle ExceptionKind = iota
	ExceptionSystemCall
	ExceptionUpdateHandlerInfo
)

// ExceptionRequest asks the exception Agent to handle a simulator-reported exception event (or a
// system call, or a handler-info update), ported from GenExceptionRequest/GenHandleException.
type ExceptionRequest struct {
	Base

	ExceptionType ExceptionKind
	Code          uint64
	Description   string
}

// NewExceptionRequest creates an exception request of the given kind.
func NewExceptionRequest(kind ExceptionKind) *ExceptionRequest {
	return &ExceptionRequest{Base: NewBase(KindException), ExceptionType: kind}
}

// QueryRequest asks the query Agent to look up a previously stashed DataStation value by slot,
// returning it via Result. The source has no single GenQueryRequest class -- query-style lookups
// are folded into each request's own GenRequestWithResult base -- so this is a deliberate
// simplification: one generic request type for "fetch a DataStation slot" rather than one per
// caller.
type QueryRequest struct {
	Base

	Slot genstate.Slot

	Result any
}

// NewQueryRequest creates a query request for the given DataStation slot.
func NewQueryRequest(slot genstate.Slot) *QueryRequest {
	return &QueryRequest{Base: NewBase(KindQuery), Slot: slot}
}

// StateTransitionRequest asks the state Agent to drive the PE to a target State.
type StateTransitionRequest struct {
	Base

	TargetState any
}

// NewStateTransitionRequest creates a state-transition request.
func NewStateTransitionRequest(target any) *StateTransitionRequest {
	return &StateTransitionRequest{Base: NewBase(KindStateTransition), TargetState: target}
}
