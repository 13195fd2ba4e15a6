package bnt

// Attr is a bitset of a branch's static and runtime-observed attributes, mirroring BntNode.h's
// attribute bits (Taken, Conditional, Accurate).
type Attr uint8

const (
	// AttrTaken records the predicted direction: set if the branch is predicted taken.
	AttrTaken Attr = 1 << iota
	// AttrConditional marks a conditional branch; unconditional branches never have a
	// not-taken path worth exploring.
	AttrConditional
	// AttrAccurate marks a branch whose target the generator computed exactly, as opposed to
	// one synthesized from a best-effort heuristic.
	AttrAccurate
)

// Node is the common branch-not-taken interface both BntNode and SpeculativeBntNode satisfy.
type Node interface {
	ID() uint64
	TargetAddress() uint64
	NextAddress() uint64
	Attrs() Attr
	IsConditional() bool
	IsAccurate() bool
	PathsSame() bool
	TakenPath() uint64
	NotTakenPath() uint64
	IsSpeculative() bool
	SetRealPath(addr uint64)
	RealPath() (addr uint64, ok bool)
	RecordExecution(actual uint64)
	ExecutionIsOverflow() bool
}

// BntNode records one branch instruction's taken and not-taken targets, ported from BntNode.h.
// It does not itself track speculative-path state; that's SpeculativeBntNode's job.
type BntNode struct {
	id     uint64
	target uint64
	next   uint64
	attrs  Attr

	realPath    uint64
	haveReal    bool
	reExecCount int
}

// maxReExecutions bounds how many times RecordExecution will accept a real-path observation for
// the same node before reporting overflow, guarding against a branch re-executing without its
// node ever being retired (BntNode.h's ExecutionIsOverflow).
const maxReExecutions = 1000

// NewBntNode creates a node for a branch at id, predicting target on taken and next on
// not-taken.
func NewBntNode(id uint64, target, next uint64, attrs Attr) *BntNode {
	return &BntNode{id: id, target: target, next: next, attrs: attrs}
}

func (n *BntNode) ID() uint64             { return n.id }
func (n *BntNode) TargetAddress() uint64  { return n.target }
func (n *BntNode) NextAddress() uint64    { return n.next }
func (n *BntNode) Attrs() Attr            { return n.attrs }
func (n *BntNode) IsConditional() bool    { return n.attrs&AttrConditional != 0 }
func (n *BntNode) IsAccurate() bool       { return n.attrs&AttrAccurate != 0 }
func (n *BntNode) IsSpeculative() bool    { return false }

// PathsSame reports whether the taken and not-taken targets coincide, e.g. a branch whose
// displacement happens to be zero.
func (n *BntNode) PathsSame() bool { return n.target == n.next }

// TakenPath returns the predicted-taken target address.
func (n *BntNode) TakenPath() uint64 { return n.target }

// NotTakenPath returns the fall-through (not-taken) address.
func (n *BntNode) NotTakenPath() uint64 { return n.next }

// SetRealPath records the address execution actually went to, once known.
func (n *BntNode) SetRealPath(addr uint64) {
	n.realPath = addr
	n.haveReal = true
}

// RealPath returns the recorded real path, if SetRealPath or RecordExecution has been called.
func (n *BntNode) RealPath() (uint64, bool) { return n.realPath, n.haveReal }

// RecordExecution notes that the branch actually executed to actual, incrementing the
// re-execution counter ExecutionIsOverflow reports on.
func (n *BntNode) RecordExecution(actual uint64) {
	n.SetRealPath(actual)
	n.reExecCount++
}

// ExecutionIsOverflow reports whether RecordExecution has been called more times than
// maxReExecutions, signalling a branch that the generator never retired.
func (n *BntNode) ExecutionIsOverflow() bool { return n.reExecCount > maxReExecutions }

// SpeculativeBntNode is a BntNode exploring its not-taken path speculatively: it owns one
// ResourcePeStateStack per resource group, accumulating saves as speculative instructions
// execute, so RecoverAll can roll every group back if the speculation is abandoned. Ported from
// BntNode.h's SpeculativeBntNode.
type SpeculativeBntNode struct {
	*BntNode

	stacks            map[string]*ResourcePeStateStack
	reservedTakenPath bool
	instructions      []string
}

// NewSpeculativeBntNode creates a speculative node wrapping the same fields as BntNode.
func NewSpeculativeBntNode(id uint64, target, next uint64, attrs Attr) *SpeculativeBntNode {
	return &SpeculativeBntNode{
		BntNode: NewBntNode(id, target, next, attrs),
		stacks:  make(map[string]*ResourcePeStateStack),
	}
}

// IsSpeculative always reports true for a SpeculativeBntNode.
func (n *SpeculativeBntNode) IsSpeculative() bool { return true }

// StackFor returns the save stack for group, creating it on first use.
func (n *SpeculativeBntNode) StackFor(group string) *ResourcePeStateStack {
	s, ok := n.stacks[group]
	if !ok {
		s = NewResourcePeStateStack()
		n.stacks[group] = s
	}

	return s
}

// ReserveTakenPath marks the taken-path target reserved, so no other in-flight choice picks it as
// a branch target while this node's not-taken path is still being explored.
func (n *SpeculativeBntNode) ReserveTakenPath() { n.reservedTakenPath = true }

// UnreserveTakenPath releases the reservation set by ReserveTakenPath.
func (n *SpeculativeBntNode) UnreserveTakenPath() { n.reservedTakenPath = false }

// TakenPathReserved reports whether ReserveTakenPath is currently in effect.
func (n *SpeculativeBntNode) TakenPathReserved() bool { return n.reservedTakenPath }

// RecordInstruction appends an instruction id to the list executed along this node's speculative
// path, for logging and for RecoverAll's caller to know what it's unwinding.
func (n *SpeculativeBntNode) RecordInstruction(id string) {
	n.instructions = append(n.instructions, id)
}

// Instructions returns the instruction ids recorded via RecordInstruction, in execution order.
func (n *SpeculativeBntNode) Instructions() []string { return n.instructions }

// RecoverAll recovers every resource group's save stack against target, discarding all of this
// node's speculative state (spec.md §4.6).
func (n *SpeculativeBntNode) RecoverAll(target RecoveryTarget) {
	for _, s := range n.stacks {
		s.RecoverResourcePeStates(target)
	}
}
