// Package bnt implements speculative branch-not-taken bookkeeping: recording a prior-execution
// state (PE state) before a speculative write so it can be rolled back, BNT nodes tracking a
// branch's taken/not-taken paths, and the hook manager letting other components register and
// later revert work done along a speculative path. Ported from
// original_source/base/inc/{BntNode,ResourcePeState,SimplePeState,BntHookManager}.h.
package bnt

import (
	"strconv"

	"github.com/smoynes/forge/internal/dependence"
	"github.com/smoynes/forge/internal/register"
)

// StateKind identifies which piece of generator state a ResourcePeState restores.
type StateKind int

const (
	StateRegister StateKind = iota
	StatePC
	StateMemory
	StateDependence
)

func (k StateKind) String() string {
	switch k {
	case StateRegister:
		return "Register"
	case StatePC:
		return "PC"
	case StateMemory:
		return "Memory"
	case StateDependence:
		return "Dependence"
	default:
		return "Unknown"
	}
}

// RecoveryTarget is the generator-wide state a ResourcePeState writes a prior value back into on
// rollback. internal/gen and internal/iss implement it over the register arena, GenPC, and memory
// banks they own.
type RecoveryTarget interface {
	RestoreRegister(bank string, id register.PhysicalID, value, mask uint64)
	RestorePC(pc uint64)
	RestoreMemory(bank string, pa uint64, data []byte)
	RestoreDependence(class string, snapshot *dependence.ResourceDependence)
}

// ResourcePeState is one saved prior value. identityKey returns a string that's equal for two
// states saving the same piece of state (same register, same PC, same memory range), which
// ResourcePeStateStack.Push uses to avoid saving the same location twice within one speculative
// frame (BntNode.h's IsDuplicated check): only the oldest save for a location matters, since
// that's the value execution must roll back to.
type ResourcePeState interface {
	Kind() StateKind
	identityKey() string
	Recover(target RecoveryTarget)
}

// RegisterPeState saves a physical register's prior value, restored through RecoveryTarget on
// rollback.
type RegisterPeState struct {
	Bank  string
	ID    register.PhysicalID
	Value uint64
	Mask  uint64
}

func (s RegisterPeState) Kind() StateKind { return StateRegister }

func (s RegisterPeState) identityKey() string {
	return "reg:" + s.Bank + ":" + strconv.FormatUint(uint64(s.ID), 10)
}

func (s RegisterPeState) Recover(target RecoveryTarget) {
	target.RestoreRegister(s.Bank, s.ID, s.Value, s.Mask)
}

// PCPeState saves the generator PC's prior value.
type PCPeState struct {
	Value uint64
}

func (s PCPeState) Kind() StateKind { return StatePC }

func (s PCPeState) identityKey() string { return "pc" }

func (s PCPeState) Recover(target RecoveryTarget) { target.RestorePC(s.Value) }

// MemoryPeState saves a byte range's prior contents in one bank.
type MemoryPeState struct {
	Bank string
	PA   uint64
	Data []byte
}

func (s MemoryPeState) Kind() StateKind { return StateMemory }

func (s MemoryPeState) identityKey() string {
	return "mem:" + s.Bank + ":" + strconv.FormatUint(s.PA, 10)
}

func (s MemoryPeState) Recover(target RecoveryTarget) {
	target.RestoreMemory(s.Bank, s.PA, s.Data)
}

// DependencePeState saves a resource-dependence snapshot for one class, restored wholesale rather
// than merged back, same as dependence.ResourceDependence.Restore.
type DependencePeState struct {
	Class    string
	Snapshot *dependence.ResourceDependence
}

func (s DependencePeState) Kind() StateKind { return StateDependence }

func (s DependencePeState) identityKey() string { return "dep:" + s.Class }

func (s DependencePeState) Recover(target RecoveryTarget) {
	target.RestoreDependence(s.Class, s.Snapshot)
}

// ResourcePeStateStack is a save stack for one resource group (e.g. "GPR", "Memory"), ported from
// ResourcePeState.h's ResourcePeStateStack.
type ResourcePeStateStack struct {
	states []ResourcePeState
	seen   map[string]bool
}

// NewResourcePeStateStack creates an empty stack.
func NewResourcePeStateStack() *ResourcePeStateStack {
	return &ResourcePeStateStack{seen: make(map[string]bool)}
}

// Push saves state, unless a save for the same location is already on the stack: the first save
// for a location holds the value execution must roll back to, so later saves of the same
// location within one speculative frame are redundant (IsDuplicated in the source).
func (s *ResourcePeStateStack) Push(state ResourcePeState) {
	key := state.identityKey()
	if s.seen[key] {
		return
	}

	s.seen[key] = true
	s.states = append(s.states, state)
}

// IsEmpty reports whether the stack holds no saved states.
func (s *ResourcePeStateStack) IsEmpty() bool { return len(s.states) == 0 }

// Len returns the number of saved states.
func (s *ResourcePeStateStack) Len() int { return len(s.states) }

// RecoverResourcePeStates pops every saved state, most-recently-pushed first, calling Recover on
// each against target. Push already guarantees one entry per location, so pop order only matters
// for bookkeeping (the stack is left empty either way); retained because the source always
// replays in push-reverse order.
func (s *ResourcePeStateStack) RecoverResourcePeStates(target RecoveryTarget) {
	for i := len(s.states) - 1; i >= 0; i-- {
		s.states[i].Recover(target)
	}

	s.states = nil
	s.seen = make(map[string]bool)
}

