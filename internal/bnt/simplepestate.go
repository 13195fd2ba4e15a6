package bnt

import "github.com/smoynes/forge/internal/register"

// SimpleRegisterState is one register's value captured by SimplePeState.SaveState.
type SimpleRegisterState struct {
	Bank  string
	ID    register.PhysicalID
	Value uint64
	Mask  uint64
}

// SimplePeState is a flat, whole-register-set snapshot, ported from SimplePeState.h. Unlike
// ResourcePeStateStack it isn't a push/pop log of individual writes: it captures every register
// named at SaveState time in one shot and restores all of them together, the shape
// internal/restore's loop-iteration checkpoints need.
type SimplePeState struct {
	registers []SimpleRegisterState
}

// NewSimplePeState creates an empty snapshot.
func NewSimplePeState() *SimplePeState {
	return &SimplePeState{}
}

// SaveState appends a register's current value to the snapshot. read is called once for each
// entry in ids, in order.
func (s *SimplePeState) SaveState(bank string, ids []register.PhysicalID, read func(register.PhysicalID) (value, mask uint64)) {
	for _, id := range ids {
		value, mask := read(id)
		s.registers = append(s.registers, SimpleRegisterState{Bank: bank, ID: id, Value: value, Mask: mask})
	}
}

// RestoreState writes every captured register back through target, in capture order.
func (s *SimplePeState) RestoreState(target RecoveryTarget) {
	for _, r := range s.registers {
		target.RestoreRegister(r.Bank, r.ID, r.Value, r.Mask)
	}
}

// IsEmpty reports whether the snapshot holds no registers.
func (s *SimplePeState) IsEmpty() bool { return len(s.registers) == 0 }
