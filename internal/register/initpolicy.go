package register

import (
	"math/rand"

	"github.com/smoynes/forge/internal/constraint"
)

// InitPolicy decides how a register's initial value is produced, generalizing
// original_source/base/inc/RegisterInitPolicy.h's virtual InitializeRegister /
// RegisterReloadValue pair into a pair of Go functions over an Arena entry.
type InitPolicy interface {
	// Initialize assigns mask's bits of id's value for the first time.
	Initialize(a *Arena, id PhysicalID, mask uint64)

	// ReloadValue returns the value mask's bits should be reloaded to on a restore
	// (internal/restore), without re-randomizing.
	ReloadValue(a *Arena, id PhysicalID, mask uint64) uint64
}

// ZeroInitPolicy always initializes registers to zero. This is the policy for RAZ fields and any
// register the control file pins to a fixed reset value.
type ZeroInitPolicy struct{}

func (ZeroInitPolicy) Initialize(a *Arena, id PhysicalID, mask uint64) {
	a.Get(id).SetValue(0, mask)
}

func (ZeroInitPolicy) ReloadValue(a *Arena, id PhysicalID, mask uint64) uint64 {
	return a.Get(id).ResetValue(mask)
}

// RandomInitPolicy assigns a uniformly random value to uninitialized bits, the default policy
// for general-purpose registers with no architectural reset value.
type RandomInitPolicy struct {
	Rand *rand.Rand
}

func (p RandomInitPolicy) Initialize(a *Arena, id PhysicalID, mask uint64) {
	value := p.Rand.Uint64() & mask
	reg := a.Get(id)
	reg.SetValue(value, mask)
	reg.SetResetValue(value, mask)
}

func (p RandomInitPolicy) ReloadValue(a *Arena, id PhysicalID, mask uint64) uint64 {
	return a.Get(id).ResetValue(mask)
}

// ResetInitPolicy always (re-)loads the architectural reset value given at construction, for
// registers like RISC-V's misa whose bits are fixed by the implementation rather than chosen by
// the generator.
type ResetInitPolicy struct {
	Value uint64
}

func (p ResetInitPolicy) Initialize(a *Arena, id PhysicalID, mask uint64) {
	reg := a.Get(id)
	reg.SetValue(p.Value, mask)
	reg.SetResetValue(p.Value, mask)
}

func (p ResetInitPolicy) ReloadValue(a *Arena, id PhysicalID, mask uint64) uint64 {
	return p.Value & mask
}

// RandomWithValueConstraintInitPolicy assigns a uniformly random value drawn from Constraint
// rather than the full bit range, for fields the architecture or control file restricts to a
// subset of their nominal range (e.g. an MMU mode field with only a few legal encodings).
type RandomWithValueConstraintInitPolicy struct {
	Rand       *rand.Rand
	Constraint *constraint.Set
}

func (p RandomWithValueConstraintInitPolicy) Initialize(a *Arena, id PhysicalID, mask uint64) {
	value, err := p.Constraint.ChooseValue(p.Rand)
	if err != nil {
		value = 0
	}

	reg := a.Get(id)
	reg.SetValue(value, mask)
	reg.SetResetValue(value, mask)
}

func (p RandomWithValueConstraintInitPolicy) ReloadValue(a *Arena, id PhysicalID, mask uint64) uint64 {
	return a.Get(id).ResetValue(mask)
}

// CopyFromRegisterInitPolicy initializes a register's bits by copying the current value of
// another already-initialized register, for aliased or banked fields that must start equal to
// their source (e.g. a shadow copy of a CSR).
type CopyFromRegisterInitPolicy struct {
	Source PhysicalID
}

func (p CopyFromRegisterInitPolicy) Initialize(a *Arena, id PhysicalID, mask uint64) {
	value := a.Get(p.Source).Value(mask)
	reg := a.Get(id)
	reg.SetValue(value, mask)
	reg.SetResetValue(value, mask)
}

func (p CopyFromRegisterInitPolicy) ReloadValue(a *Arena, id PhysicalID, mask uint64) uint64 {
	return a.Get(id).ResetValue(mask)
}
