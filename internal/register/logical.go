package register

// Register is a named, addressable logical register backed by one or more physical registers.
// The common case -- a GPR or CSR -- is backed by exactly one. LargeRegister (vector/SIMD-class
// registers wider than 64 bits) composes several physical registers, numbered low to high.
type Register struct {
	name   string
	kind   Kind
	physID []PhysicalID
}

// NewRegister wraps a single physical register as a logical Register.
func NewRegister(name string, kind Kind, phys PhysicalID) *Register {
	return &Register{name: name, kind: kind, physID: []PhysicalID{phys}}
}

// NewLargeRegister composes several physical registers, in order from least to most significant,
// into a single logical register wider than 64 bits (e.g. a 128-bit vector register built from
// two 64-bit physical halves).
func NewLargeRegister(name string, kind Kind, phys ...PhysicalID) *Register {
	regs := make([]PhysicalID, len(phys))
	copy(regs, phys)

	return &Register{name: name, kind: kind, physID: regs}
}

// Name returns the register's architectural name.
func (r *Register) Name() string { return r.name }

// Kind returns the register's architectural type.
func (r *Register) Kind() Kind { return r.kind }

// Width returns the number of 64-bit-or-narrower physical registers backing this logical
// register.
func (r *Register) Width() int { return len(r.physID) }

// Physical returns the i-th backing physical register's id, least significant first.
func (r *Register) Physical(i int) PhysicalID { return r.physID[i] }

// Value reads the full value of a single-physical-register Register. It panics if called on a
// LargeRegister (Width() > 1); use PhysicalValue for those.
func (r *Register) Value(a *Arena) uint64 {
	if len(r.physID) != 1 {
		panic("register: Value called on a multi-word register; use PhysicalValue")
	}

	p := a.Get(r.physID[0])

	return p.Value(p.Mask())
}

// SetValue writes the full value of a single-physical-register Register.
func (r *Register) SetValue(a *Arena, value uint64) {
	if len(r.physID) != 1 {
		panic("register: SetValue called on a multi-word register; use SetPhysicalValue")
	}

	p := a.Get(r.physID[0])
	p.SetValue(value, p.Mask())
}

// PhysicalValue reads the i-th physical word of a (possibly large) register.
func (r *Register) PhysicalValue(a *Arena, i int) uint64 {
	p := a.Get(r.physID[i])
	return p.Value(p.Mask())
}

// SetPhysicalValue writes the i-th physical word of a (possibly large) register.
func (r *Register) SetPhysicalValue(a *Arena, i int, value uint64) {
	p := a.Get(r.physID[i])
	p.SetValue(value, p.Mask())
}

// IsInitialized reports whether every backing physical register is fully initialized.
func (r *Register) IsInitialized(a *Arena) bool {
	for _, id := range r.physID {
		p := a.Get(id)
		if !p.IsInitialized(p.Mask()) {
			return false
		}
	}

	return true
}

// Bank is a named group of logical registers that share the same architectural role but are
// selected between by some piece of processor state -- e.g. RISC-V's two stack-pointer shadow
// registers under different privilege levels. BankedRegister (original_source) ties this
// selection to a notification from the owning register file; here it's a plain function the
// caller supplies, since the generator already threads current privilege/mode state explicitly
// rather than through an observer pattern.
type Bank struct {
	name     string
	regs     []*Register
	selectFn func() int
}

// NewBank creates a bank of regs, selected among by sel.
func NewBank(name string, sel func() int, regs ...*Register) *Bank {
	rs := make([]*Register, len(regs))
	copy(rs, regs)

	return &Bank{name: name, regs: rs, selectFn: sel}
}

// Name returns the bank's name.
func (b *Bank) Name() string { return b.name }

// Active returns the currently selected register in the bank.
func (b *Bank) Active() *Register {
	return b.regs[b.selectFn()]
}
