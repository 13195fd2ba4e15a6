// Package register models the physical and logical register files used by the generator: an
// arena of PhysicalRegisters holding the actual storage and initialization tracking, with
// Field and Register values projecting named bit ranges and groups of physical
// registers onto that storage.
//
// The C++ source models this with a deep Object/PhysicalRegister/Register/LargeRegister/
// BankedRegister inheritance tree and raw pointers between registers and fields. Here, physical
// storage lives in one Arena keyed by a stable PhysicalID, and every other type holds IDs rather
// than pointers into it -- the same id-not-pointer shape used for requests in internal/reqqueue,
// so a register, like a request, can be copied, logged, and compared by value without aliasing
// the arena's backing array.
package register

import (
	"fmt"
	"math/rand"
)

// Kind identifies the architectural register type a PhysicalRegister belongs to.
type Kind int

const (
	KindGPR Kind = iota
	KindFPR
	KindVector
	KindCSR
	KindPC
)

func (k Kind) String() string {
	switch k {
	case KindGPR:
		return "GPR"
	case KindFPR:
		return "FPR"
	case KindVector:
		return "Vector"
	case KindCSR:
		return "CSR"
	case KindPC:
		return "PC"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Attr is a bitmask of read/write access attributes on a physical register, mirroring
// ERegAttrType (original_source/base/inc/Register.h).
type Attr uint8

const (
	AttrRead Attr = 1 << iota
	AttrWrite
	AttrHasValue
)

// ReadWrite is the default attribute set for an ordinary register.
const ReadWrite = AttrRead | AttrWrite | AttrHasValue

// PhysicalID is a stable handle into an Arena. The zero value never refers to a live register.
type PhysicalID uint32

// PhysicalRegister is the actual storage backing one architectural register: a name, type,
// current value, bit width, and the mask of bits that have been initialized so far (spec.md C2's
// "has this bit been set" tracking, needed because an uninitialized register field must not be
// read by the generator before some agent assigns it a value).
type PhysicalRegister struct {
	id    PhysicalID
	name  string
	kind  Kind
	size  uint8 // bits, 1-64
	attrs Attr

	value     uint64
	initMask  uint64 // bits that have been assigned a value
	resetVal  uint64
	resetMask uint64
}

// Mask returns the bitmask covering the register's full width.
func (p *PhysicalRegister) Mask() uint64 {
	if p.size >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << p.size) - 1
}

// Name returns the register's architectural name, e.g. "x5" or "mstatus".
func (p *PhysicalRegister) Name() string { return p.name }

// Kind returns the register's architectural type.
func (p *PhysicalRegister) Kind() Kind { return p.kind }

// Size returns the register's width in bits.
func (p *PhysicalRegister) Size() uint8 { return p.size }

// HasAttribute reports whether attr is set.
func (p *PhysicalRegister) HasAttribute(attr Attr) bool { return p.attrs&attr != 0 }

// Value returns the bits of the current value selected by mask.
func (p *PhysicalRegister) Value(mask uint64) uint64 { return p.value & mask }

// IsInitialized reports whether every bit in mask has been assigned a value.
func (p *PhysicalRegister) IsInitialized(mask uint64) bool {
	return p.initMask&mask == mask
}

// SetValue assigns value's bits selected by mask into the register, marking those bits
// initialized.
func (p *PhysicalRegister) SetValue(value, mask uint64) {
	p.value = (p.value &^ mask) | (value & mask)
	p.initMask |= mask
}

// SetResetValue records the value a BNT restore (internal/restore) should reload mask's bits to.
func (p *PhysicalRegister) SetResetValue(value, mask uint64) {
	p.resetVal = (p.resetVal &^ mask) | (value & mask)
	p.resetMask |= mask
}

// ResetValue returns the recorded reset value for mask's bits.
func (p *PhysicalRegister) ResetValue(mask uint64) uint64 { return p.resetVal & mask }

// Arena owns the storage for every physical register in a register file. It is not safe for
// concurrent use without external synchronization, the same as the generator's other per-thread
// state.
type Arena struct {
	regs     []PhysicalRegister
	byName   map[string]PhysicalID
	policies map[PhysicalID]InitPolicy
	def      InitPolicy
}

// NewArena creates an empty register arena. Registers with no policy set via SetInitPolicy use
// RandomInitPolicy by default, drawing from one arena-wide *rand.Rand seeded with 1; calling
// SetInitPolicy with a caller-seeded *rand.Rand replaces this default for that register.
func NewArena() *Arena {
	return &Arena{
		byName:   make(map[string]PhysicalID),
		policies: make(map[PhysicalID]InitPolicy),
		def:      RandomInitPolicy{Rand: rand.New(rand.NewSource(1))}, //nolint:gosec // overridden by SetInitPolicy for real generation runs.
	}
}

// SetInitPolicy assigns the InitPolicy Value consults the first time id's bits (selected by a
// later Value/EnsureInitialized call's mask) are read uninitialized.
func (a *Arena) SetInitPolicy(id PhysicalID, policy InitPolicy) {
	a.policies[id] = policy
}

// EnsureInitialized runs id's InitPolicy (the one set via SetInitPolicy, or the arena's default)
// over any of mask's bits not yet assigned a value, mirroring the source's
// RegisterInitPolicy::InitializeRegister being consulted on a register's first read
// (original_source/base/inc/RegisterInitPolicy.h). It is a no-op if mask's bits are already
// initialized.
func (a *Arena) EnsureInitialized(id PhysicalID, mask uint64) {
	reg := a.Get(id)
	if reg.IsInitialized(mask) {
		return
	}

	policy, ok := a.policies[id]
	if !ok {
		policy = a.def
	}

	policy.Initialize(a, id, mask&^reg.initMask)
}

// ReadValue is the lazily-initializing read path: it runs EnsureInitialized for mask's bits, then
// returns the (now fully initialized) value. Front-end Sequencers and Encoders should read
// register values through this rather than Get(id).Value(mask) directly, so a register's first
// read -- not just its first write -- triggers its InitPolicy.
func (a *Arena) ReadValue(id PhysicalID, mask uint64) uint64 {
	a.EnsureInitialized(id, mask)
	return a.Get(id).Value(mask)
}

// Define adds a new physical register to the arena and returns its id. It panics if name is
// already defined; register files are built once, at startup, from a static description
// (internal/config), not mutated at generation time.
func (a *Arena) Define(name string, kind Kind, size uint8, attrs Attr) PhysicalID {
	if _, exists := a.byName[name]; exists {
		panic(fmt.Sprintf("register: %q already defined", name))
	}

	id := PhysicalID(len(a.regs) + 1) // 0 stays the invalid id.
	a.regs = append(a.regs, PhysicalRegister{id: id, name: name, kind: kind, size: size, attrs: attrs})
	a.byName[name] = id

	return id
}

// Lookup resolves a register by its architectural name.
func (a *Arena) Lookup(name string) (PhysicalID, bool) {
	id, ok := a.byName[name]
	return id, ok
}

// Get returns a pointer to the physical register storage for id. It panics on an invalid id,
// matching the arena's closed-world assumption that ids only ever come from Define or Lookup.
func (a *Arena) Get(id PhysicalID) *PhysicalRegister {
	if id == 0 || int(id) > len(a.regs) {
		panic(fmt.Sprintf("register: invalid id %d", id))
	}

	return &a.regs[id-1]
}

// Len returns the number of physical registers defined.
func (a *Arena) Len() int { return len(a.regs) }
