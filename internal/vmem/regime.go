package vmem

import (
	"math/rand"

	"github.com/smoynes/forge/internal/memory"
)

// Regime is a named translation environment (e.g. "S-mode Sv48") that owns one paging mapper and
// one direct mapper, and activates whichever is current.
type Regime struct {
	name string
	bank *memory.Bank
	rand *rand.Rand

	spaces map[Context]*AddressSpace
	direct *DirectMapper

	current Mapper
	paging  bool
}

// NewRegime creates a regime backed by bank, starting with paging enabled.
func NewRegime(name string, bank *memory.Bank, r *rand.Rand) *Regime {
	regime := &Regime{
		name:   name,
		bank:   bank,
		rand:   r,
		spaces: make(map[Context]*AddressSpace),
		direct: NewDirectMapper(bank.Name()),
		paging: true,
	}

	regime.ActivatePaging()

	return regime
}

// Name returns the regime's name.
func (r *Regime) Name() string { return r.name }

// Current returns the regime's active mapper.
func (r *Regime) Current() Mapper { return r.current }

// PagingEnabled reports whether the regime's current mapper is a PagingMapper.
func (r *Regime) PagingEnabled() bool { return r.paging }

// ActivateDirect switches the regime to its direct (flat) mapper.
func (r *Regime) ActivateDirect() {
	r.current = r.direct
	r.paging = false
}

// ActivatePaging switches the regime to its paging mapper, creating a fresh (empty-context)
// address space if one hasn't been used yet.
func (r *Regime) ActivatePaging() {
	space := r.addressSpace(Context{})
	r.current = NewPagingMapper(space)
	r.paging = true
}

// FindVmMapper returns the PagingMapper for ctx, creating its address space on first use. Two
// contexts that compare equal always resolve to the same AddressSpace instance (spec.md §8).
func (r *Regime) FindVmMapper(ctx Context) Mapper {
	return NewPagingMapper(r.addressSpace(ctx))
}

func (r *Regime) addressSpace(ctx Context) *AddressSpace {
	if space, ok := r.spaces[ctx]; ok {
		return space
	}

	space := newAddressSpace(ctx, NewRootPageTable(), r.bank, r.rand)
	r.spaces[ctx] = space

	return space
}

// ActivateContext switches the regime to the paging mapper for ctx.
func (r *Regime) ActivateContext(ctx Context) {
	r.current = r.FindVmMapper(ctx)
	r.paging = true
}
