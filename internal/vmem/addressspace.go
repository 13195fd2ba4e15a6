package vmem

import (
	"math/rand"

	"github.com/smoynes/forge/internal/constraint"
	"github.com/smoynes/forge/internal/memory"
)

// AddressSpace is one translation regime's VA space: a Context, its own RootPageTable (Regime
// returns the same AddressSpace for equal contexts, which is how they share pages), and the bank
// its pages are allocated from.
type AddressSpace struct {
	ctx  Context
	root *RootPageTable
	bank *memory.Bank

	vaGen *VaGenerator

	// usable is the per-intent ConstraintSet of VA ranges this address space has actually mapped
	// (spec.md §4.3: newly allocated pages push their VA range into this set).
	usable *constraint.Set
}

// newAddressSpace creates a fresh address space over bank, with the full 48-bit VA range
// available to the generator.
func newAddressSpace(ctx Context, root *RootPageTable, bank *memory.Bank, r *rand.Rand) *AddressSpace {
	fullVa := constraint.NewSet(constraint.Range(0, uint64(1)<<48-1))

	return &AddressSpace{
		ctx:    ctx,
		root:   root,
		bank:   bank,
		vaGen:  NewVaGenerator(fullVa, r),
		usable: constraint.NewSet(),
	}
}

// Context returns the address space's translation context.
func (a *AddressSpace) Context() Context { return a.ctx }

// Usable returns the VA ranges this address space has mapped so far.
func (a *AddressSpace) Usable() *constraint.Set { return a.usable }

// Pages returns every page owned by this address space's root.
func (a *AddressSpace) Pages() []*Page { return a.root.Pages() }
