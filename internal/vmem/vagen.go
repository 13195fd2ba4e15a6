package vmem

import (
	"math/rand"

	"github.com/smoynes/forge/internal/constraint"
)

// VaGenerator synthesizes a fresh virtual address for MapAddressRange when no existing mapping
// can be reused, ported from original_source/base/inc/VaGenerator.h.
type VaGenerator struct {
	free *constraint.Set // VAs not yet claimed by any page
	rand *rand.Rand
}

// NewVaGenerator creates a generator over the given usable VA space.
func NewVaGenerator(usable *constraint.Set, r *rand.Rand) *VaGenerator {
	return &VaGenerator{free: usable.Clone(), rand: r}
}

// Generate picks a size-byte-aligned range of size free VA bytes and claims it.
func (g *VaGenerator) Generate(size uint64, alignMask uint64) (uint64, error) {
	candidates := g.free.Clone().AlignWithSize(alignMask, size)
	if candidates.IsEmpty() {
		return 0, ErrMappingFailed
	}

	va, err := candidates.ChooseValue(g.rand)
	if err != nil {
		return 0, ErrMappingFailed
	}

	g.free.Sub(constraint.NewSet(constraint.Range(va, va+size-1)))

	return va, nil
}

// Claim removes [va, va+size) from the free space, used when a VA is supplied by the caller
// (an explicit va, or a FlatMap request) rather than chosen by Generate.
func (g *VaGenerator) Claim(va, size uint64) {
	g.free.Sub(constraint.NewSet(constraint.Range(va, va+size-1)))
}
