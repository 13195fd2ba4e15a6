package genstate

// PaWindow is a physical-address translation covering part or all of an instruction.
type PaWindow struct {
	Bank string
	Lo   uint64
	Hi   uint64
}

// GenPC stores the generator's current and previous program counters, plus a translation cache
// for the physical addresses backing the current instruction. Any PC change invalidates the
// cache; the next access must re-translate (spec.md §4.9).
type GenPC struct {
	current  uint64
	previous uint64

	cacheValid bool
	cachePage  uint64 // VA of the page the cache covers
	low        PaWindow
	high       *PaWindow // set only when the instruction crosses a page boundary
}

// NewGenPC creates a GenPC starting at pc.
func NewGenPC(pc uint64) *GenPC {
	return &GenPC{current: pc}
}

// Value returns the current PC.
func (g *GenPC) Value() uint64 { return g.current }

// Previous returns the PC before the most recent Set.
func (g *GenPC) Previous() uint64 { return g.previous }

// Set updates the PC, invalidating the translation cache.
func (g *GenPC) Set(pc uint64) {
	g.previous = g.current
	g.current = pc
	g.cacheValid = false
	g.high = nil
}

// Cached reports whether the translation cache is valid for the current PC's page, returning the
// cached windows if so.
func (g *GenPC) Cached(pageOf func(uint64) uint64) (low PaWindow, high *PaWindow, ok bool) {
	if !g.cacheValid || g.cachePage != pageOf(g.current) {
		return PaWindow{}, nil, false
	}

	return g.low, g.high, true
}

// FillCache records the translation for the current instruction, covering a second page's window
// when the instruction crosses a page boundary.
func (g *GenPC) FillCache(pageOf func(uint64) uint64, low PaWindow, high *PaWindow) {
	g.cacheValid = true
	g.cachePage = pageOf(g.current)
	g.low = low
	g.high = high
}
