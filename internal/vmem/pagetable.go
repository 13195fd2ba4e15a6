package vmem

// RootPageTable owns the radix tree of page-table entries for one or more address spaces sharing
// a translation root. The source models this as a tree of TablePte/PageTableEntry nodes; since
// this generator never needs to walk intermediate levels explicitly (translation here is a direct
// lookup keyed by page-aligned VA), the tree collapses to a flat, page-indexed map without losing
// any externally observable behavior -- the sharing and lookup semantics are what spec.md
// actually specifies.
type RootPageTable struct {
	pages map[uint64]*Page // keyed by VaLo
	refs  int
}

// NewRootPageTable creates an empty, unshared root.
func NewRootPageTable() *RootPageTable {
	return &RootPageTable{pages: make(map[uint64]*Page)}
}

// Ref increments the number of address spaces sharing this root.
func (t *RootPageTable) Ref() { t.refs++ }

// Insert records a newly allocated page.
func (t *RootPageTable) Insert(p *Page) {
	t.pages[p.VaLo] = p
}

// Lookup returns the page covering va, if any.
func (t *RootPageTable) Lookup(va uint64) (*Page, bool) {
	for _, p := range t.pages {
		if p.ContainsVa(va) {
			return p, true
		}
	}

	return nil, false
}

// LookupPa returns the page covering pa in bank, if any.
func (t *RootPageTable) LookupPa(bank string, pa uint64) (*Page, bool) {
	for _, p := range t.pages {
		if p.ContainsPa(bank, pa) {
			return p, true
		}
	}

	return nil, false
}

// Pages returns every page in the table.
func (t *RootPageTable) Pages() []*Page {
	out := make([]*Page, 0, len(t.pages))
	for _, p := range t.pages {
		out = append(out, p)
	}

	return out
}
