package vmem

// Attr is a bitset of architectural/implementation memory attributes carried on a Page.
type Attr uint32

// Page is a single mapped translation unit: a contiguous VA range backed by a contiguous PA range
// in one bank.
type Page struct {
	VaLo, VaHi uint64
	PaLo, PaHi uint64
	Bank       string
	Level      int
	Attrs      Attr
}

// Size returns the page's size in bytes.
func (p Page) Size() uint64 { return p.VaHi - p.VaLo + 1 }

// ContainsVa reports whether va falls within the page.
func (p Page) ContainsVa(va uint64) bool { return p.VaLo <= va && va <= p.VaHi }

// ContainsPa reports whether pa falls within the page, in the named bank.
func (p Page) ContainsPa(bank string, pa uint64) bool {
	return p.Bank == bank && p.PaLo <= pa && pa <= p.PaHi
}

// TranslateVaToPa returns the PA for va, assuming ContainsVa(va).
func (p Page) TranslateVaToPa(va uint64) uint64 {
	return p.PaLo + (va - p.VaLo)
}

// TranslatePaToVa returns the VA for pa, assuming ContainsPa(bank, pa).
func (p Page) TranslatePaToVa(pa uint64) uint64 {
	return p.VaLo + (pa - p.PaLo)
}

// PageReq carries the allocation constraints a caller attaches to MapAddressRange (spec.md §4.3).
// PagingMapper copies Attrs onto the allocated page and treats FlatMap like an explicit va: the
// page is placed at the caller's va, but its PA is allocated separately, so VA == PA is not
// ensured. ForceAlias, CanAlias and ForceNewAddr are carried but not consulted.
type PageReq struct {
	ForceAlias   bool
	FlatMap      bool
	CanAlias     bool
	ForceNewAddr bool
	Attrs        Attr
}
