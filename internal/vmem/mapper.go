package vmem

import (
	"github.com/smoynes/forge/internal/log"
)

// DefaultPageSize is used when no page-size choice tree is configured. A real control file would
// supply a constraint.Set of candidate sizes (spec.md §4.3); this generator picks the single most
// common RISC-V Sv48 leaf size when none is given.
const DefaultPageSize = 4096

// Mapper translates between virtual and physical addresses and allocates new pages on demand. A
// VmRegime owns exactly two: a PagingMapper (used when paging is enabled) and a DirectMapper
// (used when it's off).
type Mapper interface {
	// MapAddressRange maps [va, va+size) (or a freshly chosen va, if va == AnyVa), returning the
	// page that now covers it.
	MapAddressRange(va, size uint64, isInstr bool, req PageReq) (*Page, error)

	// MapAddressRangeForPA is the reverse lookup: find or allocate a VA mapping pa in bank.
	MapAddressRangeForPA(bank string, pa, size uint64, req PageReq) (*Page, error)

	// TranslateVaToPa resolves va to a (pa, bank) pair.
	TranslateVaToPa(va uint64) (pa uint64, bank string, err error)

	// TranslatePaToVa resolves (bank, pa) back to a va.
	TranslatePaToVa(bank string, pa uint64) (va uint64, err error)
}

// AnyVa requests that MapAddressRange choose a fresh VA rather than use a caller-supplied one.
const AnyVa = ^uint64(0)

// PagingMapper implements Mapper over one AddressSpace, allocating pages on demand from its bank.
type PagingMapper struct {
	space *AddressSpace
	log   *log.Logger
}

// NewPagingMapper wraps space as a Mapper.
func NewPagingMapper(space *AddressSpace) *PagingMapper {
	return &PagingMapper{space: space, log: log.DefaultLogger()}
}

func (m *PagingMapper) MapAddressRange(va, size uint64, isInstr bool, req PageReq) (*Page, error) {
	if va != AnyVa {
		if p, ok := m.space.root.Lookup(va); ok && p.ContainsVa(va+size-1) {
			return p, nil
		}
	}

	pageSize := uint64(DefaultPageSize)
	for pageSize < size {
		pageSize *= 2
	}

	var allocVa uint64

	var err error

	switch {
	case req.FlatMap:
		allocVa = va
		m.space.vaGen.Claim(allocVa, pageSize)
	case va != AnyVa:
		allocVa = va
		m.space.vaGen.Claim(allocVa, pageSize)
	default:
		allocVa, err = m.space.vaGen.Generate(pageSize, pageSize-1)
		if err != nil {
			return nil, err
		}
	}

	pa, err := m.allocatePA(pageSize, req)
	if err != nil {
		return nil, err
	}

	page := &Page{
		VaLo:  allocVa,
		VaHi:  allocVa + pageSize - 1,
		PaLo:  pa,
		PaHi:  pa + pageSize - 1,
		Bank:  m.space.bank.Name(),
		Attrs: req.Attrs,
	}

	m.space.root.Insert(page)
	m.space.usable.AddRange(page.VaLo, page.VaHi)

	m.log.Debug("mapped page", "va", page.VaLo, "pa", page.PaLo, "size", pageSize, "instr", isInstr)

	return page, nil
}

func (m *PagingMapper) allocatePA(size uint64, req PageReq) (uint64, error) {
	var candidates = m.space.bank.Free().Clone().AlignWithSize(size-1, size)
	if candidates.IsEmpty() {
		return 0, ErrMappingFailed
	}

	pa := candidates.Elements()[0].Lo

	if err := m.space.bank.Reserve(pa, size); err != nil {
		return 0, err
	}

	return pa, nil
}

func (m *PagingMapper) MapAddressRangeForPA(bank string, pa, size uint64, req PageReq) (*Page, error) {
	if p, ok := m.space.root.LookupPa(bank, pa); ok {
		return p, nil
	}

	va, err := m.space.vaGen.Generate(size, size-1)
	if err != nil {
		return nil, err
	}

	page := &Page{
		VaLo:  va,
		VaHi:  va + size - 1,
		PaLo:  pa,
		PaHi:  pa + size - 1,
		Bank:  bank,
		Attrs: req.Attrs,
	}

	m.space.root.Insert(page)
	m.space.usable.AddRange(page.VaLo, page.VaHi)

	return page, nil
}

func (m *PagingMapper) TranslateVaToPa(va uint64) (uint64, string, error) {
	p, ok := m.space.root.Lookup(va)
	if !ok {
		return 0, "", ErrNoMapping
	}

	return p.TranslateVaToPa(va), p.Bank, nil
}

func (m *PagingMapper) TranslatePaToVa(bank string, pa uint64) (uint64, error) {
	p, ok := m.space.root.LookupPa(bank, pa)
	if !ok {
		return 0, ErrNoMapping
	}

	return p.TranslatePaToVa(pa), nil
}

// DirectMapper implements Mapper with VA == PA, used when a regime has paging disabled.
type DirectMapper struct {
	bank string
}

// NewDirectMapper creates a flat, identity-mapped Mapper over bank.
func NewDirectMapper(bank string) *DirectMapper {
	return &DirectMapper{bank: bank}
}

func (d *DirectMapper) MapAddressRange(va, size uint64, _ bool, _ PageReq) (*Page, error) {
	if va == AnyVa {
		return nil, ErrMappingFailed
	}

	return &Page{VaLo: va, VaHi: va + size - 1, PaLo: va, PaHi: va + size - 1, Bank: d.bank}, nil
}

func (d *DirectMapper) MapAddressRangeForPA(bank string, pa, size uint64, _ PageReq) (*Page, error) {
	return &Page{VaLo: pa, VaHi: pa + size - 1, PaLo: pa, PaHi: pa + size - 1, Bank: bank}, nil
}

func (d *DirectMapper) TranslateVaToPa(va uint64) (uint64, string, error) {
	return va, d.bank, nil
}

func (d *DirectMapper) TranslatePaToVa(_ string, pa uint64) (uint64, error) {
	return pa, nil
}
