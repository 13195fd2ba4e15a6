package gen

import (
	"fmt"

	"github.com/smoynes/forge/internal/memory"
	"github.com/smoynes/forge/internal/reqqueue"
	"github.com/smoynes/forge/internal/vmem"
)

// VirtualMemoryAgent resolves VirtualMemoryRequests against a vmem.Mapper, ported from
// GenVirtualMemoryAgent's va/pa/va-for-pa/physical-region dispatch (spec.md §4.3). A
// VmRequestPhysicalRegion request reserves a PA range directly in its bank rather than mapping a
// VA for it -- the source's GenPhysicalRegionRequest is used for MMIO-style regions the generator
// never addresses virtually.
type VirtualMemoryAgent struct {
	mapper vmem.Mapper
	banks  map[string]*memory.Bank
}

// NewVirtualMemoryAgent creates an Agent resolving requests through mapper, with direct
// physical-region reservations falling to the matching bank in banks.
func NewVirtualMemoryAgent(mapper vmem.Mapper, banks map[string]*memory.Bank) *VirtualMemoryAgent {
	return &VirtualMemoryAgent{mapper: mapper, banks: banks}
}

// Process implements reqqueue.Agent.
func (a *VirtualMemoryAgent) Process(req reqqueue.Request, _ *reqqueue.Queue) error {
	r, ok := req.(*reqqueue.VirtualMemoryRequest)
	if !ok {
		return fmt.Errorf("gen: VirtualMemoryAgent: unexpected request type %T", req)
	}

	switch r.VmKind {
	case reqqueue.VmRequestVa:
		page, err := a.mapper.MapAddressRange(r.VA, r.Size, false, vmem.PageReq{})
		if err != nil {
			return fmt.Errorf("gen: map address range: %w", err)
		}

		r.Result = page.VaLo

	case reqqueue.VmRequestPa:
		page, err := a.mapper.MapAddressRangeForPA(r.Bank, r.PA, r.Size, vmem.PageReq{})
		if err != nil {
			return fmt.Errorf("gen: map address range for pa: %w", err)
		}

		r.Result = page.VaLo

	case reqqueue.VmRequestVaForPa:
		va, err := a.mapper.TranslatePaToVa(r.Bank, r.PA)
		if err != nil {
			return fmt.Errorf("gen: translate pa to va: %w", err)
		}

		r.Result = va

	case reqqueue.VmRequestPhysicalRegion:
		bank, ok := a.banks[r.Bank]
		if !ok {
			return fmt.Errorf("gen: VirtualMemoryAgent: unknown bank %q", r.Bank)
		}

		if err := bank.Reserve(r.PA, r.Size); err != nil {
			return fmt.Errorf("gen: reserve physical region: %w", err)
		}

		r.Result = r.PA

	default:
		return fmt.Errorf("gen: VirtualMemoryAgent: unknown request kind %v", r.VmKind)
	}

	return nil
}

var _ reqqueue.Agent = (*VirtualMemoryAgent)(nil)
