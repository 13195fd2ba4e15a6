// Package vmem implements the generator's virtual memory system: VmRegime, VmMapper and
// VmAddressSpace, on-demand page allocation, and VA/PA translation, per spec.md §4.3.
package vmem

// Context is the ordered tuple of architectural control-register field values that defines a
// translation regime's mapping (privilege, ASID, root page table base, ...). Two contexts are
// equal iff every field is equal; Context is comparable so it can be used directly as a map key,
// the idiomatic Go substitute for the source's hand-rolled VmContext::operator==.
type Context struct {
	Privilege int
	ASID      uint32
	Root      uint64
}
