package dependence

import "github.com/smoynes/forge/internal/constraint"

// RegisterReserver exposes the three reservation primitives operand choosers use to avoid
// selecting a register another in-flight operand already claimed, grouped by register bank (e.g.
// "GPR", "FPR", "VECREG"), ported from RegisterReserver.h. Architecture-specific grouping
// (GetReserveGroupForOperandType et al. in the source) is the caller's responsibility here: the
// caller names its own groups directly rather than going through a virtual dispatch table.
type RegisterReserver struct {
	groups map[string]*ReservationSet
}

// NewRegisterReserver creates an empty reserver.
func NewRegisterReserver() *RegisterReserver {
	return &RegisterReserver{groups: make(map[string]*ReservationSet)}
}

func (r *RegisterReserver) group(name string) *ReservationSet {
	g, ok := r.groups[name]
	if !ok {
		g = NewReservationSet()
		r.groups[name] = g
	}

	return g
}

// Reserve reserves a single register index in group for access under reserveType.
func (r *RegisterReserver) Reserve(group string, index uint64, access Access, reserveType ReserveType) {
	r.group(group).Reserve(constraint.NewSet(constraint.Value(index)), access, reserveType)
}

// Unreserve releases a single register index in group for access under reserveType.
func (r *RegisterReserver) Unreserve(group string, index uint64, access Access, reserveType ReserveType) {
	r.group(group).Unreserve(constraint.NewSet(constraint.Value(index)), access, reserveType)
}

// IsReserved reports whether index in group is reserved for access, by any reserver.
func (r *RegisterReserver) IsReserved(group string, index uint64, access Access) bool {
	return r.group(group).IsReserved(constraint.NewSet(constraint.Value(index)), access)
}

// UsableIndexConstraint returns the subset of full not currently reserved for access in group.
func (r *RegisterReserver) UsableIndexConstraint(group string, access Access, full *constraint.Set) *constraint.Set {
	return r.group(group).ExcludeReserved(access, full)
}
