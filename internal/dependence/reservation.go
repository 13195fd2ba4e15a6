// Package dependence implements register reservation and resource-dependence tracking, ported
// from original_source/base/inc/{RegisterReserver,ReservationConstraint,ResourceDependence}.h.
package dependence

import "github.com/smoynes/forge/internal/constraint"

// Access is the kind of register access a reservation or dependence record covers.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
	AccessReadWrite
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "Read"
	case AccessWrite:
		return "Write"
	case AccessReadWrite:
		return "ReadWrite"
	default:
		return "Unknown"
	}
}

// ReserveType distinguishes why an index is reserved, so one reserver's Unreserve never clears a
// different reserver's hold on the same index (spec.md §4.5: "accumulated per (group,
// reserver_id) so multiple reservers can overlap without interfering on unreserve").
type ReserveType int

const (
	ReserveUser ReserveType = iota
	ReserveSystem
	ReserveImplementation
)

// ReservationSet tracks reserved indices for one reservation group (e.g. one register bank),
// partitioned by ReserveType, the way ReservationConstraint caches an aggregate read/write set
// alongside per-type sets so IsReserved doesn't need to walk every reserver.
type ReservationSet struct {
	readReserved  *constraint.Set
	writeReserved *constraint.Set

	readByType  map[ReserveType]*constraint.Set
	writeByType map[ReserveType]*constraint.Set
}

// NewReservationSet creates an empty reservation set.
func NewReservationSet() *ReservationSet {
	return &ReservationSet{
		readReserved:  constraint.NewSet(),
		writeReserved: constraint.NewSet(),
		readByType:    make(map[ReserveType]*constraint.Set),
		writeByType:   make(map[ReserveType]*constraint.Set),
	}
}

func (r *ReservationSet) setFor(access Access, reserveType ReserveType, write bool) *constraint.Set {
	byType := r.readByType
	if write {
		byType = r.writeByType
	}

	s, ok := byType[reserveType]
	if !ok {
		s = constraint.NewSet()
		byType[reserveType] = s
	}

	return s
}

// Reserve adds indices to the reservation for access under reserveType.
func (r *ReservationSet) Reserve(indices *constraint.Set, access Access, reserveType ReserveType) {
	if access == AccessRead || access == AccessReadWrite {
		r.setFor(access, reserveType, false).Merge(indices)
		r.readReserved.Merge(indices)
	}

	if access == AccessWrite || access == AccessReadWrite {
		r.setFor(access, reserveType, true).Merge(indices)
		r.writeReserved.Merge(indices)
	}
}

// Unreserve removes indices from reserveType's hold on access. The aggregate read/write sets are
// recomputed from what remains across every ReserveType, so a different reserver's overlapping
// hold on the same indices survives.
func (r *ReservationSet) Unreserve(indices *constraint.Set, access Access, reserveType ReserveType) {
	if access == AccessRead || access == AccessReadWrite {
		r.setFor(access, reserveType, false).Sub(indices)
		r.recompute(false)
	}

	if access == AccessWrite || access == AccessReadWrite {
		r.setFor(access, reserveType, true).Sub(indices)
		r.recompute(true)
	}
}

func (r *ReservationSet) recompute(write bool) {
	byType := r.readByType
	agg := constraint.NewSet()

	if write {
		byType = r.writeByType
	}

	for _, s := range byType {
		agg.Merge(s)
	}

	if write {
		r.writeReserved = agg
	} else {
		r.readReserved = agg
	}
}

// IsReserved reports whether any index in indices is reserved for access, by any reserver.
func (r *ReservationSet) IsReserved(indices *constraint.Set, access Access) bool {
	switch access {
	case AccessRead:
		return !r.readReserved.Intersect(indices).IsEmpty()
	case AccessWrite:
		return !r.writeReserved.Intersect(indices).IsEmpty()
	default:
		return !r.readReserved.Intersect(indices).IsEmpty() || !r.writeReserved.Intersect(indices).IsEmpty()
	}
}

// ExcludeReserved returns a copy of candidates with every index reserved for access removed.
func (r *ReservationSet) ExcludeReserved(access Access, candidates *constraint.Set) *constraint.Set {
	out := candidates.Clone()

	switch access {
	case AccessRead:
		out.Sub(r.readReserved)
	case AccessWrite:
		out.Sub(r.writeReserved)
	default:
		out.Sub(r.readReserved)
		out.Sub(r.writeReserved)
	}

	return out
}

// TryReserve speculatively reserves indices, invokes validate, and rolls the reservation back
// unless validate returns true -- the "reserve, then query, then commit-or-rollback" pattern an
// operand chooser uses to test whether a candidate index still leaves a usable pool for the rest
// of the instruction's operands before committing to it.
func (r *ReservationSet) TryReserve(indices *constraint.Set, access Access, reserveType ReserveType, validate func() bool) bool {
	r.Reserve(indices, access, reserveType)

	if validate() {
		return true
	}

	r.Unreserve(indices, access, reserveType)

	return false
}
