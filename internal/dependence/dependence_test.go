package dependence_test

import (
	"math/rand"
	"testing"

	"github.com/smoynes/forge/internal/constraint"
	"github.com/smoynes/forge/internal/dependence"
)

func TestReservationSet_MultipleReserversOverlapWithoutInterfering(t *testing.T) {
	rs := dependence.NewReservationSet()
	idx := constraint.NewSet(constraint.Value(5))

	rs.Reserve(idx, dependence.AccessWrite, dependence.ReserveUser)
	rs.Reserve(idx, dependence.AccessWrite, dependence.ReserveSystem)

	if !rs.IsReserved(idx, dependence.AccessWrite) {
		t.Fatalf("expected index 5 reserved for write")
	}

	rs.Unreserve(idx, dependence.AccessWrite, dependence.ReserveUser)

	if !rs.IsReserved(idx, dependence.AccessWrite) {
		t.Fatalf("index 5 should still be reserved via the system reserver after the user reserver releases it")
	}

	rs.Unreserve(idx, dependence.AccessWrite, dependence.ReserveSystem)

	if rs.IsReserved(idx, dependence.AccessWrite) {
		t.Fatalf("index 5 should no longer be reserved once both reservers release it")
	}
}

func TestReservationSet_ExcludeReserved(t *testing.T) {
	rs := dependence.NewReservationSet()
	full := constraint.NewSet(constraint.Range(0, 31))

	rs.Reserve(constraint.NewSet(constraint.Value(2)), dependence.AccessRead, dependence.ReserveUser)

	usable := rs.ExcludeReserved(dependence.AccessRead, full)
	if usable.Contains(2) {
		t.Fatalf("index 2 should be excluded from the usable set")
	}

	if !usable.Contains(3) {
		t.Fatalf("index 3 should remain usable")
	}
}

func TestReservationSet_TryReserveRollsBackOnFailedValidation(t *testing.T) {
	rs := dependence.NewReservationSet()
	idx := constraint.NewSet(constraint.Value(9))

	ok := rs.TryReserve(idx, dependence.AccessWrite, dependence.ReserveUser, func() bool { return false })
	if ok {
		t.Fatalf("expected TryReserve to report failure")
	}

	if rs.IsReserved(idx, dependence.AccessWrite) {
		t.Fatalf("index 9 should be rolled back after failed validation")
	}
}

func TestRegisterReserver_UsableIndexConstraint(t *testing.T) {
	r := dependence.NewRegisterReserver()
	full := constraint.NewSet(constraint.Range(0, 31))

	r.Reserve("GPR", 0, dependence.AccessReadWrite, dependence.ReserveSystem) // e.g. the zero register
	r.Reserve("GPR", 2, dependence.AccessWrite, dependence.ReserveUser)

	usable := r.UsableIndexConstraint("GPR", dependence.AccessWrite, full)
	if usable.Contains(0) || usable.Contains(2) {
		t.Fatalf("reserved indices should not be usable for write")
	}

	if !usable.Contains(1) {
		t.Fatalf("unreserved index 1 should remain usable")
	}

	if !r.IsReserved("GPR", 0, dependence.AccessRead) {
		t.Fatalf("index 0 reserved ReadWrite should also be reserved for read")
	}
}

func TestResourceDependence_WindowBoundsHistory(t *testing.T) {
	// A source bias of 1 makes a Read query always draw from the read history.
	d := dependence.NewResourceDependence(dependence.WithWindow(2), dependence.WithSourceBias(1),
		dependence.WithRand(rand.New(rand.NewSource(1))))

	d.RecordRead("GPR", 1)
	d.RecordRead("GPR", 2)
	d.RecordRead("GPR", 3)

	cs := d.GetDependenceConstraint("GPR", dependence.AccessRead)
	if cs.Contains(1) {
		t.Fatalf("oldest read (index 1) should have fallen out of the window")
	}

	if !cs.Contains(2) || !cs.Contains(3) {
		t.Fatalf("expected the two most recent reads (2, 3) in the dependence constraint")
	}
}

func TestResourceDependence_SnapshotRestore(t *testing.T) {
	d := dependence.NewResourceDependence()

	d.RecordWrite("GPR", 4)

	snap := d.Snapshot()

	d.RecordWrite("GPR", 5)

	if cs := d.GetDependenceConstraint("GPR", dependence.AccessWrite); !cs.Contains(5) {
		t.Fatalf("expected post-snapshot write visible before restore")
	}

	d.Restore(snap)

	cs := d.GetDependenceConstraint("GPR", dependence.AccessWrite)
	if cs.Contains(5) {
		t.Fatalf("restore should have discarded the write recorded after the snapshot")
	}

	if !cs.Contains(4) {
		t.Fatalf("restore should keep the pre-snapshot write")
	}
}
