package restore_test

import (
	"testing"

	"github.com/smoynes/forge/internal/bnt"
	"github.com/smoynes/forge/internal/dependence"
	"github.com/smoynes/forge/internal/register"
	"github.com/smoynes/forge/internal/restore"
)

type fakeTarget struct {
	registers []bnt.RegisterPeState
}

func (f *fakeTarget) RestoreRegister(bank string, id register.PhysicalID, value, mask uint64) {
	f.registers = append(f.registers, bnt.RegisterPeState{Bank: bank, ID: id, Value: value, Mask: mask})
}

func (f *fakeTarget) RestorePC(pc uint64) {}

func (f *fakeTarget) RestoreMemory(bank string, pa uint64, data []byte) {}

func (f *fakeTarget) RestoreDependence(class string, snapshot *dependence.ResourceDependence) {}

func TestManager_BeginLoopRejectsFastExceptionMode(t *testing.T) {
	m := restore.NewManager()

	if _, err := m.BeginLoop(1, 4, 4, nil, 0x1000, true); err != restore.ErrFastExceptionMode {
		t.Fatalf("expected ErrFastExceptionMode, got %v", err)
	}
}

func TestManager_EndLoopRequiresInnermost(t *testing.T) {
	m := restore.NewManager()

	outer, err := m.BeginLoop(1, 4, 4, nil, 0x1000, false)
	if err != nil {
		t.Fatalf("BeginLoop: %v", err)
	}

	inner, err := m.BeginLoop(2, 4, 4, nil, 0x2000, false)
	if err != nil {
		t.Fatalf("BeginLoop nested: %v", err)
	}

	if err := m.EndLoop(outer); err != restore.ErrNested {
		t.Fatalf("expected ErrNested ending the outer loop before the inner one, got %v", err)
	}

	if err := m.EndLoop(inner); err != nil {
		t.Fatalf("EndLoop(inner): %v", err)
	}

	if err := m.EndLoop(outer); err != nil {
		t.Fatalf("EndLoop(outer): %v", err)
	}
}

// TestManager_NestedLoopSuspendsOuterRecording begins a nested loop while the outer one is
// recording and checks that the manager then routes to the nested loop (innermost loop id 2); it
// does not inspect the outer loop's recorded state.
func TestManager_NestedLoopSuspendsOuterRecording(t *testing.T) {
	m := restore.NewManager()

	outer, _ := m.BeginLoop(1, 4, 4, nil, 0x1000, false)

	m.PushResourcePeState(restore.GroupGPR, bnt.RegisterPeState{Bank: "GPR", ID: 1, Value: 1, Mask: ^uint64(0)})

	_, _ = m.BeginLoop(2, 4, 4, nil, 0x2000, false)

	// While the nested loop is active, state pushed through the manager goes to the nested
	// loop, not the suspended outer one.
	m.PushResourcePeState(restore.GroupGPR, bnt.RegisterPeState{Bank: "GPR", ID: 2, Value: 2, Mask: ^uint64(0)})

	if got := m.GetCurrentLoopId(); got != 2 {
		t.Fatalf("expected innermost loop id 2, got %d", got)
	}

	_ = outer
}

func TestLoop_ExcludedGroupNeverRecorded(t *testing.T) {
	m := restore.NewManager()

	id, _ := m.BeginLoop(1, 1, 1, []restore.Group{restore.GroupMemory}, 0x1000, false)

	m.PushResourcePeState(restore.GroupMemory, bnt.MemoryPeState{Bank: "main", PA: 0x100, Data: []byte{1}})
	m.PushResourcePeState(restore.GroupGPR, bnt.RegisterPeState{Bank: "GPR", ID: 3, Value: 9, Mask: ^uint64(0)})

	if err := m.SetRestoreStartAddress(id, 0x1100); err != nil {
		t.Fatalf("SetRestoreStartAddress: %v", err)
	}

	m.HandlePcUpdate(0x1100)

	touched := m.GenerateRestoreInstructions(id, &fakeTarget{})

	if len(touched) != 1 || touched[0] != restore.GroupGPR {
		t.Fatalf("expected only the non-excluded GPR group recorded, got %v", touched)
	}
}

func TestManager_GenerateRestoreInstructionsUndoesTrackedState(t *testing.T) {
	m := restore.NewManager()

	id, err := m.BeginLoop(1, 1, 2, nil, 0x1000, false)
	if err != nil {
		t.Fatalf("BeginLoop: %v", err)
	}

	m.PushResourcePeState(restore.GroupGPR, bnt.RegisterPeState{Bank: "GPR", ID: 1, Value: 0x10, Mask: ^uint64(0)})

	// Drive the loop's phase into restoring by reaching the restore-start address.
	if err := m.SetRestoreStartAddress(id, 0x1100); err != nil {
		t.Fatalf("SetRestoreStartAddress: %v", err)
	}

	m.HandlePcUpdate(0x1100)

	if !m.OnFirstRestoreIteration(id) {
		t.Fatalf("expected the loop to report its first restore iteration")
	}

	target := &fakeTarget{}
	touched := m.GenerateRestoreInstructions(id, target)

	if len(touched) != 1 || touched[0] != restore.GroupGPR {
		t.Fatalf("expected only GPR touched, got %v", touched)
	}

	if len(target.registers) != 1 || target.registers[0].Value != 0x10 {
		t.Fatalf("expected register restored to 0x10, got %+v", target.registers)
	}
}
