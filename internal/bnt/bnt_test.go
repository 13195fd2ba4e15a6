package bnt_test

import (
	"testing"

	"github.com/smoynes/forge/internal/bnt"
	"github.com/smoynes/forge/internal/dependence"
	"github.com/smoynes/forge/internal/register"
)

// fakeTarget records calls for assertions, standing in for internal/gen's RecoveryTarget
// implementation.
type fakeTarget struct {
	registers []bnt.RegisterPeState
	pcs       []uint64
}

func (f *fakeTarget) RestoreRegister(bank string, id register.PhysicalID, value, mask uint64) {
	f.registers = append(f.registers, bnt.RegisterPeState{Bank: bank, ID: id, Value: value, Mask: mask})
}

func (f *fakeTarget) RestorePC(pc uint64) { f.pcs = append(f.pcs, pc) }

func (f *fakeTarget) RestoreMemory(bank string, pa uint64, data []byte) {}

func (f *fakeTarget) RestoreDependence(class string, snapshot *dependence.ResourceDependence) {}

func TestBntNode_PathsSameAndTakenNotTaken(t *testing.T) {
	n := bnt.NewBntNode(1, 0x2000, 0x1004, bnt.AttrConditional)

	if n.PathsSame() {
		t.Fatalf("expected distinct taken/not-taken paths")
	}

	if n.TakenPath() != 0x2000 || n.NotTakenPath() != 0x1004 {
		t.Fatalf("unexpected taken/not-taken paths: %#x / %#x", n.TakenPath(), n.NotTakenPath())
	}

	straight := bnt.NewBntNode(2, 0x3000, 0x3000, 0)
	if !straight.PathsSame() {
		t.Fatalf("expected equal targets to report PathsSame")
	}
}

func TestBntNode_RecordExecutionSetsRealPath(t *testing.T) {
	n := bnt.NewBntNode(1, 0x2000, 0x1004, bnt.AttrConditional)

	if _, ok := n.RealPath(); ok {
		t.Fatalf("expected no real path before execution")
	}

	n.RecordExecution(0x2000)

	addr, ok := n.RealPath()
	if !ok || addr != 0x2000 {
		t.Fatalf("expected real path 0x2000, got %#x, ok=%v", addr, ok)
	}
}

func TestSpeculativeBntNode_IsSpeculative(t *testing.T) {
	var plain bnt.Node = bnt.NewBntNode(1, 0x10, 0x14, 0)
	var spec bnt.Node = bnt.NewSpeculativeBntNode(2, 0x20, 0x24, bnt.AttrConditional)

	if plain.IsSpeculative() {
		t.Fatalf("plain BntNode should not report speculative")
	}

	if !spec.IsSpeculative() {
		t.Fatalf("SpeculativeBntNode should report speculative")
	}
}

func TestResourcePeStateStack_DuplicatePushKeepsOldestValue(t *testing.T) {
	s := bnt.NewResourcePeStateStack()

	s.Push(bnt.RegisterPeState{Bank: "GPR", ID: 5, Value: 0x111, Mask: ^uint64(0)})
	s.Push(bnt.RegisterPeState{Bank: "GPR", ID: 5, Value: 0x222, Mask: ^uint64(0)}) // duplicate location, ignored

	if s.Len() != 1 {
		t.Fatalf("expected duplicate save to be suppressed, stack len = %d", s.Len())
	}

	target := &fakeTarget{}
	s.RecoverResourcePeStates(target)

	if len(target.registers) != 1 || target.registers[0].Value != 0x111 {
		t.Fatalf("expected the first (oldest) saved value 0x111 to be restored, got %+v", target.registers)
	}

	if !s.IsEmpty() {
		t.Fatalf("expected stack empty after recovery")
	}
}

func TestResourcePeStateStack_RecoverOrderIsPushReverse(t *testing.T) {
	s := bnt.NewResourcePeStateStack()

	s.Push(bnt.PCPeState{Value: 0x1000})
	s.Push(bnt.RegisterPeState{Bank: "GPR", ID: 1, Value: 42, Mask: ^uint64(0)})

	target := &fakeTarget{}
	s.RecoverResourcePeStates(target)

	if len(target.registers) != 1 || len(target.pcs) != 1 {
		t.Fatalf("expected one register and one pc restore, got %+v / %+v", target.registers, target.pcs)
	}
}

func TestIncrementalResourcePeStateStack_RecoverThroughMark(t *testing.T) {
	s := bnt.NewIncrementalResourcePeStateStack()

	s.Push(bnt.RegisterPeState{Bank: "GPR", ID: 1, Value: 1, Mask: ^uint64(0)})
	mark := s.Mark()

	s.Push(bnt.RegisterPeState{Bank: "GPR", ID: 2, Value: 2, Mask: ^uint64(0)})
	s.Push(bnt.RegisterPeState{Bank: "GPR", ID: 3, Value: 3, Mask: ^uint64(0)})

	target := &fakeTarget{}
	s.RecoverThroughMark(mark, target)

	if len(target.registers) != 2 {
		t.Fatalf("expected 2 registers recovered (pushed after the mark), got %d", len(target.registers))
	}

	if s.Len() != 1 {
		t.Fatalf("expected 1 state remaining (pushed before the mark), got %d", s.Len())
	}
}

func TestNodeQueue_PushSpeculativeTracksHotAndDepth(t *testing.T) {
	q := bnt.NewNodeQueue()

	outer := bnt.NewSpeculativeBntNode(1, 0x100, 0x104, bnt.AttrConditional)
	inner := bnt.NewSpeculativeBntNode(2, 0x200, 0x204, bnt.AttrConditional)

	if err := q.PushSpeculative(outer); err != nil {
		t.Fatalf("PushSpeculative(outer): %v", err)
	}

	if err := q.PushSpeculative(inner); err != nil {
		t.Fatalf("PushSpeculative(inner): %v", err)
	}

	if q.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", q.Depth())
	}

	if q.Hot() != inner {
		t.Fatalf("expected inner node to be hot")
	}

	if popped := q.PopSpeculative(); popped != inner {
		t.Fatalf("expected PopSpeculative to return inner")
	}

	if q.Hot() != outer {
		t.Fatalf("expected outer node to be hot after popping inner")
	}

	if len(q.History()) != 2 {
		t.Fatalf("expected both nodes recorded in history, got %d", len(q.History()))
	}
}

func TestNodeQueue_PushSpeculativeRejectsPastLimit(t *testing.T) {
	q := bnt.NewNodeQueue()

	for i := 0; i < bnt.SpeculativeBntLevelLimit; i++ {
		if err := q.PushSpeculative(bnt.NewSpeculativeBntNode(uint64(i), 0, 0, 0)); err != nil {
			t.Fatalf("unexpected error at depth %d: %v", i, err)
		}
	}

	if err := q.PushSpeculative(bnt.NewSpeculativeBntNode(999, 0, 0, 0)); err != bnt.ErrSpeculativeLimit {
		t.Fatalf("expected ErrSpeculativeLimit, got %v", err)
	}
}

func TestSimplePeState_SaveAndRestore(t *testing.T) {
	sp := bnt.NewSimplePeState()

	ids := []register.PhysicalID{1, 2}
	values := map[register.PhysicalID]uint64{1: 0xaa, 2: 0xbb}

	sp.SaveState("GPR", ids, func(id register.PhysicalID) (uint64, uint64) {
		return values[id], ^uint64(0)
	})

	target := &fakeTarget{}
	sp.RestoreState(target)

	if len(target.registers) != 2 {
		t.Fatalf("expected 2 registers restored, got %d", len(target.registers))
	}

	if target.registers[0].Value != 0xaa || target.registers[1].Value != 0xbb {
		t.Fatalf("unexpected restored values: %+v", target.registers)
	}
}
