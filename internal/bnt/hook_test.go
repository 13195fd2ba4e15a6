package bnt_test

import (
	"testing"

	"github.com/smoynes/forge/internal/bnt"
)

func idsOf(hooks []*bnt.Hook) []uint64 {
	ids := make([]uint64, len(hooks))
	for i, h := range hooks {
		ids[i] = h.ID
	}

	return ids
}

func TestHookManager_RevertZeroRevertsMostRecentOnly(t *testing.T) {
	m := bnt.NewHookManager()

	m.PushBntHook("seqA", "fnA")
	m.PushBntHook("seqB", "fnB")

	popped := m.RevertBntHook(0)

	if len(popped) != 1 || popped[0].SequenceName != "seqB" {
		t.Fatalf("expected only seqB reverted, got %v", popped)
	}

	if m.Len() != 1 {
		t.Fatalf("expected 1 hook remaining, got %d", m.Len())
	}
}

func TestHookManager_RevertByIDPopsInclusive(t *testing.T) {
	m := bnt.NewHookManager()

	id1 := m.PushBntHook("seqA", "fnA")
	_ = m.PushBntHook("seqB", "fnB")
	_ = m.PushBntHook("seqC", "fnC")

	popped := m.RevertBntHook(id1)

	got := idsOf(popped)
	want := []uint64{3, 2, 1}

	if len(got) != len(want) {
		t.Fatalf("expected %d hooks popped, got %d (%v)", len(want), len(got), got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected pop order %v, got %v", want, got)
		}
	}

	if m.Len() != 0 {
		t.Fatalf("expected manager empty after reverting through the oldest hook")
	}
}

func TestHookManager_RevertByTopIDStillPopsOne(t *testing.T) {
	m := bnt.NewHookManager()

	id := m.PushBntHook("seqA", "fnA")

	popped := m.RevertBntHook(id)

	if len(popped) != 1 || popped[0].ID != id {
		t.Fatalf("expected exactly the top hook popped, got %v", popped)
	}
}
