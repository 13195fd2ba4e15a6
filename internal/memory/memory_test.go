package memory_test

import (
	"errors"
	"testing"

	"github.com/smoynes/forge/internal/memory"
)

func TestBank_ReserveWriteRead(t *testing.T) {
	t.Parallel()

	bank := memory.NewBank("bank0", 0x10000)

	if err := bank.Reserve(0x1000, 0x100); err != nil {
		t.Fatalf("Reserve: %s", err)
	}

	if bank.Free().Contains(0x1050) {
		t.Fatal("reserved address should no longer be free")
	}

	data := []byte{1, 2, 3, 4}
	if err := bank.Write(0x1000, data, false); err != nil {
		t.Fatalf("Write: %s", err)
	}

	buf := make([]byte, 6)
	initialized, err := bank.Read(0x1000, buf)
	if err != nil {
		t.Fatalf("Read: %s", err)
	}

	for i := 0; i < 4; i++ {
		if !initialized[i] {
			t.Errorf("byte %d: expected initialized", i)
		}

		if buf[i] != data[i] {
			t.Errorf("byte %d: got %d, want %d", i, buf[i], data[i])
		}
	}

	for i := 4; i < 6; i++ {
		if initialized[i] {
			t.Errorf("byte %d: expected uninitialized", i)
		}
	}
}

func TestBank_ReserveNotFree(t *testing.T) {
	t.Parallel()

	bank := memory.NewBank("bank0", 0x1000)
	if err := bank.Reserve(0, 0x100); err != nil {
		t.Fatalf("Reserve: %s", err)
	}

	err := bank.Reserve(0x50, 0x10)
	if !errors.Is(err, memory.ErrNotFree) {
		t.Fatalf("got: %v, want: %v", err, memory.ErrNotFree)
	}
}

func TestBank_OutOfRange(t *testing.T) {
	t.Parallel()

	bank := memory.NewBank("bank0", 0x1000)

	err := bank.Write(0x0ff0, make([]byte, 0x20), false)
	if !errors.Is(err, memory.ErrOutOfRange) {
		t.Fatalf("got: %v, want: %v", err, memory.ErrOutOfRange)
	}
}

func TestBank_MarkSharedIsMonotonic(t *testing.T) {
	t.Parallel()

	bank := memory.NewBank("bank0", 0x1000)

	if err := bank.MarkShared(0x10, 0x10); err != nil {
		t.Fatalf("MarkShared: %s", err)
	}

	if !bank.Shared().ContainsRange(0x10, 0x1f) {
		t.Fatal("expected range marked shared")
	}

	if err := bank.MarkShared(0x18, 0x10); err != nil {
		t.Fatalf("MarkShared: %s", err)
	}

	if !bank.Shared().ContainsRange(0x10, 0x27) {
		t.Fatal("expected union of shared ranges")
	}
}

func TestSymbolTable_AddAndLookup(t *testing.T) {
	t.Parallel()

	st := memory.NewSymbolTable("bank0")
	st.Add(memory.Symbol{Name: "_start", Addr: 0x1000, Size: 4})
	st.Add(memory.Symbol{Name: "_start", Addr: 0x2000, Size: 4}) // redefinition wins

	sym, ok := st.Lookup("_start")
	if !ok || sym.Addr != 0x2000 {
		t.Fatalf("Lookup: got %+v, %v", sym, ok)
	}

	if len(st.Symbols()) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(st.Symbols()))
	}
}
