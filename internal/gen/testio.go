package gen

import "fmt"

// TestIO is the generator-side debug-output channel the front end polls, ported from TestIO.h.
// The original TestIO also owned ELF image assembly; that responsibility belongs to the front end
// here (spec.md §1's "ELF read/write" Non-goal), so this port keeps only the line-oriented
// instrumentation channel: a generator-side agent writes diagnostic entries (disassembly,
// per-instruction annotations, state snapshots) and the front end drains them in FIFO order.
type TestIO struct {
	bank  uint32
	lines []string
}

// NewTestIO creates an empty channel for the given memory bank.
func NewTestIO(bank uint32) *TestIO {
	return &TestIO{bank: bank}
}

// Bank returns the memory bank index this channel is associated with.
func (t *TestIO) Bank() uint32 { return t.bank }

// WriteLine appends a formatted diagnostic entry.
func (t *TestIO) WriteLine(format string, args ...any) {
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

// CountEntries returns the number of entries not yet drained, mirroring TestIO_test.cc's
// CountSections check.
func (t *TestIO) CountEntries() int { return len(t.lines) }

// Drain returns every entry written so far, in write order, and empties the channel -- the way
// the front end polls generator-side debug output and consumes it exactly once.
func (t *TestIO) Drain() []string {
	lines := t.lines
	t.lines = nil

	return lines
}
