package gen

import "fmt"

// Uop names a micro-operation an instruction agent may need evaluated before encoding -- e.g. an
// add-with-carry whose carry-out flag a template can't derive on its own. Ported from
// original_source/base/inc/UopInterface.h's EUop enum, trimmed to the handful of arithmetic
// helpers this generator's instruction agents actually consult.
type Uop uint64

const (
	UopAddWithCarry Uop = iota
	UopSubWithCarry
	UopMulAdd
)

// UopResult is the value and flags a UopExpander computes for one Uop evaluation, mirroring the
// source's UopParamResult/UopParamFpException output parameters.
type UopResult struct {
	Value    uint64
	CarryOut bool
	Overflow bool
}

// UopExpander evaluates a Uop against named operands, matching the source's boundary between
// FORCE and an architecture-specific UopExecutor: the generator core names the operation and
// supplies operands, and leaves the arithmetic itself to the expander.
type UopExpander interface {
	Expand(op Uop, operands map[string]uint64) (UopResult, error)
}

// NoopUopExpander is the zero-value UopExpander. RISC-V needs no micro-op decomposition in this
// generator's scope, but the seam mirrors the source's plugin-style UopInterface so an
// architecture plugin could supply a real one.
type NoopUopExpander struct{}

func (NoopUopExpander) Expand(op Uop, _ map[string]uint64) (UopResult, error) {
	return UopResult{}, fmt.Errorf("gen: NoopUopExpander: no expansion registered for uop %d", op)
}

var _ UopExpander = NoopUopExpander{}

// uopOperandKey, if present in an InstructionRequest's Operands, names the Uop (by its numeric
// value) that must be expanded before the instruction is encoded; uopResultKey is where
// InstructionAgent stores the expansion's Value back into Operands for the Encoder to read.
const (
	uopOperandKey = "__uop"
	uopResultKey  = "__uop_result"
)
