package gen

import (
	"fmt"

	"github.com/smoynes/forge/internal/bnt"
	"github.com/smoynes/forge/internal/genstate"
	"github.com/smoynes/forge/internal/iss"
	"github.com/smoynes/forge/internal/memory"
	"github.com/smoynes/forge/internal/reqqueue"
)

// Encoded is one instruction's encoding and, for a branch, its static target information. The
// front end supplies an Encoder for its target ISA; the generator core has no instruction-set
// knowledge of its own.
type Encoded struct {
	Bytes       []byte
	Branch      bool
	Conditional bool
	Accurate    bool // the target below is exact, not a best-effort heuristic
	Target      uint64
	NextPC      uint64
}

// Encoder turns a named instruction (plus chosen operands) into its encoding, at the given PC.
type Encoder interface {
	Encode(instructionID string, operands map[string]uint64, pc uint64) (Encoded, error)
}

// CommittedInstruction records one instruction InstructionAgent has written to memory.
type CommittedInstruction struct {
	ID       string
	PC       uint64
	Bank     string
	Encoding []byte
}

// InstructionAgent commits one instruction's encoding to memory at the current PC, advances the
// PC, steps the ISS if coupled, and -- per spec.md §4.6 -- records a BntNode for an accurate
// conditional branch so the BranchNotTaken sequence agent can later generate its not-taken path.
// Ported from GenInstructionAgent's handle-instruction-request flow.
type InstructionAgent struct {
	encoder Encoder
	banks   map[string]*memory.Bank
	bank    string
	pc      *genstate.GenPC
	sim     *iss.Coupler
	thread  uint32
	nodes   *bnt.NodeQueue
	pending *PendingBntQueue
	stream  *[]CommittedInstruction
	uop     UopExpander

	nextNodeID uint64
}

// InstructionAgentOption configures an InstructionAgent at construction.
type InstructionAgentOption func(*InstructionAgent)

// WithSim couples the agent to sim, single-stepping it after every committed instruction.
func WithSim(sim *iss.Coupler, thread uint32) InstructionAgentOption {
	return func(a *InstructionAgent) {
		a.sim = sim
		a.thread = thread
	}
}

// WithNodeQueue records BntNodes for accurate conditional branches into nodes (generation
// history) and pending (the not-taken expansion FIFO SequenceAgent drains).
func WithNodeQueue(nodes *bnt.NodeQueue, pending *PendingBntQueue) InstructionAgentOption {
	return func(a *InstructionAgent) {
		a.nodes = nodes
		a.pending = pending
	}
}

// WithUopExpander supplies the micro-op expander InstructionAgent consults when a request's
// operands name a Uop to resolve (see uopOperandKey). Without this option the agent uses
// NoopUopExpander, matching an architecture with no micro-op decomposition needs.
func WithUopExpander(uop UopExpander) InstructionAgentOption {
	return func(a *InstructionAgent) { a.uop = uop }
}

// NewInstructionAgent creates an Agent encoding instructions via encoder and committing them to
// bank at the current PC tracked by pc. stream, if non-nil, accumulates every committed
// instruction in generation order.
func NewInstructionAgent(
	encoder Encoder,
	banks map[string]*memory.Bank,
	bank string,
	pc *genstate.GenPC,
	stream *[]CommittedInstruction,
	opts ...InstructionAgentOption,
) *InstructionAgent {
	a := &InstructionAgent{
		encoder: encoder,
		banks:   banks,
		bank:    bank,
		pc:      pc,
		stream:  stream,
		uop:     NoopUopExpander{},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Process implements reqqueue.Agent.
func (a *InstructionAgent) Process(req reqqueue.Request, _ *reqqueue.Queue) error {
	r, ok := req.(*reqqueue.InstructionRequest)
	if !ok {
		return fmt.Errorf("gen: InstructionAgent: unexpected request type %T", req)
	}

	bank, ok := a.banks[a.bank]
	if !ok {
		return fmt.Errorf("gen: InstructionAgent: unknown bank %q", a.bank)
	}

	if opVal, ok := r.Operands[uopOperandKey]; ok {
		result, err := a.uop.Expand(Uop(opVal), r.Operands)
		if err != nil {
			return fmt.Errorf("gen: expand uop for %q: %w", r.InstructionID, err)
		}

		r.Operands[uopResultKey] = result.Value
	}

	pc := a.pc.Value()

	enc, err := a.encoder.Encode(r.InstructionID, r.Operands, pc)
	if err != nil {
		return fmt.Errorf("gen: encode %q: %w", r.InstructionID, err)
	}

	if err := bank.Write(pc, enc.Bytes, true); err != nil {
		return fmt.Errorf("gen: commit %q at %#x: %w", r.InstructionID, pc, err)
	}

	if a.stream != nil {
		*a.stream = append(*a.stream, CommittedInstruction{
			ID: r.InstructionID, PC: pc, Bank: a.bank, Encoding: enc.Bytes,
		})
	}

	if a.sim != nil {
		if _, err := a.sim.StepInstruction(a.thread); err != nil {
			return fmt.Errorf("gen: step instruction: %w", err)
		}
	} else {
		a.pc.Set(pc + uint64(len(enc.Bytes)))
	}

	if enc.Branch && enc.Conditional && enc.Accurate && a.nodes != nil {
		a.nextNodeID++
		attrs := bnt.AttrConditional | bnt.AttrAccurate

		if enc.Target != enc.NextPC {
			attrs |= bnt.AttrTaken
		}

		node := bnt.NewBntNode(a.nextNodeID, enc.Target, enc.NextPC, attrs)
		a.nodes.Save(node)

		if a.pending != nil {
			a.pending.Push(node)
		}
	}

	return nil
}

var _ reqqueue.Agent = (*InstructionAgent)(nil)
