package gen

import (
	"fmt"

	"github.com/smoynes/forge/internal/bnt"
	"github.com/smoynes/forge/internal/memory"
	"github.com/smoynes/forge/internal/reqqueue"
)

// bntMinSpace is the minimum contiguous free PA bytes SequenceAgent requires at a not-taken PA
// before generating its not-taken path, per spec.md §4.6's BntMinSpace() guard.
const bntMinSpace = 4

// Sequencer expands the front-end-specific multi-instruction sequences a SequenceRequest can ask
// for; the generator core has no ISA knowledge of what instructions those sequences need.
type Sequencer interface {
	LoadRegister(reg string, value uint64) []reqqueue.Request
	ReloadRegister(reg string, value uint64) []reqqueue.Request
	BranchToTarget(target uint64) []reqqueue.Request
	ReExecution() []reqqueue.Request
}

// PendingBntQueue is the FIFO of not-yet-expanded BntNodes InstructionAgent swaps conditional
// branches into as it commits them, for SequenceAgent's SequenceBnt requests to pop from
// (spec.md §4.6).
type PendingBntQueue struct {
	nodes []*bnt.BntNode
}

// NewPendingBntQueue creates an empty queue.
func NewPendingBntQueue() *PendingBntQueue {
	return &PendingBntQueue{}
}

// Push appends n to the end of the queue.
func (q *PendingBntQueue) Push(n *bnt.BntNode) {
	q.nodes = append(q.nodes, n)
}

// Pop removes and returns the oldest node, or nil if the queue is empty.
func (q *PendingBntQueue) Pop() *bnt.BntNode {
	if len(q.nodes) == 0 {
		return nil
	}

	n := q.nodes[0]
	q.nodes = q.nodes[1:]

	return n
}

// Len returns the number of nodes still pending expansion.
func (q *PendingBntQueue) Len() int { return len(q.nodes) }

// SequenceAgent expands SequenceRequests, ported from GenSequenceAgent. SequenceBnt is handled
// directly against a PendingBntQueue (spec.md §4.6); the other kinds delegate to a front-end
// Sequencer since they need ISA-specific instructions.
type SequenceAgent struct {
	seq      Sequencer
	pending  *PendingBntQueue
	banks    map[string]*memory.Bank
	bank     string
	bntLimit int
	depth    int // nodes expanded so far in the current round
}

// SequenceAgentOption configures a SequenceAgent at construction.
type SequenceAgentOption func(*SequenceAgent)

// WithBntLimit overrides the default BNT nesting limit (bnt.SpeculativeBntLevelLimit).
func WithBntLimit(n int) SequenceAgentOption {
	return func(a *SequenceAgent) { a.bntLimit = n }
}

// NewSequenceAgent creates an Agent expanding sequences via seq, popping BNT nodes from pending
// and checking not-taken free space against bank.
func NewSequenceAgent(seq Sequencer, pending *PendingBntQueue, banks map[string]*memory.Bank, bank string, opts ...SequenceAgentOption) *SequenceAgent {
	a := &SequenceAgent{
		seq:      seq,
		pending:  pending,
		banks:    banks,
		bank:     bank,
		bntLimit: bnt.SpeculativeBntLevelLimit,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// ResetBntDepth zeroes the per-round BNT nesting counter; the front end calls this once before
// starting a new generation round.
func (a *SequenceAgent) ResetBntDepth() { a.depth = 0 }

// Process implements reqqueue.Agent.
func (a *SequenceAgent) Process(req reqqueue.Request, queue *reqqueue.Queue) error {
	r, ok := req.(*reqqueue.SequenceRequest)
	if !ok {
		return fmt.Errorf("gen: SequenceAgent: unexpected request type %T", req)
	}

	var sub []reqqueue.Request

	switch r.Sequence {
	case reqqueue.SequenceLoadRegister:
		sub = a.seq.LoadRegister(r.Register, r.Value)
	case reqqueue.SequenceReloadRegister:
		sub = a.seq.ReloadRegister(r.Register, r.Value)
	case reqqueue.SequenceBranchToTarget:
		sub = a.seq.BranchToTarget(r.Value)
	case reqqueue.SequenceReExecution:
		sub = a.seq.ReExecution()
	case reqqueue.SequenceBnt:
		return a.processBnt(queue)
	default:
		return fmt.Errorf("gen: SequenceAgent: unknown sequence kind %v", r.Sequence)
	}

	queue.PrependRequests(sub)

	return nil
}

// processBnt pops the oldest not-yet-generated BntNode and, if it still qualifies, expands its
// not-taken path into a BranchToTarget sequence targeting NextAddress(), per spec.md §4.6's three
// generation conditions.
func (a *SequenceAgent) processBnt(queue *reqqueue.Queue) error {
	node := a.pending.Pop()
	if node == nil {
		return nil
	}

	if node.PathsSame() {
		return nil
	}

	if a.depth >= a.bntLimit {
		return nil
	}

	bank, ok := a.banks[a.bank]
	if !ok {
		return fmt.Errorf("gen: SequenceAgent: unknown bank %q", a.bank)
	}

	if !bank.Free().ContainsRange(node.NotTakenPath(), node.NotTakenPath()+bntMinSpace-1) {
		return nil
	}

	a.depth++
	queue.PrependRequests(a.seq.BranchToTarget(node.NotTakenPath()))

	return nil
}

var _ reqqueue.Agent = (*SequenceAgent)(nil)
