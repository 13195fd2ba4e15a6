// Package gen is the generator core's top-level orchestrator: it wires the register arena,
// memory banks, virtual memory, resource dependence, BNT/speculative bookkeeping, restore loops,
// and ISS coupling (C2-C10) behind a reqqueue.Dispatcher with one Agent per spec.md §4.4 request
// kind, and drives generation one instruction at a time through Dispatcher.RunRound. Ported from
// the Generator class in original_source/base/inc/Generator.h, which plays the same role: every
// subsystem header in base/inc/ is a collaborator Generator owns or is handed, never a
// self-contained program of its own.
package gen

import (
	"fmt"

	"github.com/smoynes/forge/internal/bnt"
	"github.com/smoynes/forge/internal/dependence"
	"github.com/smoynes/forge/internal/genstate"
	"github.com/smoynes/forge/internal/iss"
	"github.com/smoynes/forge/internal/log"
	"github.com/smoynes/forge/internal/memory"
	"github.com/smoynes/forge/internal/register"
	"github.com/smoynes/forge/internal/reqqueue"
	"github.com/smoynes/forge/internal/restore"
	"github.com/smoynes/forge/internal/vmem"
)

// regimeMapper adapts a vmem.Regime to vmem.Mapper, delegating to whichever mapper is current so
// a VirtualMemoryAgent built against it keeps working across ActivateDirect/ActivatePaging
// switches.
type regimeMapper struct {
	regime *vmem.Regime
}

func (m regimeMapper) MapAddressRange(va, size uint64, isInstr bool, req vmem.PageReq) (*vmem.Page, error) {
	return m.regime.Current().MapAddressRange(va, size, isInstr, req)
}

func (m regimeMapper) MapAddressRangeForPA(bank string, pa, size uint64, req vmem.PageReq) (*vmem.Page, error) {
	return m.regime.Current().MapAddressRangeForPA(bank, pa, size, req)
}

func (m regimeMapper) TranslateVaToPa(va uint64) (uint64, string, error) {
	return m.regime.Current().TranslateVaToPa(va)
}

func (m regimeMapper) TranslatePaToVa(bank string, pa uint64) (uint64, error) {
	return m.regime.Current().TranslatePaToVa(bank, pa)
}

// Generator holds every generation-core collaborator for one hart (spec.md §5: "one generator
// instance per hart") and the dispatcher routing requests to their agents.
type Generator struct {
	Regs    *register.Arena
	Banks   map[string]*memory.Bank
	Regime  *vmem.Regime
	Deps    *dependence.ResourceDependence
	Reserve *dependence.RegisterReserver

	PC   *genstate.GenPC
	Mode *genstate.GenMode
	Data *genstate.DataStation

	Nodes   *bnt.NodeQueue
	Pending *PendingBntQueue
	Hooks   *bnt.HookManager
	Restore *restore.Manager

	Sim      *iss.Coupler
	ThreadID uint32

	Queue      *reqqueue.Queue
	Dispatcher *reqqueue.Dispatcher

	Stream []CommittedInstruction

	exceptions *ExceptionAgent
	sequences  *SequenceAgent

	log *log.Logger
}

// Config collects everything GenerateInstruction-facing code must supply that the generator core
// has no ISA knowledge of: the default bank instructions commit to, an Encoder for instruction
// bytes, and a Sequencer for multi-instruction expansions.
type Config struct {
	Regs        *register.Arena
	Banks       map[string]*memory.Bank
	DefaultBank string
	Regime      *vmem.Regime
	Sim         SimConfig
	Encoder     Encoder
	Sequencer   Sequencer
	UopExpander UopExpander
	Logger      *log.Logger
}

// SimConfig optionally couples the generator to an external simulator.
type SimConfig struct {
	Sim      iss.SimAPI
	ThreadID uint32
}

// NewGenerator wires every collaborator and registers one Agent per reqqueue.Kind on the
// Dispatcher, the way Generator's constructor in the source builds its agent table.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Regs == nil || cfg.Banks == nil || cfg.Regime == nil {
		return nil, fmt.Errorf("gen: NewGenerator: Regs, Banks, and Regime are required")
	}

	l := cfg.Logger
	if l == nil {
		l = log.DefaultLogger()
	}

	genstate.Initialize()

	g := &Generator{
		Regs:    cfg.Regs,
		Banks:   cfg.Banks,
		Regime:  cfg.Regime,
		Deps:    dependence.NewResourceDependence(),
		Reserve: dependence.NewRegisterReserver(),
		PC:      genstate.NewGenPC(0),
		Mode:    genstate.NewGenMode(),
		Data:    genstate.NewDataStation(),
		Nodes:   bnt.NewNodeQueue(),
		Pending: NewPendingBntQueue(),
		Hooks:   bnt.NewHookManager(),
		Restore: restore.NewManager(restore.WithLogger(l)),
		Queue:   reqqueue.NewQueue(),
		log:     l,
	}

	genstate.RegisterDestroy(g.Data.Reset)

	if cfg.Sim.Sim != nil {
		g.Sim = iss.NewCoupler(cfg.Sim.Sim, g.Regs, g.PC, iss.WithLogger(l))
		g.ThreadID = cfg.Sim.ThreadID

		for _, bank := range cfg.Banks {
			iss.WithBank(bank)(g.Sim)
		}
	}

	g.exceptions = NewExceptionAgent(g.Queue)

	if g.Sim != nil {
		iss.WithExceptionHandler(g.exceptions)(g.Sim)
	}

	instOpts := []InstructionAgentOption{WithNodeQueue(g.Nodes, g.Pending)}
	if g.Sim != nil {
		instOpts = append(instOpts, WithSim(g.Sim, g.ThreadID))
	}

	if cfg.UopExpander != nil {
		instOpts = append(instOpts, WithUopExpander(cfg.UopExpander))
	}

	instructions := NewInstructionAgent(cfg.Encoder, g.Banks, cfg.DefaultBank, g.PC, &g.Stream, instOpts...)
	g.sequences = NewSequenceAgent(cfg.Sequencer, g.Pending, g.Banks, cfg.DefaultBank)

	mgr := NewTransitionManager(g.Regs, g.PC, WithLogger(l))
	transitions := NewTransitionAgent(mgr)

	g.Dispatcher = reqqueue.NewDispatcher()
	g.Dispatcher.Register(reqqueue.KindInstruction, instructions)
	g.Dispatcher.Register(reqqueue.KindSequence, g.sequences)
	g.Dispatcher.Register(reqqueue.KindState, NewStateAgent(g.Mode))
	g.Dispatcher.Register(reqqueue.KindException, g.exceptions)
	g.Dispatcher.Register(reqqueue.KindVirtualMemory, NewVirtualMemoryAgent(regimeMapper{g.Regime}, g.Banks))
	g.Dispatcher.Register(reqqueue.KindCallBack, NewCallBackAgent())
	g.Dispatcher.Register(reqqueue.KindQuery, NewQueryAgent(g.Data))
	g.Dispatcher.Register(reqqueue.KindStateTransition, transitions)

	return g, nil
}

// CaptureRegisterForRestore reads name's current full-width value -- lazily running its
// register.InitPolicy if this is its first read -- and, if a restore loop is active, pushes it as
// a bnt.RegisterPeState so a later rollback restores exactly this value. Front ends call this
// before an instruction they know will clobber a register inside a restore loop (spec.md §4.7's
// capture-before-clobber), mirroring the source's Register::GetValue triggering lazy
// initialization through RegisterInitPolicy.
func (g *Generator) CaptureRegisterForRestore(name string) error {
	id, ok := g.Regs.Lookup(name)
	if !ok {
		return fmt.Errorf("gen: capture register for restore: unknown register %q", name)
	}

	mask := g.Regs.Get(id).Mask()
	value := g.Regs.ReadValue(id, mask)

	g.Restore.PushResourcePeState(restore.GroupGPR, bnt.RegisterPeState{
		Bank: "GPR", ID: id, Value: value, Mask: mask,
	})

	return nil
}

// GenerateInstruction runs one generation round: an InstructionRequest for instructionID/operands
// is dispatched, along with every sub-request it or its sequences prepend, then any BntNodes
// swapped into the pending queue during the round are drained by repeated SequenceBnt requests
// until none remain (spec.md §4.4, §4.6).
func (g *Generator) GenerateInstruction(instructionID string, operands map[string]uint64) error {
	g.sequences.ResetBntDepth()

	req := reqqueue.NewInstructionRequest(instructionID)
	for k, v := range operands {
		req.Operands[k] = v
	}

	if err := g.Dispatcher.RunRound(g.Queue, req); err != nil {
		return fmt.Errorf("gen: generate %q: %w", instructionID, err)
	}

	for g.Pending.Len() > 0 {
		bntReq := reqqueue.NewSequenceRequest(reqqueue.SequenceBnt)
		if err := g.Dispatcher.RunRound(g.Queue, bntReq); err != nil {
			return fmt.Errorf("gen: generate %q: bnt expansion: %w", instructionID, err)
		}
	}

	return nil
}
