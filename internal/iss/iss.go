// Package iss couples the generator to an external instruction-set simulator: single-stepping
// the committed instruction and reconciling the register, memory, and exception updates it
// reports back into the generator's own state. Grounded on spec.md §4.8/§6's SimAPI and the
// step/reconcile shape of original_source/base/inc/UopInterface.h +
// utils/handcar/UopInterface.cc (the source's lowest-level FORCE/simulator boundary).
package iss

import (
	"errors"

	"github.com/smoynes/forge/internal/genstate"
	"github.com/smoynes/forge/internal/log"
	"github.com/smoynes/forge/internal/memory"
	"github.com/smoynes/forge/internal/register"
)

// PCRegisterName is the architectural register name StepInstruction treats specially: a reported
// update to it becomes the generator's next GenPC value (spec.md §4.8).
const PCRegisterName = "pc"

// ErrDivergence is returned by StepInstruction when the simulator reports an update for a
// register the generator's arena has no definition for -- a configuration mismatch between the
// register description and the simulator's model, not a recoverable generation failure.
var ErrDivergence = errors.New("iss: simulator reported an update for an undefined register")

// RegisterUpdate is one register the simulator changed during a step.
type RegisterUpdate struct {
	Name  string
	Value uint64
	Mask  uint64
}

// MemoryUpdate is one memory write the simulator performed during a step.
type MemoryUpdate struct {
	Bank string
	PA   uint64
	Data []byte
}

// ExceptionEvent is one exception (or ERET) the simulator observed during a step.
type ExceptionEvent struct {
	Kind string
	Code uint64
	ERET bool
}

// StepResult is everything one SimAPI.Step call reports.
type StepResult struct {
	Registers  []RegisterUpdate
	Memory     []MemoryUpdate
	Exceptions []ExceptionEvent
}

// SimAPI is the external simulator boundary, per spec.md §6.
type SimAPI interface {
	Step(threadID uint32) (StepResult, error)
	WriteRegister(threadID uint32, name string, value, mask uint64) error
	WritePhysicalMemory(threadID uint32, bank string, pa uint64, data []byte) error
	EnterSpeculativeMode(threadID uint32) error
	LeaveSpeculativeMode(threadID uint32) error
}

// ExceptionHandler reacts to an exception the simulator reported, dispatching it as a
// GenHandleException sub-request (spec.md §4.8); internal/gen's ExceptionAgent implements this,
// processing each event as it is reported.
type ExceptionHandler interface {
	HandleException(ev ExceptionEvent) error
}

// Coupler reconciles SimAPI step results into a register arena, the generator PC, and a set of
// named memory banks, ported from the StepInstruction flow in spec.md §4.8.
type Coupler struct {
	sim   SimAPI
	regs  *register.Arena
	pc    *genstate.GenPC
	banks map[string]*memory.Bank

	exceptions ExceptionHandler

	log *log.Logger
}

// Option configures a Coupler at construction.
type Option func(*Coupler)

// WithBank registers a memory bank StepInstruction may write memory updates into.
func WithBank(b *memory.Bank) Option {
	return func(c *Coupler) { c.banks[b.Name()] = b }
}

// WithExceptionHandler attaches the handler StepInstruction dispatches exception events to.
func WithExceptionHandler(h ExceptionHandler) Option {
	return func(c *Coupler) { c.exceptions = h }
}

// WithLogger attaches a logger to the coupler.
func WithLogger(l *log.Logger) Option {
	return func(c *Coupler) { c.log = l }
}

// NewCoupler creates a Coupler stepping sim, writing register updates into regs and PC updates
// into pc.
func NewCoupler(sim SimAPI, regs *register.Arena, pc *genstate.GenPC, opts ...Option) *Coupler {
	c := &Coupler{
		sim:   sim,
		regs:  regs,
		pc:    pc,
		banks: make(map[string]*memory.Bank),
		log:   log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// StepInstruction single-steps the simulator and reconciles every reported update, per spec.md
// §4.8: each register update is written to the matching PhysicalRegister (a PC update also
// becomes the next GenPC value); each memory update is merged into its bank; each exception event
// is handed to the ExceptionHandler, an ERET additionally popping exception-handler state (left
// to the handler, which owns that stack).
//
// A register update the arena has no definition for is ErrDivergence: the register description
// and the simulator's model have drifted apart, which generation cannot recover from by itself.
// A readonly register the generator never writes but the simulator's model diverges on is
// reconciled the same way as any other update -- the first update StepInstruction ever sees for
// it is exactly the "batch catch-up" spec.md §4.8 describes, with no separate read path needed.
func (c *Coupler) StepInstruction(threadID uint32) (StepResult, error) {
	result, err := c.sim.Step(threadID)
	if err != nil {
		return StepResult{}, err
	}

	for _, ru := range result.Registers {
		id, ok := c.regs.Lookup(ru.Name)
		if !ok {
			return result, ErrDivergence
		}

		c.regs.Get(id).SetValue(ru.Value, ru.Mask)

		if ru.Name == PCRegisterName {
			c.pc.Set(ru.Value)
		}
	}

	for _, mu := range result.Memory {
		bank, ok := c.banks[mu.Bank]
		if !ok {
			c.log.Warn("iss: memory update for unregistered bank", "bank", mu.Bank, "pa", mu.PA)
			continue
		}

		if err := bank.Write(mu.PA, mu.Data, false); err != nil {
			return result, err
		}
	}

	for _, ev := range result.Exceptions {
		if c.exceptions == nil {
			continue
		}

		if err := c.exceptions.HandleException(ev); err != nil {
			return result, err
		}
	}

	return result, nil
}

// EnterSpeculativeMode tells the simulator to start exploring a speculative (not-taken) path.
func (c *Coupler) EnterSpeculativeMode(threadID uint32) error {
	return c.sim.EnterSpeculativeMode(threadID)
}

// LeaveSpeculativeMode tells the simulator to abandon its speculative path and resume committed
// execution.
func (c *Coupler) LeaveSpeculativeMode(threadID uint32) error {
	return c.sim.LeaveSpeculativeMode(threadID)
}

// WriteRegister pushes a generator-driven register write through to the simulator, keeping its
// architectural state in sync with FORCE's.
func (c *Coupler) WriteRegister(threadID uint32, name string, value, mask uint64) error {
	return c.sim.WriteRegister(threadID, name, value, mask)
}

// WritePhysicalMemory pushes a generator-driven memory write through to the simulator.
func (c *Coupler) WritePhysicalMemory(threadID uint32, bank string, pa uint64, data []byte) error {
	return c.sim.WritePhysicalMemory(threadID, bank, pa, data)
}
