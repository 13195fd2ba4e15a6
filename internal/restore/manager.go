package restore

import (
	"github.com/smoynes/forge/internal/bnt"
	"github.com/smoynes/forge/internal/genstate"
	"github.com/smoynes/forge/internal/log"
)

// Manager tracks the stack of active restore loops for one generator thread, ported from
// RestoreLoopManager. Nested loops are supported: BeginLoop while another loop is recording
// suspends the outer loop (its own restore bookkeeping resumes once the nested loop ends).
type Manager struct {
	loops          []*Loop
	nextID         uint32
	branchRegIndex uint32

	nestedStart map[uint32]map[uint64]bool
	nestedEnd   map[uint32]map[uint64]bool

	log *log.Logger
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithLogger attaches a logger to the manager.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates an empty restore-loop manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		nestedStart: make(map[uint32]map[uint64]bool),
		nestedEnd:   make(map[uint32]map[uint64]bool),
		log:         log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// BeginLoop starts a new restore loop, or, if one is already recording, marks it suspended and
// starts a nested one. fastExceptionMode must be false: restore loops don't support it (spec.md
// §4.7).
func (m *Manager) BeginLoop(loopRegIndex, simCount, restoreCount uint32, exclusions []Group, loopBackAddr uint64, fastExceptionMode bool) (uint32, error) {
	if fastExceptionMode {
		return 0, ErrFastExceptionMode
	}

	if current := m.current(); current != nil {
		current.beginNestedLoop()
	}

	m.nextID++
	id := m.nextID

	loop := newLoop(id, loopRegIndex, m.branchRegIndex, simCount, restoreCount, exclusions, loopBackAddr, m.log)
	m.loops = append(m.loops, loop)

	return id, nil
}

// EndLoop finalizes loopID's loop, which must be the innermost active one.
func (m *Manager) EndLoop(loopID uint32) error {
	current := m.current()
	if current == nil || current.id != loopID {
		return ErrNested
	}

	m.loops = m.loops[:len(m.loops)-1]

	if parent := m.current(); parent != nil {
		parent.endNestedLoop()
	}

	return nil
}

func (m *Manager) current() *Loop {
	if len(m.loops) == 0 {
		return nil
	}

	return m.loops[len(m.loops)-1]
}

// PushResourcePeState routes state to the innermost active loop's tracking for group. It is a
// no-op if no loop is active.
func (m *Manager) PushResourcePeState(group Group, state bnt.ResourcePeState) {
	if current := m.current(); current != nil {
		current.PushResourcePeState(group, state)
	}
}

// GetCurrentLoopId returns the innermost active loop's id, or 0 if none is active.
func (m *Manager) GetCurrentLoopId() uint32 {
	if current := m.current(); current != nil {
		return current.id
	}

	return 0
}

// GetCurrentLoopBackAddress returns the innermost active loop's back-branch address.
func (m *Manager) GetCurrentLoopBackAddress() uint64 {
	if current := m.current(); current != nil {
		return current.loopBackAddr
	}

	return 0
}

// GetBranchRegisterIndex returns the register index reserved for restore-loop branch bookkeeping.
func (m *Manager) GetBranchRegisterIndex() uint32 { return m.branchRegIndex }

// SetBranchRegisterIndex records the register index reserved for restore-loop branch bookkeeping.
func (m *Manager) SetBranchRegisterIndex(idx uint32) { m.branchRegIndex = idx }

// AddNestedLoopAddresses records the start and end addresses of a previously-generated nested
// loop, so a later HandlePcUpdate recognizes reentry into it.
func (m *Manager) AddNestedLoopAddresses(loopID uint32, startAddr, endAddr uint64) {
	if m.nestedStart[loopID] == nil {
		m.nestedStart[loopID] = make(map[uint64]bool)
		m.nestedEnd[loopID] = make(map[uint64]bool)
	}

	m.nestedStart[loopID][startAddr] = true
	m.nestedEnd[loopID][endAddr] = true
}

func (m *Manager) isNestedLoopStartAddress(addr uint64) bool {
	current := m.current()
	if current == nil {
		return false
	}

	return m.nestedStart[current.id][addr]
}

func (m *Manager) isNestedLoopEndAddress(addr uint64) bool {
	current := m.current()
	if current == nil {
		return false
	}

	return m.nestedEnd[current.id][addr]
}

// HandlePcUpdate responds to a PC-updated notification the way RestoreLoopManager's notification
// handler does: recognizing nested-loop reentry/exit, and the address at which the innermost
// active loop's restore instructions begin.
func (m *Manager) HandlePcUpdate(pc uint64) {
	current := m.current()
	if current == nil {
		return
	}

	switch current.phase {
	case phaseRecording:
		if m.isNestedLoopStartAddress(pc) {
			current.beginNestedLoop()
			return
		}

		if current.restoreStartSet && pc == current.restoreStart {
			current.enterRestoring()
		}
	case phaseNestedSuspended:
		if m.isNestedLoopEndAddress(pc) {
			current.endNestedLoop()
		}
	}
}

// SetRestoreStartAddress records the address at which loopID's generated restore instructions
// begin. loopID must name the innermost active loop.
func (m *Manager) SetRestoreStartAddress(loopID uint32, addr uint64) error {
	current := m.current()
	if current == nil || current.id != loopID {
		return ErrNested
	}

	current.SetRestoreStartAddress(addr)

	return nil
}

// OnFirstRestoreIteration reports whether loopID's loop is on its first restore iteration.
// loopID must name the innermost active loop.
func (m *Manager) OnFirstRestoreIteration(loopID uint32) bool {
	current := m.current()
	return current != nil && current.id == loopID && current.OnFirstRestoreIteration()
}

// OnLastRestoreIteration reports whether loopID's loop is on its last restore iteration.
func (m *Manager) OnLastRestoreIteration(loopID uint32) bool {
	current := m.current()
	return current != nil && current.id == loopID && current.OnLastRestoreIteration()
}

// HasFinishedRestoreIterations reports whether loopID's loop has generated every restore
// iteration.
func (m *Manager) HasFinishedRestoreIterations(loopID uint32) bool {
	current := m.current()
	return current != nil && current.id == loopID && current.HasFinishedRestoreIterations()
}

// GenerateRestoreInstructions generates one restore iteration's worth of instructions for
// loopID's loop and returns which groups had tracked state to recover. loopID must name the
// innermost active loop and that loop must have reached its restore-start address.
func (m *Manager) GenerateRestoreInstructions(loopID uint32, target bnt.RecoveryTarget) []Group {
	current := m.current()
	if current == nil || current.id != loopID || current.phase != phaseRestoring {
		genstate.Fail("restore-generate-wrong-phase", "loop", loopID)
		return nil
	}

	return current.GenerateRestoreInstructions(target)
}
