// Package restore implements state restore loops: a front-end-generated counted loop body whose
// per-iteration state deltas are recorded so that, once the body has been generated enough times,
// inline instructions can be emitted undoing those deltas in reverse. Ported from
// original_source/base/inc/RestoreLoop.h, spec.md §4.7.
package restore

import (
	"errors"

	"github.com/smoynes/forge/internal/bnt"
	"github.com/smoynes/forge/internal/log"
)

// Group names one of the resource categories a restore loop tracks separately, matching spec.md
// §4.7's enumeration exactly.
type Group string

const (
	GroupGPR     Group = "GPR"
	GroupVecReg  Group = "VECREG"
	GroupPredReg Group = "PREDREG"
	GroupSystem  Group = "System"
	GroupMemory  Group = "Memory"
)

// ErrFastExceptionMode is returned by BeginLoop when the generator is in fast-exception mode,
// which restore loops don't support (spec.md §4.7).
var ErrFastExceptionMode = errors.New("restore: fast-exception mode unsupported")

// ErrNested is returned by EndLoop when loopID does not name the innermost active loop: nested
// loops must be ended from the inside out.
var ErrNested = errors.New("restore: loop is not the innermost active loop")

type phase int

const (
	phaseRecording phase = iota
	phaseNestedSuspended
	phaseRestoring
	phaseFinalised
)

// Loop is one active (or finished) restore loop, ported from RestoreLoop.
type Loop struct {
	id              uint32
	loopRegIndex    uint32
	branchRegIndex  uint32
	simCount        uint32
	restoreCount    uint32
	exclusions      map[Group]bool
	loopBackAddr    uint64
	restoreStartSet bool
	restoreStart    uint64
	curRestoreCount uint32
	phase           phase

	stacks map[Group]*bnt.IncrementalResourcePeStateStack

	log *log.Logger
}

func newLoop(id, loopRegIndex, branchRegIndex, simCount, restoreCount uint32, exclusions []Group, loopBackAddr uint64, l *log.Logger) *Loop {
	excl := make(map[Group]bool, len(exclusions))
	for _, g := range exclusions {
		excl[g] = true
	}

	return &Loop{
		id:             id,
		loopRegIndex:   loopRegIndex,
		branchRegIndex: branchRegIndex,
		simCount:       simCount,
		restoreCount:   restoreCount,
		exclusions:     excl,
		loopBackAddr:   loopBackAddr,
		stacks:         make(map[Group]*bnt.IncrementalResourcePeStateStack),
		log:            l,
	}
}

// IsExcluded reports whether group was named in this loop's exclusion set at BeginLoop.
func (l *Loop) IsExcluded(group Group) bool { return l.exclusions[group] }

// PushResourcePeState records state against group, unless group is excluded or the loop isn't
// currently recording (e.g. a nested loop is active).
func (l *Loop) PushResourcePeState(group Group, state bnt.ResourcePeState) {
	if l.IsExcluded(group) || l.phase != phaseRecording {
		return
	}

	l.stack(group).Push(state)
}

func (l *Loop) stack(group Group) *bnt.IncrementalResourcePeStateStack {
	s, ok := l.stacks[group]
	if !ok {
		s = bnt.NewIncrementalResourcePeStateStack()
		l.stacks[group] = s
	}

	return s
}

// MarkIteration records an iteration boundary in every tracked group's stack, letting a later
// restore unwind one iteration at a time. Manager does not call it; without marks,
// GenerateRestoreInstructions recovers all of a group's tracked state at once.
func (l *Loop) MarkIteration() {
	for _, g := range allGroups {
		if !l.IsExcluded(g) {
			l.stack(g).Mark()
		}
	}
}

// SetRestoreStartAddress records the address at which generated restore instructions begin,
// discovered once the front end has laid out the loop body.
func (l *Loop) SetRestoreStartAddress(addr uint64) {
	l.restoreStart = addr
	l.restoreStartSet = true
}

// GetLoopId returns the loop's id.
func (l *Loop) GetLoopId() uint32 { return l.id }

// GetLoopBackAddress returns the address of the start of the loop body.
func (l *Loop) GetLoopBackAddress() uint64 { return l.loopBackAddr }

// GetRestoreStartAddress returns the recorded restore-instruction start address.
func (l *Loop) GetRestoreStartAddress() uint64 { return l.restoreStart }

// OnFirstRestoreIteration reports whether the loop is currently executing its first restore
// iteration.
func (l *Loop) OnFirstRestoreIteration() bool {
	return l.phase == phaseRestoring && l.curRestoreCount == 0
}

// OnLastRestoreIteration reports whether the loop is currently executing its last restore
// iteration.
func (l *Loop) OnLastRestoreIteration() bool {
	return l.phase == phaseRestoring && l.curRestoreCount+1 == l.restoreCount
}

// HasFinishedRestoreIterations reports whether every restore iteration has been generated.
func (l *Loop) HasFinishedRestoreIterations() bool {
	return l.curRestoreCount >= l.restoreCount
}

// beginNestedLoop suspends recording while a previously-generated nested loop re-executes.
func (l *Loop) beginNestedLoop() { l.phase = phaseNestedSuspended }

// endNestedLoop resumes recording once the nested loop has finished.
func (l *Loop) endNestedLoop() { l.phase = phaseRecording }

// enterRestoring transitions the loop from recording to restoring, at the iteration whose address
// first equals the restore start address.
func (l *Loop) enterRestoring() { l.phase = phaseRestoring }

// GenerateRestoreInstructions recovers one iteration's worth of tracked state (the most recently
// marked, not-yet-recovered slice, across every non-excluded group) against target, advancing the
// restore-iteration counter. It returns the groups whose stacks had any state to recover, for the
// caller to report or log.
func (l *Loop) GenerateRestoreInstructions(target bnt.RecoveryTarget) []Group {
	var touched []Group

	for _, g := range allGroups {
		s, ok := l.stacks[g]
		if !ok {
			continue
		}

		if s.RecoverLastMark(target) {
			touched = append(touched, g)
		}
	}

	l.curRestoreCount++

	if l.HasFinishedRestoreIterations() {
		l.phase = phaseFinalised
	}

	return touched
}

var allGroups = []Group{GroupGPR, GroupVecReg, GroupPredReg, GroupSystem, GroupMemory}
