package bnt

// IncrementalResourcePeStateStack extends ResourcePeStateStack with named marks, the
// loop-iteration checkpoints internal/restore (C8) needs: a restore loop records a mark at the
// start of each iteration, then, once it knows which iteration it's rolling back to, recovers
// only the states pushed since that mark rather than unwinding the whole stack. Ported from
// ResourcePeState.h's IncrementalResourcePeStateStack (mNextEndIndex there is this file's marks
// slice entries).
type IncrementalResourcePeStateStack struct {
	*ResourcePeStateStack

	marks []int
}

// NewIncrementalResourcePeStateStack creates an empty incremental stack.
func NewIncrementalResourcePeStateStack() *IncrementalResourcePeStateStack {
	return &IncrementalResourcePeStateStack{ResourcePeStateStack: NewResourcePeStateStack()}
}

// Mark records the current stack depth as a restorable checkpoint, returning its index.
func (s *IncrementalResourcePeStateStack) Mark() int {
	s.marks = append(s.marks, s.Len())
	return len(s.marks) - 1
}

// RecoverLastMark recovers every state pushed since the most recently recorded mark and discards
// that mark, the way a restore loop undoes one loop iteration at a time, most recent iteration
// first. If no mark was ever recorded, the whole stack counts as one (un-marked) iteration and is
// recovered in full. It reports false only if there is nothing at all to recover.
func (s *IncrementalResourcePeStateStack) RecoverLastMark(target RecoveryTarget) bool {
	if len(s.marks) == 0 {
		if s.IsEmpty() {
			return false
		}

		s.RecoverResourcePeStates(target)

		return true
	}

	s.RecoverThroughMark(len(s.marks)-1, target)

	return true
}

// RecoverThroughMark pops and recovers every state pushed after mark, in push-reverse order, then
// discards mark and any marks recorded after it. Recovering through a mark older than the most
// recent leaves the stack positioned as if every intervening mark had also been reached.
func (s *IncrementalResourcePeStateStack) RecoverThroughMark(mark int, target RecoveryTarget) {
	if mark < 0 || mark >= len(s.marks) {
		return
	}

	depth := s.marks[mark]

	for i := len(s.states) - 1; i >= depth; i-- {
		s.states[i].Recover(target)
		delete(s.seen, s.states[i].identityKey())
	}

	s.states = s.states[:depth]
	s.marks = s.marks[:mark]
}
