package bnt

import "container/list"

// Hook is one registered hold on a speculative path: the name of the instruction sequence and
// generator function that should be re-run if the speculation is abandoned and this hook's work
// needs reverting. Ported from BntHookManager.h's BntHook.
type Hook struct {
	ID           uint64
	SequenceName string
	FunctionName string
}

// HookManager is a stack of Hooks, in push order, backed by a list the same way the source's
// std::list<const BntHook*> is: pushes append, reverts pop from the back. Ported from
// BntHookManager.h.
type HookManager struct {
	hooks  *list.List // of *Hook
	nextID uint64
}

// NewHookManager creates an empty hook manager.
func NewHookManager() *HookManager {
	return &HookManager{hooks: list.New()}
}

// AllocateID returns a fresh hook id, never reused within this manager's lifetime.
func (m *HookManager) AllocateID() uint64 {
	m.nextID++
	return m.nextID
}

// PushBntHook registers a new hook for sequenceName/functionName and returns its id.
func (m *HookManager) PushBntHook(sequenceName, functionName string) uint64 {
	id := m.AllocateID()
	m.hooks.PushBack(&Hook{ID: id, SequenceName: sequenceName, FunctionName: functionName})

	return id
}

// RevertBntHook removes hooks from the most recently pushed backwards and returns them in pop
// order (most recent first), for the caller to re-run or undo.
//
// id == 0 reverts only the single most recently pushed hook. id != 0 pops hooks until (and
// including) the one whose id equals id; per spec.md §9's pinned resolution, the loop always pops
// at least one hook once it has read the top id, even if the top id already equals id -- it never
// returns having popped zero hooks when the manager is non-empty.
func (m *HookManager) RevertBntHook(id uint64) []*Hook {
	if m.hooks.Len() == 0 {
		return nil
	}

	if id == 0 {
		return []*Hook{m.popBack()}
	}

	var popped []*Hook

	for m.hooks.Len() > 0 {
		top := m.hooks.Back().Value.(*Hook)
		h := m.popBack()
		popped = append(popped, h)

		if top.ID == id {
			break
		}
	}

	return popped
}

func (m *HookManager) popBack() *Hook {
	e := m.hooks.Back()
	m.hooks.Remove(e)

	return e.Value.(*Hook)
}

// Len returns the number of hooks currently pushed.
func (m *HookManager) Len() int { return m.hooks.Len() }
