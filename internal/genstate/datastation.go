package genstate

import "fmt"

// Slot is a stable (generation, index) handle into a DataStation, replacing the source's raw
// identity-map key with a slot-map reference so a stale handle from a removed entry can be
// detected instead of silently aliasing a reused slot (spec.md §9's DataStation design note).
type Slot struct {
	index      int
	generation uint32
}

// DataStation is a process-wide identity map used to smuggle back-end objects (arbitrary Go
// values) across the front-end language boundary. Entries are removed explicitly by the holder of
// the slot; nothing else invalidates them early.
type DataStation struct {
	entries    []dsEntry
	freeList   []int
}

type dsEntry struct {
	value      any
	generation uint32
	occupied   bool
}

// NewDataStation creates an empty station.
func NewDataStation() *DataStation {
	return &DataStation{}
}

// Put stores value and returns a slot referencing it.
func (d *DataStation) Put(value any) Slot {
	if n := len(d.freeList); n > 0 {
		idx := d.freeList[n-1]
		d.freeList = d.freeList[:n-1]

		d.entries[idx].value = value
		d.entries[idx].occupied = true

		return Slot{index: idx, generation: d.entries[idx].generation}
	}

	d.entries = append(d.entries, dsEntry{value: value, occupied: true})

	return Slot{index: len(d.entries) - 1, generation: 0}
}

// Get resolves a slot to its value. ok is false if the slot is stale (already removed) or was
// never valid.
func (d *DataStation) Get(s Slot) (value any, ok bool) {
	if s.index < 0 || s.index >= len(d.entries) {
		return nil, false
	}

	e := d.entries[s.index]
	if !e.occupied || e.generation != s.generation {
		return nil, false
	}

	return e.value, true
}

// Remove explicitly drops the entry referenced by s, bumping its generation so any other copy of
// the slot is recognized as stale.
func (d *DataStation) Remove(s Slot) error {
	if s.index < 0 || s.index >= len(d.entries) {
		return fmt.Errorf("genstate: invalid data station slot %+v", s)
	}

	e := &d.entries[s.index]
	if !e.occupied || e.generation != s.generation {
		return fmt.Errorf("genstate: stale data station slot %+v", s)
	}

	e.occupied = false
	e.value = nil
	e.generation++
	d.freeList = append(d.freeList, s.index)

	return nil
}

// Len returns the number of currently occupied slots.
func (d *DataStation) Len() int {
	n := 0

	for _, e := range d.entries {
		if e.occupied {
			n++
		}
	}

	return n
}

// Reset drops every entry, invalidating all outstanding slots. Intended as a Generator teardown
// hook (see lifecycle.go), mirroring the source's process-exit cleanup of its identity map.
func (d *DataStation) Reset() {
	d.entries = nil
	d.freeList = nil
}
