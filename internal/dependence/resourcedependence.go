package dependence

import (
	"math/rand"

	"github.com/smoynes/forge/internal/constraint"
)

// direction steers which history pool GetDependenceConstraint draws from: the registers recently
// read (to build a true, read-after-write-style dependency against a write), the registers
// recently written (write-after-write), or both (optimal: whichever creates the tightest
// dependency chain).
type direction int

const (
	directionSource direction = iota
	directionTarget
	directionOptimal
)

type ageEntry struct {
	index uint64
	age   uint64
}

// ResourceDependence tracks recent reads and writes per resource class as an age-indexed history,
// ported from ResourceDependence.h. The source drives window size and source/target/direction
// choices from named ChoiceTree configuration files; since internal/config's choice-tree loader
// isn't part of this generator's scope, those three knobs are constructor options instead
// (documented in DESIGN.md) -- the windowing and snapshot/restore behavior this exists for is
// otherwise unchanged.
type ResourceDependence struct {
	reads  map[string][]ageEntry
	writes map[string][]ageEntry

	nextAge uint64
	window  int

	sourceBias float64 // probability GetDependenceConstraint draws from the read pool
	rand       *rand.Rand
}

// Option configures a ResourceDependence at construction.
type Option func(*ResourceDependence)

// WithWindow bounds how many recent accesses per class are considered.
func WithWindow(n int) Option {
	return func(d *ResourceDependence) { d.window = n }
}

// WithSourceBias sets the probability that GetDependenceConstraint draws from the read history
// rather than the write history when access is Read or Write. ReadWrite access always draws from
// both histories and does not consult the bias.
func WithSourceBias(p float64) Option {
	return func(d *ResourceDependence) { d.sourceBias = p }
}

// WithRand supplies the random source used for direction selection.
func WithRand(r *rand.Rand) Option {
	return func(d *ResourceDependence) { d.rand = r }
}

// NewResourceDependence creates a tracker with a default 8-entry window.
func NewResourceDependence(opts ...Option) *ResourceDependence {
	d := &ResourceDependence{
		reads:      make(map[string][]ageEntry),
		writes:     make(map[string][]ageEntry),
		window:     8,
		sourceBias: 0.5,
		rand:       rand.New(rand.NewSource(1)),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// RecordRead appends a read of index in class to the history, trimming to the configured window.
func (d *ResourceDependence) RecordRead(class string, index uint64) {
	d.reads[class] = trim(append(d.reads[class], ageEntry{index: index, age: d.nextAge}), d.window)
	d.nextAge++
}

// RecordWrite appends a write of index in class to the history, trimming to the configured window.
func (d *ResourceDependence) RecordWrite(class string, index uint64) {
	d.writes[class] = trim(append(d.writes[class], ageEntry{index: index, age: d.nextAge}), d.window)
	d.nextAge++
}

func trim(entries []ageEntry, window int) []ageEntry {
	if len(entries) <= window {
		return entries
	}

	return entries[len(entries)-window:]
}

// GetDependenceConstraint returns the set of recently accessed indices in class that an operand
// choosing access should prefer, to manufacture a register dependency (spec.md §4.5).
func (d *ResourceDependence) GetDependenceConstraint(class string, access Access) *constraint.Set {
	cs := constraint.NewSet()

	for _, e := range d.pool(class, access) {
		cs.AddValue(e.index)
	}

	return cs
}

func (d *ResourceDependence) pool(class string, access Access) []ageEntry {
	switch d.chooseDirection(access) {
	case directionSource:
		return d.reads[class]
	case directionTarget:
		return d.writes[class]
	default:
		out := make([]ageEntry, 0, len(d.reads[class])+len(d.writes[class]))
		out = append(out, d.reads[class]...)
		out = append(out, d.writes[class]...)

		return out
	}
}

func (d *ResourceDependence) chooseDirection(access Access) direction {
	if access == AccessReadWrite {
		return directionOptimal
	}

	if d.rand.Float64() < d.sourceBias {
		return directionSource
	}

	return directionTarget
}

// Snapshot copies the current history so a speculative context can restore dependence bookkeeping
// after a BNT rollback (spec.md §4.6).
func (d *ResourceDependence) Snapshot() *ResourceDependence {
	cp := &ResourceDependence{
		reads:      make(map[string][]ageEntry, len(d.reads)),
		writes:     make(map[string][]ageEntry, len(d.writes)),
		nextAge:    d.nextAge,
		window:     d.window,
		sourceBias: d.sourceBias,
		rand:       d.rand,
	}

	for class, entries := range d.reads {
		cp.reads[class] = append([]ageEntry(nil), entries...)
	}

	for class, entries := range d.writes {
		cp.writes[class] = append([]ageEntry(nil), entries...)
	}

	return cp
}

// Restore replaces d's history with snapshot's, the way a BNT rollback reverts dependence
// bookkeeping to its pre-speculative state.
func (d *ResourceDependence) Restore(snapshot *ResourceDependence) {
	d.reads = snapshot.reads
	d.writes = snapshot.writes
	d.nextAge = snapshot.nextAge
}
