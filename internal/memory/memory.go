// Package memory implements the generator's per-bank memory model: a sparse byte array with a
// per-byte attribute map, and the three ConstraintSets (Free, Usable, Shared) that track which
// physical addresses are available, legal to hand out, and visible across harts.
package memory

import (
	"errors"
	"fmt"

	"github.com/smoynes/forge/internal/constraint"
	"github.com/smoynes/forge/internal/log"
)

// Attr is a per-byte flag bitset, mirroring the source's per-byte attribute byte.
type Attr uint8

const (
	AttrInitialized Attr = 1 << iota
	AttrShared
	AttrInstruction
	AttrReserved
)

var (
	// ErrOutOfRange is returned when an address falls outside the bank's configured size.
	ErrOutOfRange = errors.New("memory: address out of range")

	// ErrNotFree is returned when a caller tries to reserve bytes that are not in Free.
	ErrNotFree = errors.New("memory: range not free")
)

// Bank is one named physical memory bank: a byte array, initialized on demand, alongside the
// ConstraintSets tracking its Free, Usable, and Shared address ranges.
type Bank struct {
	name string
	size uint64

	bytes map[uint64]byte
	attrs map[uint64]Attr

	free   *constraint.Set
	usable *constraint.Set
	shared *constraint.Set

	log *log.Logger
}

// Option configures a Bank at construction.
type Option func(*Bank)

// WithLogger attaches a logger to the bank.
func WithLogger(l *log.Logger) Option {
	return func(b *Bank) { b.log = l }
}

// NewBank creates a bank of the given size, with every byte free and usable.
func NewBank(name string, size uint64, opts ...Option) *Bank {
	b := &Bank{
		name:   name,
		size:   size,
		bytes:  make(map[uint64]byte),
		attrs:  make(map[uint64]Attr),
		free:   constraint.NewSet(constraint.Range(0, size-1)),
		usable: constraint.NewSet(constraint.Range(0, size-1)),
		shared: constraint.NewSet(),
		log:    log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Name returns the bank's name.
func (b *Bank) Name() string { return b.name }

// Size returns the bank's configured size in bytes.
func (b *Bank) Size() uint64 { return b.size }

// Free returns the set of addresses not yet reserved.
func (b *Bank) Free() *constraint.Set { return b.free }

// Usable returns the set of addresses legal to hand out under the bank's current policy.
func (b *Bank) Usable() *constraint.Set { return b.usable }

// Shared returns the set of addresses marked visible across harts.
func (b *Bank) Shared() *constraint.Set { return b.shared }

func (b *Bank) checkRange(pa, length uint64) error {
	if length == 0 {
		return nil
	}

	if pa+length-1 >= b.size {
		return fmt.Errorf("%w: bank %q, pa: %#x, len: %d", ErrOutOfRange, b.name, pa, length)
	}

	return nil
}

// Reserve removes [pa, pa+length) from Free, the way a page allocation claims physical storage
// for a newly mapped page. It fails if any byte in the range is already reserved.
func (b *Bank) Reserve(pa, length uint64) error {
	if err := b.checkRange(pa, length); err != nil {
		return err
	}

	region := constraint.NewSet(constraint.Range(pa, pa+length-1))
	if !b.free.ContainsRange(pa, pa+length-1) {
		return fmt.Errorf("%w: bank %q, pa: %#x, len: %d", ErrNotFree, b.name, pa, length)
	}

	b.free.Sub(region)

	return nil
}

// Read copies up to len(buf) bytes starting at pa into buf, returning a mask of which positions
// were initialized. Uninitialized bytes leave the caller's buffer untouched at that position,
// per spec: a partially-initialized read is never an error.
func (b *Bank) Read(pa uint64, buf []byte) (initialized []bool, err error) {
	if err := b.checkRange(pa, uint64(len(buf))); err != nil {
		return nil, err
	}

	initialized = make([]bool, len(buf))

	for i := range buf {
		addr := pa + uint64(i)
		if b.attrs[addr]&AttrInitialized != 0 {
			buf[i] = b.bytes[addr]
			initialized[i] = true
		}
	}

	return initialized, nil
}

// Write copies buf into the bank starting at pa, marking every written byte Initialized.
func (b *Bank) Write(pa uint64, buf []byte, instr bool) error {
	if err := b.checkRange(pa, uint64(len(buf))); err != nil {
		return err
	}

	for i, v := range buf {
		addr := pa + uint64(i)
		b.bytes[addr] = v

		attr := b.attrs[addr] | AttrInitialized
		if instr {
			attr |= AttrInstruction
		}

		b.attrs[addr] = attr
	}

	b.log.Debug("memory write", "bank", b.name, "pa", pa, "len", len(buf))

	return nil
}

// MarkShared adds [pa, pa+length) to the Shared set. Marking shared is monotonic: once shared,
// always shared, matching the source's semantics.
func (b *Bank) MarkShared(pa, length uint64) error {
	if err := b.checkRange(pa, length); err != nil {
		return err
	}

	b.shared.AddRange(pa, pa+length-1)

	for i := uint64(0); i < length; i++ {
		addr := pa + i
		b.attrs[addr] |= AttrShared
	}

	return nil
}

// IsInitialized reports whether every byte in [pa, pa+length) has been written.
func (b *Bank) IsInitialized(pa, length uint64) bool {
	for i := uint64(0); i < length; i++ {
		if b.attrs[pa+i]&AttrInitialized == 0 {
			return false
		}
	}

	return true
}

// RestrictUsable intersects the bank's Usable set with policy, the way a data/access/thread/reuse
// policy filter narrows which free addresses are actually legal to hand to an allocator.
func (b *Bank) RestrictUsable(policy *constraint.Set) {
	b.usable = b.usable.Intersect(policy)
}
