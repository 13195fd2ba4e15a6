package constraint

import (
	"math"
	"math/rand"
)

// ChooseValue picks a uniformly random value from the set using r. Selection always walks the
// real element list; it never consults the cached, possibly-saturated Size (spec.md §9's
// resolution for sets whose true value_count exceeds the 1<<62 tracking ceiling).
func (s *Set) ChooseValue(r *rand.Rand) (uint64, error) {
	if s.IsEmpty() {
		return 0, ErrEmpty
	}

	idx, offset := s.chooseIndex(r)

	return s.items[idx].Lo + offset, nil
}

// ChooseRange picks a single element of the set at random and returns it whole, rather than a
// single value within it. Elements are weighted by size, the same as ChooseValue, so a 4KiB page
// is no more or less likely to be picked than any of its individual bytes would be collectively.
func (s *Set) ChooseRange(r *rand.Rand) (Constraint, error) {
	if s.IsEmpty() {
		return Constraint{}, ErrEmpty
	}

	idx, _ := s.chooseIndex(r)

	return s.items[idx], nil
}

// chooseIndex walks the element list, weighting each element by its size, and returns the chosen
// element's index along with a uniformly chosen offset within it. The total is summed exactly, not
// saturated: disjoint elements only add up past the uint64 range when the set is the full
// [0, 1<<64-1] range, whose Size wraps to 0.
func (s *Set) chooseIndex(r *rand.Rand) (int, uint64) {
	var total uint64

	for _, c := range s.items {
		total += c.Size()
	}

	// A zero total means the set is the full uint64 range, so any value is a uniform pick.
	if total == 0 {
		return 0, r.Uint64()
	}

	var pick uint64
	if total <= math.MaxInt64 {
		pick = uint64(r.Int63n(int64(total)))
	} else {
		for pick = r.Uint64(); pick >= total; pick = r.Uint64() {
		}
	}

	var running uint64

	for i, c := range s.items {
		sz := c.Size()
		if pick < running+sz {
			return i, pick - running
		}

		running += sz
	}

	last := len(s.items) - 1

	return last, s.items[last].Size() - 1
}
