package constraint

// This file implements the Trimmer family from spec.md §4.1: single-pass filters that walk a
// set's elements and decide, per candidate value, {Keep, Replace, Remove}. Each trimmer below
// is applied via rebuild, so the result is always re-normalized to (I1)-(I3) in one pass.
//
// Open question: spec.md's prose for AlignWithSize ("keep elements x with
// x & ~mask == 0") reads as a gloss rather than literal bit arithmetic -- taken literally it
// would require every non-masked bit to be zero, which doesn't correspond to any sense of
// "alignment". This implementation uses the conventional meaning instead: alignMask names the low
// bits that must be zero for x to be "aligned" (x & alignMask == 0), exactly as
// AlignOffsetWithSize and AlignMulDataWithSize already generalize it for a nonzero remainder.

// AlignWithSize keeps only values x in the set where x&alignMask == 0 and at least alignSize
// contiguous values starting at x remain within the same original element. It mutates the set in
// place and returns it.
func (s *Set) AlignWithSize(alignMask, alignSize uint64) *Set {
	return s.AlignOffsetWithSize(alignMask, 0, alignSize)
}

// AlignOffsetWithSize generalizes AlignWithSize to values congruent to alignOffset (rather than
// zero) within the alignment window: x&alignMask == alignOffset.
func (s *Set) AlignOffsetWithSize(alignMask, alignOffset, alignSize uint64) *Set {
	if alignSize == 0 {
		alignSize = 1
	}

	stride := alignMask + 1
	alignOffset &= alignMask

	var result []Constraint

	for _, c := range s.items {
		// First candidate x >= c.Lo with x&alignMask == alignOffset.
		base := c.Lo &^ alignMask
		x := base + alignOffset

		if x < c.Lo {
			x += stride
		}

		for x+alignSize-1 >= x && x+alignSize-1 <= c.Hi {
			result = append(result, Value(x))

			next := x + stride
			if next <= x { // overflow
				break
			}

			x = next
		}
	}

	s.rebuild(result)

	return s
}

// AlignMulDataWithSize keeps values x with x ≡ baseRem (mod mul) and at least alignSize
// contiguous values following x within the same original element.
func (s *Set) AlignMulDataWithSize(mul, baseRem, alignSize uint64) *Set {
	if mul == 0 {
		mul = 1
	}

	if alignSize == 0 {
		alignSize = 1
	}

	baseRem %= mul

	var result []Constraint

	for _, c := range s.items {
		x := c.Lo - (c.Lo % mul) + baseRem
		if x < c.Lo {
			x += mul
		}

		for x+alignSize-1 >= x && x+alignSize-1 <= c.Hi {
			result = append(result, Value(x))

			next := x + mul
			if next <= x {
				break
			}

			x = next
		}
	}

	s.rebuild(result)

	return s
}

// ApplyIndexMask keeps values x where x&mask == idx, then strips the masked bits from each kept
// value (x &^ mask), deduplicating the result. This is the register/operand "index selects a
// field, remaining bits don't matter" filter (spec.md §8 scenario 2).
func (s *Set) ApplyIndexMask(idx, mask uint64) *Set {
	idx &= mask

	var result []Constraint

	for _, c := range s.items {
		lo, hi := c.Lo, c.Hi

		base := lo &^ mask
		x := base | idx

		if x < lo {
			x += mask + 1
		}

		for x <= hi {
			result = append(result, Value(x&^mask))

			next := x + mask + 1
			if next <= x {
				break
			}

			x = next
		}
	}

	s.rebuild(result)

	return s
}
