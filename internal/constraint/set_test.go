package constraint_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smoynes/forge/internal/constraint"
)

var _ = Describe("Set", func() {
	Describe("NewSet", func() {
		It("coalesces overlapping and adjacent constraints", func() {
			s := constraint.NewSet(
				constraint.Range(0, 9),
				constraint.Range(5, 14),
				constraint.Value(15),
			)

			Expect(s.Elements()).To(Equal([]constraint.Constraint{constraint.Range(0, 15)}))
			Expect(s.Size()).To(Equal(uint64(16)))
		})

		It("keeps disjoint, non-adjacent constraints separate", func() {
			s := constraint.NewSet(constraint.Range(0, 9), constraint.Range(20, 29))

			Expect(s.Elements()).To(Equal([]constraint.Constraint{
				constraint.Range(0, 9),
				constraint.Range(20, 29),
			}))
		})

		It("sorts its elements regardless of input order", func() {
			s := constraint.NewSet(constraint.Value(100), constraint.Value(1), constraint.Value(50))

			Expect(s.Elements()).To(Equal([]constraint.Constraint{
				constraint.Value(1),
				constraint.Value(50),
				constraint.Value(100),
			}))
		})
	})

	// Scenario 1: subtracting a range that punches a hole through two adjacent elements.
	Describe("Sub", func() {
		It("removes a cut spanning two elements, leaving the remainders", func() {
			s := constraint.NewSet(constraint.Range(0, 9), constraint.Range(20, 29))
			s.Sub(constraint.NewSet(constraint.Range(5, 24)))

			Expect(s.Elements()).To(Equal([]constraint.Constraint{
				constraint.Range(0, 4),
				constraint.Range(25, 29),
			}))
			Expect(s.Size()).To(Equal(uint64(10)))
		})

		It("removes an exact match entirely", func() {
			s := constraint.NewSet(constraint.Range(0, 9))
			s.Sub(constraint.NewSet(constraint.Range(0, 9)))

			Expect(s.IsEmpty()).To(BeTrue())
		})

		It("leaves the set unchanged when the cut misses entirely", func() {
			s := constraint.NewSet(constraint.Range(0, 9))
			s.Sub(constraint.NewSet(constraint.Range(20, 29)))

			Expect(s.Elements()).To(Equal([]constraint.Constraint{constraint.Range(0, 9)}))
		})

		It("punches a hole in the middle of a single element", func() {
			s := constraint.NewSet(constraint.Range(0, 99))
			s.Sub(constraint.NewSet(constraint.Range(40, 59)))

			Expect(s.Elements()).To(Equal([]constraint.Constraint{
				constraint.Range(0, 39),
				constraint.Range(60, 99),
			}))
		})

		It("handles a cut list spanning several elements at once", func() {
			s := constraint.NewSet(
				constraint.Range(0, 9),
				constraint.Range(10, 19), // merges with the above into [0,19]
			)
			other := constraint.NewSet(constraint.Value(5), constraint.Value(15))
			s.Sub(other)

			Expect(s.Elements()).To(Equal([]constraint.Constraint{
				constraint.Range(0, 4),
				constraint.Range(6, 14),
				constraint.Range(16, 19),
			}))
		})
	})

	Describe("Intersect", func() {
		It("returns only the overlapping portion, leaving operands untouched", func() {
			a := constraint.NewSet(constraint.Range(0, 9), constraint.Range(20, 29))
			b := constraint.NewSet(constraint.Range(5, 24))

			out := a.Intersect(b)

			Expect(out.Elements()).To(Equal([]constraint.Constraint{
				constraint.Range(5, 9),
				constraint.Range(20, 24),
			}))
			Expect(a.Elements()).To(Equal([]constraint.Constraint{
				constraint.Range(0, 9),
				constraint.Range(20, 29),
			}))
		})

		It("returns an empty set when there's no overlap", func() {
			a := constraint.NewSet(constraint.Range(0, 9))
			b := constraint.NewSet(constraint.Range(20, 29))

			Expect(a.Intersect(b).IsEmpty()).To(BeTrue())
		})
	})

	Describe("Contains and ContainsRange", func() {
		s := constraint.NewSet(constraint.Range(0, 9), constraint.Range(20, 29))

		It("finds values inside elements", func() {
			Expect(s.Contains(0)).To(BeTrue())
			Expect(s.Contains(9)).To(BeTrue())
			Expect(s.Contains(25)).To(BeTrue())
		})

		It("rejects values in the gap", func() {
			Expect(s.Contains(15)).To(BeFalse())
		})

		It("requires the whole range to fall within one element", func() {
			Expect(s.ContainsRange(2, 8)).To(BeTrue())
			Expect(s.ContainsRange(5, 25)).To(BeFalse())
		})
	})

	Describe("saturation", func() {
		It("caps Size at 1<<62 without affecting ChooseValue", func() {
			s := constraint.NewSet(constraint.Range(0, uint64(1)<<63))

			Expect(s.Saturated()).To(BeTrue())
			Expect(s.Size()).To(Equal(uint64(1) << 62))

			r := rand.New(rand.NewSource(1))

			v, err := s.ChooseValue(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Contains(v)).To(BeTrue())
		})
	})

	Describe("ChooseValue", func() {
		It("errors on an empty set", func() {
			s := constraint.NewSet()
			_, err := s.ChooseValue(rand.New(rand.NewSource(1)))

			Expect(err).To(MatchError(constraint.ErrEmpty))
		})

		It("only ever returns values the set contains", func() {
			s := constraint.NewSet(constraint.Range(0, 9), constraint.Range(100, 104))
			r := rand.New(rand.NewSource(42))

			for i := 0; i < 200; i++ {
				v, err := s.ChooseValue(r)
				Expect(err).NotTo(HaveOccurred())
				Expect(s.Contains(v)).To(BeTrue())
			}
		})
	})
})
