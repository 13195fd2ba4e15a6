package constraint_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smoynes/forge/internal/constraint"
)

var _ = Describe("alignment trimmers", func() {
	Describe("AlignWithSize", func() {
		It("keeps only addresses aligned to the mask with room for size bytes", func() {
			s := constraint.NewSet(constraint.Range(0, 19))
			s.AlignWithSize(3, 4) // 4-byte alignment, needs 4 bytes following

			Expect(s.Elements()).To(Equal([]constraint.Constraint{
				constraint.Value(0),
				constraint.Value(4),
				constraint.Value(8),
				constraint.Value(12),
				constraint.Value(16),
			}))
		})

		It("drops a trailing aligned address with no room left", func() {
			s := constraint.NewSet(constraint.Range(0, 17))
			s.AlignWithSize(3, 4)

			// 16 is the last candidate with 16..19 in range, but the element ends at 17, so it's
			// dropped along with anything past it.
			Expect(s.Elements()).To(Equal([]constraint.Constraint{
				constraint.Value(0),
				constraint.Value(4),
				constraint.Value(8),
				constraint.Value(12),
			}))
		})
	})

	Describe("AlignOffsetWithSize", func() {
		It("keeps addresses congruent to the offset within the alignment window", func() {
			s := constraint.NewSet(constraint.Range(0, 19))
			s.AlignOffsetWithSize(3, 2, 1) // x%4==2

			Expect(s.Elements()).To(Equal([]constraint.Constraint{
				constraint.Value(2),
				constraint.Value(6),
				constraint.Value(10),
				constraint.Value(14),
				constraint.Value(18),
			}))
		})
	})

	Describe("AlignMulDataWithSize", func() {
		It("keeps addresses congruent to baseRem modulo mul", func() {
			s := constraint.NewSet(constraint.Range(0, 29))
			s.AlignMulDataWithSize(10, 3, 1)

			Expect(s.Elements()).To(Equal([]constraint.Constraint{
				constraint.Value(3),
				constraint.Value(13),
				constraint.Value(23),
			}))
		})
	})

	// Scenario 2: an index-masked register field.
	Describe("ApplyIndexMask", func() {
		It("keeps matching values and strips the masked bits", func() {
			s := constraint.NewSet(constraint.Range(0, 31))
			s.ApplyIndexMask(1, 0x3) // low 2 bits must equal 1

			Expect(s.Elements()).To(Equal([]constraint.Constraint{
				constraint.Value(0),
				constraint.Value(4),
				constraint.Value(8),
				constraint.Value(12),
				constraint.Value(16),
				constraint.Value(20),
				constraint.Value(24),
				constraint.Value(28),
			}))
		})
	})
})
