package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSlabs() []Slab {
	return []Slab{
		Bounded(100, 0.00),
		Bounded(100, 0.10),
		Bounded(200, 0.20),
		Unbounded(0.50),
	}
}

func TestComputeTax_BelowThresholdIsZero(t *testing.T) {
	slabs := testSlabs()

	for _, income := range []float64{0, 1, 149, 249.99} {
		assert.Zero(t, ComputeTax(income, 250, slabs), "income %v", income)
	}
}

func TestComputeTax_ThresholdIsACliff(t *testing.T) {
	slabs := testSlabs()

	// At the threshold the whole income is taxed, not just the excess.
	got := ComputeTax(250, 250, slabs)
	want := (100*0.10 + 50*0.20) * CessMultiplier
	assert.InDelta(t, want, got, 1e-9)
}

func TestComputeTax_WithinFiniteBrackets(t *testing.T) {
	slabs := testSlabs()

	tests := []struct {
		name   string
		income float64
		want   float64
	}{
		{"first bracket only", 80, 0},
		{"exactly first bracket", 100, 0},
		{"into second bracket", 150, 50 * 0.10},
		{"into third bracket", 300, 100*0.10 + 100*0.20},
		{"all finite brackets", 400, 100*0.10 + 200*0.20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTax(tt.income, 0, slabs)
			assert.InDelta(t, tt.want*CessMultiplier, got, 1e-9)
		})
	}
}

func TestComputeTax_UnboundedTakesRemainder(t *testing.T) {
	got := ComputeTax(1000, 0, testSlabs())
	want := (100*0.10 + 200*0.20 + 600*0.50) * CessMultiplier
	assert.InDelta(t, want, got, 1e-9)
}

func TestComputeTax_SingleUnboundedSlab(t *testing.T) {
	got := ComputeTax(1000, 0, []Slab{Unbounded(0.25)})
	assert.InDelta(t, 260.0, got, 1e-9)
}

func TestComputeTax_Monotonic(t *testing.T) {
	for _, r := range DefaultRegimes() {
		t.Run(r.ID, func(t *testing.T) {
			prev := 0.0
			for income := 0.0; income <= 5_000_000; income += 12_500 {
				got := ComputeTax(income, r.Threshold, r.Slabs)
				assert.GreaterOrEqual(t, got, prev, "tax decreased at income %v", income)
				prev = got
			}
		})
	}
}

func TestComputeTax_DoesNotMutateSlabs(t *testing.T) {
	slabs := testSlabs()
	before := *slabs[1].Size

	ComputeTax(10_000, 0, slabs)

	assert.Equal(t, before, *slabs[1].Size)
}
