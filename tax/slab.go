package tax

// CessMultiplier adds the flat 4% health and education cess.
const CessMultiplier = 1.04

// ComputeTax returns the tax owed on taxableIncome, including cess.
//
// Income below threshold owes nothing at all. Above it, slabs are consumed
// in order, each taking at most its Size at its Rate, and the unbounded
// slab takes whatever is left. Inputs are trusted: slabs must be non-empty
// with the unbounded slab last.
func ComputeTax(taxableIncome, threshold float64, slabs []Slab) float64 {
	if taxableIncome < threshold {
		return 0
	}

	tax := 0.0
	remaining := taxableIncome
	for _, slab := range slabs {
		if slab.Size == nil {
			tax += remaining * slab.Rate
			remaining = 0
			break
		}

		inSlab := min(remaining, *slab.Size)
		tax += inSlab * slab.Rate
		remaining -= inSlab
		if remaining <= 0 {
			break
		}
	}

	return tax * CessMultiplier
}
