package tax

// IDs of the built-in regimes
const (
	OldRegimeID      = "old"
	NewRegimeID      = "new"
	ProposedRegimeID = "proposed"
)

// DefaultRegimes returns the Old, New and Proposed rule tables in display order.
// Every call builds fresh values so callers can never share slab slices.
func DefaultRegimes() []*Regime {
	return []*Regime{OldRegime(), NewRegime(), ProposedRegime()}
}

// OldRegime allows itemized deductions on top of a 50,000 standard deduction.
func OldRegime() *Regime {
	return &Regime{
		ID:                OldRegimeID,
		Name:              "Old Regime",
		StandardDeduction: 50000,
		Threshold:         500001,
		Deductions:        "home_loan_interest + section_80c + nps",
		Slabs: []Slab{
			Bounded(250000, 0.00),
			Bounded(250000, 0.05),
			Bounded(500000, 0.20),
			Unbounded(0.30),
		},
	}
}

// NewRegime has a 75,000 standard deduction and no itemized deductions.
func NewRegime() *Regime {
	return &Regime{
		ID:                NewRegimeID,
		Name:              "New Regime",
		StandardDeduction: 75000,
		Threshold:         700001,
		Slabs: []Slab{
			Bounded(300000, 0.00),
			Bounded(400000, 0.05),
			Bounded(300000, 0.10),
			Bounded(200000, 0.15),
			Bounded(300000, 0.20),
			Unbounded(0.30),
		},
	}
}

// ProposedRegime raises the exemption to 12,00,000 and adds marginal relief
// above a salary of 12,75,000.
func ProposedRegime() *Regime {
	return &Regime{
		ID:                ProposedRegimeID,
		Name:              "Proposed Regime",
		StandardDeduction: 75000,
		Threshold:         1200001,
		Slabs: []Slab{
			Bounded(400000, 0.00),
			Bounded(400000, 0.05),
			Bounded(400000, 0.10),
			Bounded(400000, 0.15),
			Bounded(400000, 0.20),
			Bounded(400000, 0.25),
			Unbounded(0.30),
		},
		MarginalRelief: &MarginalRelief{Threshold: 1275000},
	}
}
