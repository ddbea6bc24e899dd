package tax

// Slab is one progressive tax bracket.
// A nil Size marks the unbounded bracket, which must come last.
type Slab struct {
	Size *float64 `json:"size" mapstructure:"size"`
	Rate float64  `json:"rate" mapstructure:"rate"`
}

// Bounded returns a slab covering the next size units of income.
func Bounded(size, rate float64) Slab {
	return Slab{Size: &size, Rate: rate}
}

// Unbounded returns a slab taking all remaining income.
func Unbounded(rate float64) Slab {
	return Slab{Rate: rate}
}

// MarginalRelief caps the tax so it never exceeds the part of the salary
// above Threshold.
type MarginalRelief struct {
	Threshold float64 `json:"threshold"`
}

// Regime is one immutable set of tax rules
type Regime struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	StandardDeduction float64         `json:"standardDeduction"`
	Threshold         float64         `json:"threshold"`
	Deductions        string          `json:"deductions,omitempty"` // CEL expression over the input amounts
	Slabs             []Slab          `json:"slabs"`
	MarginalRelief    *MarginalRelief `json:"marginalRelief,omitempty"`
}

// Input holds the amounts supplied for a single calculation
type Input struct {
	GrossSalary      float64 `json:"grossSalary"`
	Pension          float64 `json:"pension"`
	HomeLoanInterest float64 `json:"homeLoanInterest"`
	Section80C       float64 `json:"section80c"`
	NPS              float64 `json:"nps"`
}

// Salary is the common base of every regime.
func (in Input) Salary() float64 {
	return in.GrossSalary + in.Pension
}

// Result is the outcome of evaluating one regime
type Result struct {
	RegimeID              string  `json:"regimeId"`
	RegimeName            string  `json:"regimeName"`
	Salary                float64 `json:"salary"`
	Deductions            float64 `json:"deductions"`
	TaxableIncome         float64 `json:"taxableIncome"`
	SlabTax               float64 `json:"slabTax"`
	Tax                   float64 `json:"tax"`
	MarginalReliefApplied bool    `json:"marginalReliefApplied"`
}

// Comparison collects the three default regimes side by side.
type Comparison struct {
	Old      float64   `json:"old"`
	New      float64   `json:"new"`
	Proposed float64   `json:"proposed"`
	Results  []*Result `json:"results"`
}
