package tax

import "sync"

var defaultEngine = sync.OnceValue(func() *Engine {
	store, err := NewInMemoryRegimeStore(DefaultRegimes()...)
	if err != nil {
		panic("tax: invalid default regimes: " + err.Error())
	}
	en, err := NewEngine(store)
	if err != nil {
		panic("tax: default regimes do not compile: " + err.Error())
	}
	return en
})

// DefaultEngine returns the shared engine over DefaultRegimes.
func DefaultEngine() *Engine {
	return defaultEngine()
}

// CalculateTax returns the tax owed under the Old, New and Proposed regimes.
func CalculateTax(grossSalary, pension, homeLoanInterest, section80C, nps float64) (oldTax, newTax, proposedTax float64) {
	cmp, err := DefaultEngine().Compare(Input{
		GrossSalary:      grossSalary,
		Pension:          pension,
		HomeLoanInterest: homeLoanInterest,
		Section80C:       section80C,
		NPS:              nps,
	})
	if err != nil {
		// Only reachable if a built-in expression stops evaluating to a double.
		panic("tax: default regimes failed to evaluate: " + err.Error())
	}
	return cmp.Old, cmp.New, cmp.Proposed
}
