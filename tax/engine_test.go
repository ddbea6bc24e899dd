package tax

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultEngine(t *testing.T) *Engine {
	t.Helper()

	store, err := NewInMemoryRegimeStore(DefaultRegimes()...)
	require.NoError(t, err)

	engine, err := NewEngine(store)
	require.NoError(t, err)
	return engine
}

func TestNewEngine_CompilesDefaultRegimes(t *testing.T) {
	engine := newDefaultEngine(t)

	regimes, err := engine.Regimes()
	require.NoError(t, err)
	require.Len(t, regimes, 3)

	assert.Equal(t, OldRegimeID, regimes[0].ID)
	assert.Equal(t, NewRegimeID, regimes[1].ID)
	assert.Equal(t, ProposedRegimeID, regimes[2].ID)
}

func TestNewEngine_RejectsBadDeductions(t *testing.T) {
	tests := []struct {
		name       string
		expression string
	}{
		{"syntax error", "nps +"},
		{"undefined variable", "rent + nps"},
		{"non-double result", "nps > 0.0"},
		{"int literal mixed with double", "nps + 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegime()
			r.Deductions = tt.expression

			store, err := NewInMemoryRegimeStore(r)
			require.NoError(t, err)

			_, err = NewEngine(store)
			assert.Error(t, err)
		})
	}
}

func TestCompileRegime_Expressions(t *testing.T) {
	engine := newDefaultEngine(t)

	expressions := []string{
		"0.0",
		"nps",
		"home_loan_interest + section_80c + nps",
		"math.least(section_80c, 150000.0) + math.least(home_loan_interest, 200000.0)",
		"salary * 0.1",
		"gross_salary > 1000000.0 ? nps : 0.0",
	}

	for _, expr := range expressions {
		assert.NoError(t, engine.CompileRegime("custom", expr), expr)
	}
}

func TestEvaluate_OldRegimeExample(t *testing.T) {
	engine := newDefaultEngine(t)

	result, err := engine.Evaluate(OldRegimeID, Input{GrossSalary: 900000})
	require.NoError(t, err)

	assert.Equal(t, "Old Regime", result.RegimeName)
	assert.InDelta(t, 900000.0, result.Salary, 1e-9)
	assert.InDelta(t, 850000.0, result.TaxableIncome, 1e-9)
	assert.InDelta(t, 85800.0, result.Tax, 1e-6)
	assert.False(t, result.MarginalReliefApplied)
}

func TestEvaluate_OldRegimeItemizedDeductions(t *testing.T) {
	engine := newDefaultEngine(t)

	in := Input{GrossSalary: 1000000, Pension: 100000, HomeLoanInterest: 200000, Section80C: 150000, NPS: 50000}
	result, err := engine.Evaluate(OldRegimeID, in)
	require.NoError(t, err)

	assert.InDelta(t, 400000.0, result.Deductions, 1e-9)
	assert.InDelta(t, 650000.0, result.TaxableIncome, 1e-9)
	assert.InDelta(t, (12500+150000*0.20)*CessMultiplier, result.Tax, 1e-6)
}

func TestEvaluate_NewRegimeIgnoresItemizedDeductions(t *testing.T) {
	engine := newDefaultEngine(t)

	with, err := engine.Evaluate(NewRegimeID, Input{GrossSalary: 800000, Section80C: 150000, NPS: 50000})
	require.NoError(t, err)
	without, err := engine.Evaluate(NewRegimeID, Input{GrossSalary: 800000})
	require.NoError(t, err)

	assert.Zero(t, with.Deductions)
	assert.Equal(t, without.Tax, with.Tax)
	assert.InDelta(t, 725000.0, with.TaxableIncome, 1e-9)
	assert.InDelta(t, 23400.0, with.Tax, 1e-6)
}

func TestEvaluate_ProposedMarginalRelief(t *testing.T) {
	engine := newDefaultEngine(t)

	result, err := engine.Evaluate(ProposedRegimeID, Input{GrossSalary: 1280000})
	require.NoError(t, err)

	assert.InDelta(t, 1205000.0, result.TaxableIncome, 1e-9)
	assert.InDelta(t, 63180.0, result.SlabTax, 1e-6)
	assert.InDelta(t, 5000.0, result.Tax, 1e-9)
	assert.True(t, result.MarginalReliefApplied)
}

func TestEvaluate_ProposedReliefUsesSalaryIncludingPension(t *testing.T) {
	engine := newDefaultEngine(t)

	result, err := engine.Evaluate(ProposedRegimeID, Input{GrossSalary: 1200000, Pension: 80000})
	require.NoError(t, err)

	assert.InDelta(t, 5000.0, result.Tax, 1e-9)
	assert.True(t, result.MarginalReliefApplied)
}

func TestEvaluate_ProposedReliefNotBinding(t *testing.T) {
	engine := newDefaultEngine(t)

	result, err := engine.Evaluate(ProposedRegimeID, Input{GrossSalary: 1350000})
	require.NoError(t, err)

	assert.InDelta(t, 74100.0, result.Tax, 1e-6)
	assert.Equal(t, result.SlabTax, result.Tax)
	assert.False(t, result.MarginalReliefApplied)
}

func TestEvaluate_UnknownRegime(t *testing.T) {
	engine := newDefaultEngine(t)

	_, err := engine.Evaluate("flat", Input{GrossSalary: 1})
	assert.ErrorIs(t, err, ErrRegimeNotFound)
}

func TestEvaluate_NegativeDeductionsClampToZero(t *testing.T) {
	r := NewRegime()
	r.ID = "refund"
	r.Deductions = "0.0 - nps"

	store, err := NewInMemoryRegimeStore(r)
	require.NoError(t, err)
	engine, err := NewEngine(store)
	require.NoError(t, err)

	result, err := engine.Evaluate("refund", Input{GrossSalary: 800000, NPS: 50000})
	require.NoError(t, err)
	assert.Zero(t, result.Deductions)
	assert.InDelta(t, 725000.0, result.TaxableIncome, 1e-9)
}

func TestEvaluate_NonFiniteDeductions(t *testing.T) {
	tests := []struct {
		name       string
		deductions string
	}{
		{"zero over zero", "0.0 / 0.0"},
		{"division by zero", "section_80c / 0.0"},
		{"negative infinity", "0.0 - nps / 0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := OldRegime()
			r.Deductions = tt.deductions

			store, err := NewInMemoryRegimeStore(r)
			require.NoError(t, err)
			engine, err := NewEngine(store)
			require.NoError(t, err)

			result, err := engine.Evaluate(OldRegimeID, Input{GrossSalary: 900000, Section80C: 1, NPS: 1})
			assert.Nil(t, result)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), "finite")
			}

			_, err = engine.Compare(Input{GrossSalary: 900000, Section80C: 1, NPS: 1})
			assert.Error(t, err)
		})
	}
}

func TestEvaluateAll_PreservesOrder(t *testing.T) {
	engine := newDefaultEngine(t)

	results, err := engine.EvaluateAll(Input{GrossSalary: 1280000})
	require.NoError(t, err)
	require.Len(t, results, 3)

	ids := []string{results[0].RegimeID, results[1].RegimeID, results[2].RegimeID}
	assert.Equal(t, []string{OldRegimeID, NewRegimeID, ProposedRegimeID}, ids)
}

func TestCompare_MissingRegimesStayZero(t *testing.T) {
	store, err := NewInMemoryRegimeStore(NewRegime())
	require.NoError(t, err)
	engine, err := NewEngine(store)
	require.NoError(t, err)

	cmp, err := engine.Compare(Input{GrossSalary: 800000})
	require.NoError(t, err)

	assert.Zero(t, cmp.Old)
	assert.InDelta(t, 23400.0, cmp.New, 1e-6)
	assert.Zero(t, cmp.Proposed)
	assert.Len(t, cmp.Results, 1)
}

func TestEngine_ConcurrentEvaluation(t *testing.T) {
	engine := newDefaultEngine(t)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := engine.Compare(Input{GrossSalary: float64(500000 + i*25000), Section80C: 150000})
			if err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Compare failed: %v", err)
	}
}

func TestEngine_CacheMissFallsBackToStore(t *testing.T) {
	store, err := NewInMemoryRegimeStore(DefaultRegimes()...)
	require.NoError(t, err)

	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	cache := NewInMemoryRegimeCache(CacheConfig{TTL: time.Minute})
	cache.now = func() time.Time { return now }

	engine, err := NewEngineWithCache(store, cache)
	require.NoError(t, err)
	require.NotNil(t, cache.Get())

	now = now.Add(2 * time.Minute)
	require.Nil(t, cache.Get())

	results, err := engine.EvaluateAll(Input{GrossSalary: 900000})
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Len(t, cache.Get(), 3, "EvaluateAll should repopulate the cache")
}
