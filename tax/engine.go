package tax

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// Variables available to regime deduction expressions. All are doubles.
const (
	VarGrossSalary      = "gross_salary"
	VarPension          = "pension"
	VarHomeLoanInterest = "home_loan_interest"
	VarSection80C       = "section_80c"
	VarNPS              = "nps"
	VarSalary           = "salary"
)

// Engine evaluates the regimes held in a RegimeStore.
// Deduction expressions are compiled once; compiled programs are guarded by
// an RWMutex and are safe to evaluate concurrently.
type Engine struct {
	env      *cel.Env
	store    RegimeStore
	cache    RegimeCache
	programs map[string]cel.Program // regimeID -> compiled deductions
	mu       sync.RWMutex
}

// NewEnv creates the CEL environment regime deduction expressions run in
func NewEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarGrossSalary, cel.DoubleType),
		cel.Variable(VarPension, cel.DoubleType),
		cel.Variable(VarHomeLoanInterest, cel.DoubleType),
		cel.Variable(VarSection80C, cel.DoubleType),
		cel.Variable(VarNPS, cel.DoubleType),
		cel.Variable(VarSalary, cel.DoubleType),
		ext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// NewEngine creates an engine over store with the default cache
func NewEngine(store RegimeStore) (*Engine, error) {
	return NewEngineWithCache(store, NewInMemoryRegimeCache(DefaultCacheConfig()))
}

// NewEngineWithCache creates an engine and compiles every regime in store
func NewEngineWithCache(store RegimeStore, cache RegimeCache) (*Engine, error) {
	env, err := NewEnv()
	if err != nil {
		return nil, err
	}

	en := &Engine{
		env:      env,
		store:    store,
		cache:    cache,
		programs: make(map[string]cel.Program),
	}

	if err := en.CompileAllRegimes(); err != nil {
		return nil, fmt.Errorf("failed to compile regimes: %w", err)
	}

	return en, nil
}

// CompileRegime compiles a regime's deduction expression.
// An empty expression means the regime allows no itemized deductions.
func (en *Engine) CompileRegime(regimeID, expression string) error {
	if expression == "" {
		en.mu.Lock()
		delete(en.programs, regimeID)
		en.mu.Unlock()
		return nil
	}

	ast, issues := en.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile error: %w", issues.Err())
	}

	if !ast.OutputType().IsExactType(cel.DoubleType) {
		return fmt.Errorf("deductions must evaluate to double, got %s", ast.OutputType())
	}

	prog, err := en.env.Program(ast, cel.CostLimit(100000))
	if err != nil {
		return fmt.Errorf("program creation error: %w", err)
	}

	en.mu.Lock()
	en.programs[regimeID] = prog
	en.mu.Unlock()

	return nil
}

// CompileAllRegimes compiles every regime from the store
// and populates the cache with the regime list
func (en *Engine) CompileAllRegimes() error {
	regimes, err := en.store.List()
	if err != nil {
		return err
	}

	for _, r := range regimes {
		if err := en.CompileRegime(r.ID, r.Deductions); err != nil {
			return fmt.Errorf("failed to compile regime %s: %w", r.ID, err)
		}
	}

	en.cache.Set(regimes)

	return nil
}

// Regimes returns the configured regimes in display order
func (en *Engine) Regimes() ([]*Regime, error) {
	regimes := en.cache.Get()
	if regimes != nil {
		return regimes, nil
	}

	regimes, err := en.store.List()
	if err != nil {
		return nil, err
	}
	en.cache.Set(regimes)
	return regimes, nil
}

// Evaluate computes the tax owed under a single regime
func (en *Engine) Evaluate(regimeID string, in Input) (*Result, error) {
	r, err := en.store.Get(regimeID)
	if err != nil {
		return nil, err
	}

	return en.evaluate(r, in)
}

// EvaluateAll evaluates every regime in display order
func (en *Engine) EvaluateAll(in Input) ([]*Result, error) {
	regimes, err := en.Regimes()
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(regimes))
	for _, r := range regimes {
		result, err := en.evaluate(r, in)
		if err != nil {
			return nil, fmt.Errorf("regime %s: %w", r.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// Compare evaluates all regimes and exposes the Old, New and Proposed
// amounts directly. Regimes missing from the store leave their field at 0.
func (en *Engine) Compare(in Input) (*Comparison, error) {
	results, err := en.EvaluateAll(in)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{Results: results}
	for _, result := range results {
		switch result.RegimeID {
		case OldRegimeID:
			cmp.Old = result.Tax
		case NewRegimeID:
			cmp.New = result.Tax
		case ProposedRegimeID:
			cmp.Proposed = result.Tax
		}
	}

	return cmp, nil
}

func (en *Engine) evaluate(r *Regime, in Input) (*Result, error) {
	salary := in.Salary()

	deductions, err := en.deductions(r, in, salary)
	if err != nil {
		return nil, err
	}

	taxable := max(salary-deductions-r.StandardDeduction, 0)
	slabTax := ComputeTax(taxable, r.Threshold, r.Slabs)

	result := &Result{
		RegimeID:      r.ID,
		RegimeName:    r.Name,
		Salary:        salary,
		Deductions:    deductions,
		TaxableIncome: taxable,
		SlabTax:       slabTax,
		Tax:           slabTax,
	}

	if r.MarginalRelief != nil && salary > r.MarginalRelief.Threshold {
		if capped := salary - r.MarginalRelief.Threshold; capped < slabTax {
			result.Tax = capped
			result.MarginalReliefApplied = true
		}
	}

	return result, nil
}

func (en *Engine) deductions(r *Regime, in Input, salary float64) (float64, error) {
	if r.Deductions == "" {
		return 0, nil
	}

	en.mu.RLock()
	prog, exists := en.programs[r.ID]
	en.mu.RUnlock()

	if !exists {
		return 0, fmt.Errorf("regime %s is not compiled", r.ID)
	}

	out, _, err := prog.Eval(map[string]any{
		VarGrossSalary:      in.GrossSalary,
		VarPension:          in.Pension,
		VarHomeLoanInterest: in.HomeLoanInterest,
		VarSection80C:       in.Section80C,
		VarNPS:              in.NPS,
		VarSalary:           salary,
	})
	if err != nil {
		return 0, fmt.Errorf("deductions evaluation failed: %w", err)
	}

	d, ok := out.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("deductions evaluated to %T, want float64", out.Value())
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("deductions evaluated to %v, want a finite amount", d)
	}

	return max(d, 0), nil
}
