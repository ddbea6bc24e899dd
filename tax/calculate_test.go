package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTax(t *testing.T) {
	tests := []struct {
		name                            string
		gross, pension, homeLoan, c, np float64
		wantOld, wantNew, wantProposed  float64
	}{
		{"old regime example", 900000, 0, 0, 0, 0, 85800, 33800, 0},
		{"new regime example", 800000, 0, 0, 0, 0, 65000, 23400, 0},
		{"proposed marginal relief", 1280000, 0, 0, 0, 0, 188760, 84240, 5000},
		{"new regime below threshold", 600000, 0, 0, 0, 0, 23400, 0, 0},
		{"proposed at relief boundary", 1275000, 0, 0, 0, 0, 187200, 83200, 0},
		{"relief no longer binding", 1350000, 0, 0, 0, 0, 210600, 98800, 74100},
		{"pension and deductions", 1500000, 200000, 150000, 50000, 0, 257400, 184600, 130000},
		{"top bracket", 2500000, 0, 0, 0, 0, 569400, 434200, 319800},
		{"old regime just above threshold", 550001, 0, 0, 0, 0, 13000.208, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldTax, newTax, proposedTax := CalculateTax(tt.gross, tt.pension, tt.homeLoan, tt.c, tt.np)

			assert.InDelta(t, tt.wantOld, oldTax, 1e-6, "old")
			assert.InDelta(t, tt.wantNew, newTax, 1e-6, "new")
			assert.InDelta(t, tt.wantProposed, proposedTax, 1e-6, "proposed")
		})
	}
}

func TestCalculateTax_ZeroIncome(t *testing.T) {
	oldTax, newTax, proposedTax := CalculateTax(0, 0, 0, 0, 0)

	assert.Zero(t, oldTax)
	assert.Zero(t, newTax)
	assert.Zero(t, proposedTax)
}

func TestCalculateTax_DeductionsLargerThanSalary(t *testing.T) {
	oldTax, _, _ := CalculateTax(100000, 0, 500000, 150000, 50000)
	assert.Zero(t, oldTax)
}

func TestCalculateTax_Deterministic(t *testing.T) {
	o1, n1, p1 := CalculateTax(1234567, 89012, 200000, 150000, 50000)
	o2, n2, p2 := CalculateTax(1234567, 89012, 200000, 150000, 50000)

	assert.Equal(t, o1, o2)
	assert.Equal(t, n1, n2)
	assert.Equal(t, p1, p2)
}
