package main

import (
	"encoding/json"
	"fmt"

	"github.com/liamcoop/taxregimes/tax"
)

// API request and response models

// amountField accepts either a JSON string ("12,80,000") or a JSON number.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = amountField(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number, got %s", b)
	}
	*a = amountField(n.String())
	return nil
}

// CalculateRequest represents the request body for a tax calculation
type CalculateRequest struct {
	GrossSalary      amountField `json:"grossSalary"`
	Pension          amountField `json:"pension,omitempty"`
	HomeLoanInterest amountField `json:"homeLoanInterest,omitempty"`
	Section80C       amountField `json:"section80c,omitempty"`
	NPS              amountField `json:"nps,omitempty"`
}

// FormattedTaxes carries the three amounts with Indian digit grouping
type FormattedTaxes struct {
	Old      string `json:"old"`
	New      string `json:"new"`
	Proposed string `json:"proposed"`
}

// CalculateResponse represents the response for a tax calculation
type CalculateResponse struct {
	ID        string         `json:"id"`
	Input     tax.Input      `json:"input"`
	Old       float64        `json:"old"`
	New       float64        `json:"new"`
	Proposed  float64        `json:"proposed"`
	Formatted FormattedTaxes `json:"formatted"`
	Results   []*tax.Result  `json:"results"`
}

// RegimesListResponse represents the response for listing regimes
type RegimesListResponse struct {
	Regimes []*tax.Regime `json:"regimes"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	RegimesLoaded int    `json:"regimesLoaded"`
	Error         string `json:"error,omitempty"`
}
