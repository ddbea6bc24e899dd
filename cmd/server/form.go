package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/liamcoop/taxregimes/amount"
	"github.com/liamcoop/taxregimes/internal/logger"
	"github.com/liamcoop/taxregimes/tax"
)

//go:embed templates/*.html
var templateFS embed.FS

// Form field names
const (
	fieldGrossSalary = "gross_salary"
	fieldPension     = "pension"
	fieldHomeLoanInt = "homeloan_int"
	fieldSec80C      = "sec_80c"
	fieldNPS         = "nps"
)

// formView is what index.html renders. Input fields are echoed back exactly
// as typed, commas included.
type formView struct {
	GrossSalary string
	Pension     string
	HomeLoanInt string
	Sec80C      string
	NPS         string
	Comparison  *tax.Comparison
	Error       string
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"indian": amount.FormatIndian,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func newFormView(values url.Values) formView {
	return formView{
		GrossSalary: values.Get(fieldGrossSalary),
		Pension:     values.Get(fieldPension),
		HomeLoanInt: values.Get(fieldHomeLoanInt),
		Sec80C:      values.Get(fieldSec80C),
		NPS:         values.Get(fieldNPS),
	}
}

// input sanitizes the raw field values into calculator input
func (v formView) input() (tax.Input, error) {
	return parseInput(v.GrossSalary, v.Pension, v.HomeLoanInt, v.Sec80C, v.NPS)
}

// parseInput is shared by the HTML form and the JSON API
func parseInput(grossSalary, pension, homeLoanInt, sec80C, nps string) (tax.Input, error) {
	var in tax.Input
	var err error

	if in.GrossSalary, err = amount.ParseRequired(grossSalary); err != nil {
		return in, fmt.Errorf("gross salary: %w", err)
	}
	if in.Pension, err = amount.Parse(pension); err != nil {
		return in, fmt.Errorf("pension: %w", err)
	}
	if in.HomeLoanInterest, err = amount.Parse(homeLoanInt); err != nil {
		return in, fmt.Errorf("home loan interest: %w", err)
	}
	if in.Section80C, err = amount.Parse(sec80C); err != nil {
		return in, fmt.Errorf("section 80C: %w", err)
	}
	if in.NPS, err = amount.Parse(nps); err != nil {
		return in, fmt.Errorf("NPS: %w", err)
	}

	return in, nil
}

func (s *Server) renderForm(w http.ResponseWriter, status int, view formView) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", view); err != nil {
		logger.Error("failed to render form", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
