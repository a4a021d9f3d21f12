package diagnostic

import (
	"errors"
	"strings"

	"github.com/samber/lo"
)

// Well-known diagnostic codes.
const (
	CodeMissingField        = "missing-field"
	CodeMissingRelationship = "missing-relationship"
	CodeNamingConvention    = "naming-convention"
	CodeDuplicateAttribute  = "duplicate-attribute"
	CodeDanglingEdge        = "dangling-edge"
	CodeInvalidField        = "invalid-field"
)

// Severity ranks a diagnostic. Its value is the name used in JSON.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is one finding about a record (Object) and optionally one of
// its attributes (Field).
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Object   string   `json:"object,omitempty"`
	Field    string   `json:"field,omitempty"`
}

// String renders "[OBJECT] FIELD: [code] message", leaving out empty parts.
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Object != "" {
		b.WriteString("[" + d.Object + "]")
	}
	if d.Field != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.Field)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	if d.Code != "" {
		b.WriteString("[" + d.Code + "] ")
	}
	b.WriteString(d.Message)
	return b.String()
}

// Diagnostics collects the findings of one run, split by severity.
type Diagnostics struct {
	Errors   []Diagnostic `json:"errors,omitempty"`
	Warnings []Diagnostic `json:"warnings,omitempty"`
	Infos    []Diagnostic `json:"infos,omitempty"`
}

// Add files d under its severity. An unknown severity counts as an error.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case SeverityInfo:
		d.Infos = append(d.Infos, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		diag.Severity = SeverityError
		d.Errors = append(d.Errors, diag)
	}
}

func (d *Diagnostics) AddError(code, message, object, field string) {
	d.Add(Diagnostic{SeverityError, code, message, object, field})
}

func (d *Diagnostics) AddWarning(code, message, object, field string) {
	d.Add(Diagnostic{SeverityWarning, code, message, object, field})
}

func (d *Diagnostics) AddInfo(code, message, object, field string) {
	d.Add(Diagnostic{SeverityInfo, code, message, object, field})
}

func (d *Diagnostics) HasErrors() bool { return len(d.Errors) > 0 }

// Merge appends every finding of other.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// WithCode returns the warnings carrying code.
func (d *Diagnostics) WithCode(code string) []Diagnostic {
	return lo.Filter(d.Warnings, func(w Diagnostic, _ int) bool { return w.Code == code })
}

// Err joins the errors into one, or returns nil when there are none.
func (d *Diagnostics) Err() error {
	if !d.HasErrors() {
		return nil
	}
	return errors.New(strings.Join(lo.Map(d.Errors, func(e Diagnostic, _ int) string { return e.String() }), "; "))
}
