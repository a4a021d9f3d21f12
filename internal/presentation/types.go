// Package presentation renders a grouped tab tree as application
// presentation markup.
//
// Detail tables are never direct children of a tab: a tab with detail
// tables or sub-tabs wraps them in a form-style tab group whose first
// sub-tab holds the tab's own tables, followed by the declared sub-tabs.
package presentation

import (
	"errors"

	"github.com/matthewbaird/formforge/internal/field"
)

// TabGroupStyle is the style token carried by every tab group.
const TabGroupStyle = "form"

// DefaultRowsPerPage is the page size of detail tables without a
// configured size.
const DefaultRowsPerPage = 10

// ErrMissingMainObject is returned when the metadata names no primary
// record.
var ErrMissingMainObject = errors.New("presentation: metadata has no main object")

// Options carries optional rendering configuration.
type Options struct {
	Naming field.Naming
	// Relationships configures detail tables by relationship name.
	Relationships map[string]TableConfig
	// Dialogs are reusable dialog templates rendered after the page.
	Dialogs []Dialog
}

// TableConfig controls how one relationship's detail table is displayed.
type TableConfig struct {
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	RowsPerPage int    `json:"rowsPerPage,omitempty" yaml:"rowsPerPage,omitempty"`
	Filterable  bool   `json:"filterable,omitempty" yaml:"filterable,omitempty"`
	OrderBy     string `json:"orderBy,omitempty" yaml:"orderBy,omitempty"`
}

// Dialog is a reusable dialog template.
type Dialog struct {
	ID           string             `json:"id" yaml:"id"`
	Label        string             `json:"label,omitempty" yaml:"label,omitempty"`
	Relationship string             `json:"relationship,omitempty" yaml:"relationship,omitempty"`
	Fields       []field.Definition `json:"fields" yaml:"fields"`
}

// Definitions returns the dialog's fields as rendered: every dialog field
// sits in the header area.
func (d Dialog) Definitions() []field.Definition {
	out := make([]field.Definition, len(d.Fields))
	for i, f := range d.Fields {
		f.Area = field.AreaHeader
		out[i] = f
	}
	return out
}

// Binding records one attribute reference emitted into the markup. The
// schema generators use the binding list as the set of expected attributes.
type Binding struct {
	ElementID    string     `json:"elementId"`
	Object       string     `json:"object"`
	Relationship string     `json:"relationship,omitempty"`
	Attribute    string     `json:"attribute"`
	Reference    string     `json:"reference"`
	Area         field.Area `json:"area"`
	Custom       bool       `json:"custom"`
	Persistent   bool       `json:"persistent"`
}

// Key returns the OBJECT.ATTRIBUTE pair the binding expects to exist.
func (b Binding) Key() string {
	return b.Object + "." + b.Attribute
}

// Expected reports whether the binding must be backed by a schema
// definition: custom and persistent.
func (b Binding) Expected() bool {
	return b.Custom && b.Persistent
}

// Result is the rendered markup and the bindings it contains.
type Result struct {
	XML      string    `json:"xml"`
	Bindings []Binding `json:"bindings"`
}
