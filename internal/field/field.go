// Package field defines the canonical field record shared by every stage of
// the generation pipeline: grouping, presentation, schema scripts, the
// functional specification, and legacy-form ingestion.
package field

import (
	"fmt"
	"strings"
)

// Area is the zone of an application screen a field belongs to.
type Area string

const (
	AreaHeader Area = "header"
	AreaDetail Area = "detail"
	AreaList   Area = "list"
)

// Type is the on-screen control a field renders as.
type Type string

const (
	TypeTextBox        Type = "textbox"
	TypeCheckbox       Type = "checkbox"
	TypeTableColumn    Type = "tablecol"
	TypeMultiPartText  Type = "multiparttextbox"
	TypeMultiLineText  Type = "multilinetextbox"
	TypeStaticText     Type = "statictext"
	TypePushButton     Type = "pushbutton"
	TypeAttachmentList Type = "attachments"
)

// InputMode controls whether a field is editable and whether it must be set.
type InputMode string

const (
	InputOptional InputMode = "optional"
	InputRequired InputMode = "required"
	InputReadonly InputMode = "readonly"
	InputQuery    InputMode = "query"
)

var (
	knownAreas      = []string{string(AreaHeader), string(AreaDetail), string(AreaList)}
	knownInputModes = []string{string(InputOptional), string(InputRequired), string(InputReadonly), string(InputQuery)}
	knownTypes      = []string{
		string(TypeTextBox), string(TypeCheckbox), string(TypeTableColumn),
		string(TypeMultiPartText), string(TypeMultiLineText), string(TypeStaticText),
		string(TypePushButton), string(TypeAttachmentList),
	}
)

// Definition is one UI field together with the storage attributes needed to
// provision it.
type Definition struct {
	FieldName    string    `json:"fieldName" yaml:"fieldName"`
	Label        string    `json:"label,omitempty" yaml:"label,omitempty"`
	Type         Type      `json:"type,omitempty" yaml:"type,omitempty"`
	InputMode    InputMode `json:"inputMode,omitempty" yaml:"inputMode,omitempty"`
	Lookup       string    `json:"lookup,omitempty" yaml:"lookup,omitempty"`
	Relationship string    `json:"relationship,omitempty" yaml:"relationship,omitempty"`
	Width        Number    `json:"width,omitempty" yaml:"width,omitempty"`
	Filterable   bool      `json:"filterable,omitempty" yaml:"filterable,omitempty"`
	Sortable     bool      `json:"sortable,omitempty" yaml:"sortable,omitempty"`
	Area         Area      `json:"area" yaml:"area"`
	TabName      string    `json:"tabName,omitempty" yaml:"tabName,omitempty"`
	SubTabName   string    `json:"subTabName,omitempty" yaml:"subTabName,omitempty"`

	// Storage-facing attributes.
	MaxType      string `json:"maxType,omitempty" yaml:"maxType,omitempty"`
	Length       Number `json:"length,omitempty" yaml:"length,omitempty"`
	Scale        Number `json:"scale,omitempty" yaml:"scale,omitempty"`
	DBRequired   bool   `json:"dbRequired,omitempty" yaml:"dbRequired,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Persistent   *bool  `json:"persistent,omitempty" yaml:"persistent,omitempty"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	ObjectName   string `json:"objectName,omitempty" yaml:"objectName,omitempty"`
}

// IsPersistent reports whether the field is backed by a storage column.
// An unset flag means persistent.
func (d Definition) IsPersistent() bool {
	return d.Persistent == nil || *d.Persistent
}

// Mode returns the input mode, defaulting to optional.
func (d Definition) Mode() InputMode {
	if d.InputMode == "" {
		return InputOptional
	}
	return d.InputMode
}

// Control returns the control type, defaulting by area: list and detail
// fields render as table columns, header fields as text boxes.
func (d Definition) Control() Type {
	if d.Type != "" {
		return d.Type
	}
	if d.Area == AreaDetail || d.Area == AreaList {
		return TypeTableColumn
	}
	return TypeTextBox
}

// Bound reports whether the control displays an attribute value. Static
// text, push buttons and attachment lists carry no binding.
func (d Definition) Bound() bool {
	switch d.Control() {
	case TypeStaticText, TypePushButton, TypeAttachmentList:
		return false
	}
	return true
}

// DisplayLabel returns the label, falling back to the schema title and then
// the field name.
func (d Definition) DisplayLabel() string {
	switch {
	case d.Label != "":
		return d.Label
	case d.Title != "":
		return d.Title
	default:
		return d.FieldName
	}
}

// Validate checks the structural invariants of a single definition.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.FieldName) == "" {
		return fmt.Errorf("field: fieldName is required")
	}
	if !contains(knownAreas, string(d.Area)) {
		return unknownValue(d.FieldName, "area", string(d.Area), knownAreas)
	}
	if d.Type != "" && !contains(knownTypes, string(d.Type)) {
		return unknownValue(d.FieldName, "type", string(d.Type), knownTypes)
	}
	if d.InputMode != "" && !contains(knownInputModes, string(d.InputMode)) {
		return unknownValue(d.FieldName, "inputMode", string(d.InputMode), knownInputModes)
	}
	if d.Area == AreaDetail && strings.TrimSpace(d.Relationship) == "" {
		return fmt.Errorf("field %s: relationship is required for detail fields", d.FieldName)
	}
	return nil
}

// Bool returns a pointer to b, for populating Persistent.
func Bool(b bool) *bool { return &b }

func unknownValue(fieldName, attr, value string, candidates []string) error {
	err := &ValueError{Field: fieldName, Attribute: attr, Value: value, Allowed: candidates}
	err.Suggestion, _ = closest(value, candidates)
	return err
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
