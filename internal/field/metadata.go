package field

import "strings"

// DefaultService is the owning module recorded for newly defined tables.
const DefaultService = "CUSTAPP"

// Metadata describes the application the fields belong to.
type Metadata struct {
	ID           string `json:"id" yaml:"id"`
	KeyAttribute string `json:"keyAttribute,omitempty" yaml:"keyAttribute,omitempty"`
	MainObject   string `json:"mainObject" yaml:"mainObject"`
	Version      string `json:"version,omitempty" yaml:"version,omitempty"`
	OrderBy      string `json:"orderBy,omitempty" yaml:"orderBy,omitempty"`
	WhereClause  string `json:"whereClause,omitempty" yaml:"whereClause,omitempty"`
	BeanClass    string `json:"beanClass,omitempty" yaml:"beanClass,omitempty"`

	// IsStandardObject marks the primary record as a pre-existing vendor
	// object. New attributes on such an object carry the custom prefix.
	IsStandardObject bool `json:"isStandardObject,omitempty" yaml:"isStandardObject,omitempty"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	ScriptName  string `json:"scriptName,omitempty" yaml:"scriptName,omitempty"`
	Service     string `json:"service,omitempty" yaml:"service,omitempty"`
}

// Object returns the upper-cased primary record name.
func (m Metadata) Object() string {
	return strings.ToUpper(strings.TrimSpace(m.MainObject))
}

// ScriptNameOrDefault returns the resource script name, defaulting to
// <MAINOBJECT>_SETUP.
func (m Metadata) ScriptNameOrDefault() string {
	if s := strings.TrimSpace(m.ScriptName); s != "" {
		return s
	}
	return m.Object() + "_SETUP"
}

// ServiceOrDefault returns the owning service for new tables.
func (m Metadata) ServiceOrDefault() string {
	if s := strings.TrimSpace(m.Service); s != "" {
		return strings.ToUpper(s)
	}
	return DefaultService
}

// Key returns the key attribute, defaulting to <MAINOBJECT>ID.
func (m Metadata) Key() string {
	if k := strings.TrimSpace(m.KeyAttribute); k != "" {
		return strings.ToUpper(k)
	}
	return m.Object() + "ID"
}

// AppID returns the application identifier, defaulting to the primary
// record name.
func (m Metadata) AppID() string {
	if id := strings.TrimSpace(m.ID); id != "" {
		return strings.ToUpper(id)
	}
	return m.Object()
}
