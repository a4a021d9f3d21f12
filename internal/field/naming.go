package field

import "strings"

// DefaultCustomPrefix marks attributes that do not exist on vendor objects.
const DefaultCustomPrefix = "ZZ_"

// Naming resolves attribute and object names for generated artifacts. The
// same policy must be used by every generator of one run so that bindings in
// the presentation match definitions in the scripts.
type Naming struct {
	Prefix string
}

// DefaultNaming returns the naming policy with the default custom prefix.
func DefaultNaming() Naming {
	return Naming{Prefix: DefaultCustomPrefix}
}

func (n Naming) prefix() string {
	if n.Prefix == "" {
		return DefaultCustomPrefix
	}
	return strings.ToUpper(n.Prefix)
}

// IsCustom reports whether name is prefix-marked as a custom attribute.
func (n Naming) IsCustom(name string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(name)), n.prefix())
}

// Attribute returns the generated attribute name for d. On a vendor object,
// a field that declares a storage type is new and receives the custom
// prefix; everything else keeps its own name.
func (n Naming) Attribute(meta Metadata, d Definition) string {
	name := strings.ToUpper(strings.TrimSpace(d.FieldName))
	if !meta.IsStandardObject || d.MaxType == "" || n.IsCustom(name) {
		return name
	}
	if d.ObjectName != "" && !strings.EqualFold(d.ObjectName, meta.MainObject) {
		return name
	}
	return n.prefix() + name
}

// Object returns the record d is stored on: its objectName when set,
// otherwise the application's primary record.
func (n Naming) Object(meta Metadata, d Definition) string {
	if o := strings.TrimSpace(d.ObjectName); o != "" {
		return strings.ToUpper(o)
	}
	return meta.Object()
}

// IsPrimary reports whether d is stored on the primary record.
func (n Naming) IsPrimary(meta Metadata, d Definition) bool {
	return n.Object(meta, d) == meta.Object()
}

// OwnsColumns reports whether attributes on object must be provisioned. A
// new primary object owns all of its attributes; everywhere else only
// prefix-marked attributes are provisioned.
func (n Naming) OwnsColumns(meta Metadata, object, attribute string) bool {
	if !meta.IsStandardObject && strings.EqualFold(object, meta.Object()) {
		return true
	}
	return n.IsCustom(attribute)
}
