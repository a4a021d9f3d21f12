package fmb

import (
	"strconv"
	"strings"
)

// Attr returns the value of the named attribute. A namespace-style prefix
// on the stored name is ignored, so "ovr:Name", "def:Name" and "Name" all
// answer to "Name". Scanning is left to right and the first match wins.
func Attr(attrs []Attribute, name string) string {
	v, _ := lookup(attrs, name)
	return v
}

// AttrInt returns the named attribute as an integer. Missing and
// non-numeric values are 0; fractional values are truncated.
func AttrInt(attrs []Attribute, name string) int {
	v, ok := lookup(attrs, name)
	if !ok {
		return 0
	}
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

// AttrBool returns the named attribute as a boolean. true and yes are
// true, false and no are false, case-insensitively; anything else,
// including a missing attribute, is def.
func AttrBool(attrs []Attribute, name string, def bool) bool {
	v, ok := lookup(attrs, name)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	default:
		return def
	}
}

func lookup(attrs []Attribute, name string) (string, bool) {
	for _, a := range attrs {
		if strings.EqualFold(localName(a.Name), name) {
			return a.Value, true
		}
	}
	return "", false
}

func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Attr returns the named attribute of e.
func (e Element) Attr(name string) string { return Attr(e.Attrs, name) }

// Int returns the named attribute of e as an integer.
func (e Element) Int(name string) int { return AttrInt(e.Attrs, name) }

// Bool returns the named attribute of e as a boolean, or def.
func (e Element) Bool(name string, def bool) bool { return AttrBool(e.Attrs, name, def) }
