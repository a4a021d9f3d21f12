package dbc

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matthewbaird/formforge/internal/diagnostic"
	"github.com/matthewbaird/formforge/internal/presentation"
)

// Coverage is the result of comparing presentation bindings with the
// attributes a resource script defines.
type Coverage struct {
	Expected    []string               `json:"expected"`
	Defined     []string               `json:"defined"`
	Missing     []string               `json:"missing"`
	Diagnostics diagnostic.Diagnostics `json:"diagnostics"`
}

// OK reports whether every expected attribute is defined.
func (c Coverage) OK() bool { return len(c.Missing) == 0 }

type scriptDoc struct {
	XMLName    xml.Name `xml:"script"`
	Statements struct {
		Define []tableDoc `xml:"define_table"`
		Add    []tableDoc `xml:"add_attributes"`
	} `xml:"statements"`
}

type tableDoc struct {
	Object string `xml:"object,attr"`
	Attrs  []struct {
		Attribute string `xml:"attribute,attr"`
	} `xml:"attrdef"`
}

// ScriptAttributes parses a rendered resource script and returns the
// OBJECT.ATTRIBUTE pairs it defines.
func ScriptAttributes(script string) ([]string, error) {
	var doc scriptDoc
	if err := xml.Unmarshal([]byte(script), &doc); err != nil {
		return nil, fmt.Errorf("parsing resource script: %w", err)
	}
	var out []string
	for _, group := range [][]tableDoc{doc.Statements.Define, doc.Statements.Add} {
		for _, t := range group {
			for _, a := range t.Attrs {
				out = append(out, strings.ToUpper(t.Object)+"."+strings.ToUpper(a.Attribute))
			}
		}
	}
	return out, nil
}

// CheckCoverage reports every custom, persistent binding whose attribute
// the script does not define. Missing attributes are warnings; only an
// unreadable script is an error.
func CheckCoverage(bindings []presentation.Binding, script string) (Coverage, error) {
	defined, err := ScriptAttributes(script)
	if err != nil {
		return Coverage{}, err
	}
	have := make(map[string]bool, len(defined))
	for _, k := range defined {
		have[k] = true
	}

	cov := Coverage{Defined: defined}
	seen := make(map[string]bool)
	for _, b := range bindings {
		if !b.Expected() {
			continue
		}
		key := b.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		cov.Expected = append(cov.Expected, key)
		if have[key] {
			continue
		}
		cov.Missing = append(cov.Missing, key)
		cov.Diagnostics.AddWarning(diagnostic.CodeMissingField,
			fmt.Sprintf("%s is bound by %s but not defined in the resource script", key, b.ElementID),
			b.Object, b.Attribute)
	}
	return cov, nil
}
