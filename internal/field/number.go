package field

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Number is an integer attribute that decodes permissively: JSON and YAML
// numbers and numeric strings are accepted, anything else becomes zero.
type Number int

// ParseNumber converts s to a Number, returning 0 for non-numeric input.
// Fractional values are truncated.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Number(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(int(f))
	}
	return 0
}

// Int returns n as an int.
func (n Number) Int() int { return int(n) }

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		*n = ParseNumber(s)
		return nil
	}
	*n = ParseNumber(string(b))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Number) UnmarshalYAML(node *yaml.Node) error {
	*n = ParseNumber(node.Value)
	return nil
}
