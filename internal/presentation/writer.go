package presentation

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/matthewbaird/formforge/internal/grouping"
)

// attr is one name="value" pair. Pairs with an empty value are skipped.
type attr struct {
	name, value string
}

func a(name, value string) attr { return attr{name, value} }

func aInt(name string, v int) attr {
	if v <= 0 {
		return attr{name: name}
	}
	return attr{name, strconv.Itoa(v)}
}

func aBool(name string, v bool) attr {
	if !v {
		return attr{name: name}
	}
	return attr{name, "true"}
}

// xw is an indenting line writer for element markup.
type xw struct {
	bytes.Buffer
	depth int
}

func (w *xw) tag(name string, attrs []attr, selfClose bool) {
	w.WriteString(strings.Repeat("  ", w.depth))
	w.WriteByte('<')
	w.WriteString(name)
	for _, at := range attrs {
		if at.value == "" {
			continue
		}
		w.WriteByte(' ')
		w.WriteString(at.name)
		w.WriteString(`="`)
		w.WriteString(escape(at.value))
		w.WriteByte('"')
	}
	if selfClose {
		w.WriteString("/>\n")
		return
	}
	w.WriteString(">\n")
}

func (w *xw) open(name string, attrs ...attr) {
	w.tag(name, attrs, false)
	w.depth++
}

func (w *xw) close(name string) {
	w.depth--
	w.WriteString(strings.Repeat("  ", w.depth))
	w.WriteString("</" + name + ">\n")
}

func (w *xw) empty(name string, attrs ...attr) {
	w.tag(name, attrs, true)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// ids hands out element ids unique within one document.
type ids map[string]int

func (s ids) next(parts ...string) string {
	var segs []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		segs = append(segs, grouping.Identifier(p))
	}
	base := strings.Join(segs, "_")
	if base == "" {
		base = "ctrl"
	}
	s[base]++
	if n := s[base]; n > 1 {
		return base + "_" + strconv.Itoa(n)
	}
	return base
}
