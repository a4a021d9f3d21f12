package fmb

import (
	"html"
	"strings"
	"unicode/utf8"
)

// Element is one occurrence of a tag in a form document.
type Element struct {
	Tag         string
	Attrs       []Attribute
	Body        string // text between the opening and closing tag
	SelfClosing bool
	Start       int // byte offset of '<'
	End         int // byte offset just past the element
	Line        int // 1-based
	Col         int // 1-based
}

// Attribute is one name="value" pair in document order. Name keeps any
// namespace prefix.
type Attribute struct {
	Name  string
	Value string
}

// Contains reports whether other starts inside e.
func (e Element) Contains(other Element) bool {
	return other.Start > e.Start && other.Start < e.End
}

// scanner walks a document looking for elements of one tag. Malformed
// markup never stops the scan; an unterminated element ends at EOF.
type scanner struct {
	input string
	pos   int // current byte position
	line  int // 1-based
	col   int // 1-based
}

func newScanner(input string) *scanner {
	return &scanner{input: input, line: 1, col: 1}
}

// Scan returns every element named tag in doc, in document order.
func Scan(doc, tag string) []Element {
	return newScanner(doc).elements(tag)
}

// advance moves forward by one rune.
func (s *scanner) advance() {
	if s.pos >= len(s.input) {
		return
	}
	r, size := utf8.DecodeRuneInString(s.input[s.pos:])
	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

// advanceTo moves forward to byte offset p, keeping line and column.
func (s *scanner) advanceTo(p int) {
	for s.pos < p && s.pos < len(s.input) {
		s.advance()
	}
}

func (s *scanner) elements(tag string) []Element {
	var out []Element
	open := "<" + tag
	for {
		idx := indexOpen(s.input, s.pos, open)
		if idx < 0 {
			return out
		}
		s.advanceTo(idx)
		el, next := s.element(tag, idx)
		out = append(out, el)
		// Keep scanning inside the body so nested elements of the same tag
		// are found as well.
		bodyStart := idx + len(open)
		if next > bodyStart && !el.SelfClosing {
			next = bodyStart
		}
		s.advanceTo(next)
	}
}

// element reads the element whose '<' is at start.
func (s *scanner) element(tag string, start int) (Element, int) {
	el := Element{Tag: tag, Start: start, Line: s.line, Col: s.col}
	attrStart := start + 1 + len(tag)
	tagEnd := endOfTag(s.input, attrStart)
	raw := s.input[attrStart:tagEnd]
	if strings.HasSuffix(raw, "/") {
		el.SelfClosing = true
		raw = raw[:len(raw)-1]
	}
	el.Attrs = parseAttrs(raw)

	afterTag := tagEnd + 1
	if afterTag > len(s.input) {
		afterTag = len(s.input)
	}
	if el.SelfClosing {
		el.End = afterTag
		return el, afterTag
	}

	closeAt, closeEnd := matchClose(s.input, afterTag, tag)
	el.Body = s.input[afterTag:closeAt]
	el.End = closeEnd
	return el, closeEnd
}

// indexOpen finds the next "<tag" at or after from that is followed by a
// tag boundary, so "<LOV" does not match "<LOVColumnMapping".
func indexOpen(input string, from int, open string) int {
	for from < len(input) {
		i := strings.Index(input[from:], open)
		if i < 0 {
			return -1
		}
		at := from + i
		end := at + len(open)
		if end >= len(input) || isTagBoundary(input[end]) {
			return at
		}
		from = end
	}
	return -1
}

func isTagBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '/' || c == '>'
}

// endOfTag returns the offset of the '>' closing the tag that starts
// attribute text at from. Quoted values may contain '>'.
func endOfTag(input string, from int) int {
	var quote byte
	for i := from; i < len(input); i++ {
		c := input[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	return len(input)
}

// matchClose finds the closing tag for an element whose body starts at
// from, counting nested elements of the same tag. It returns the offset of
// the closing tag and the offset just past it.
func matchClose(input string, from int, tag string) (int, int) {
	open, closing := "<"+tag, "</"+tag+">"
	depth := 1
	pos := from
	for pos < len(input) {
		c := strings.Index(input[pos:], closing)
		if c < 0 {
			return len(input), len(input)
		}
		closeAt := pos + c
		// Count nested non-self-closing opens before this close.
		for o := indexOpen(input, pos, open); o >= 0 && o < closeAt; o = indexOpen(input, o+len(open), open) {
			e := endOfTag(input, o+len(open))
			if e > 0 && e <= len(input) && input[e-1] != '/' {
				depth++
			}
		}
		depth--
		if depth == 0 {
			return closeAt, closeAt + len(closing)
		}
		pos = closeAt + len(closing)
	}
	return len(input), len(input)
}

// parseAttrs splits raw attribute text into pairs. Unquoted values run to
// the next whitespace. Values are entity-unescaped.
func parseAttrs(raw string) []Attribute {
	var out []Attribute
	i := 0
	for i < len(raw) {
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		nameStart := i
		for i < len(raw) && raw[i] != '=' && !isSpace(raw[i]) {
			i++
		}
		name := raw[nameStart:i]
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			if name != "" {
				out = append(out, Attribute{Name: name})
			}
			continue
		}
		i++ // '='
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		var value string
		if i < len(raw) && (raw[i] == '"' || raw[i] == '\'') {
			q := raw[i]
			i++
			vStart := i
			for i < len(raw) && raw[i] != q {
				i++
			}
			value = raw[vStart:i]
			if i < len(raw) {
				i++
			}
		} else {
			vStart := i
			for i < len(raw) && !isSpace(raw[i]) {
				i++
			}
			value = raw[vStart:i]
		}
		if name != "" {
			out = append(out, Attribute{Name: name, Value: html.UnescapeString(value)})
		}
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
