package fmb

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/matthewbaird/formforge/internal/diagnostic"
)

// DefaultGroupMarker prefixes items that only frame other items.
const DefaultGroupMarker = "GRP_"

// DefaultSystemLabels are labels of vendor toolbar buttons.
var DefaultSystemLabels = []string{
	"確定", "取消", "離開", "查詢", "存檔",
	"EXIT", "OK", "CANCEL", "QUERY", "SAVE", "HELP", "PRINT",
}

// LabelMatch selects how a button label is compared with the system labels.
type LabelMatch string

const (
	// MatchWord requires a Latin system label to stand as a whole word, so
	// "Book" does not match "OK". Other scripts match anywhere.
	MatchWord LabelMatch = "word"
	// MatchSubstring matches a system label anywhere in the button label.
	MatchSubstring LabelMatch = "substring"
)

// ParseLabelMatch returns the mode named s. An empty s means MatchWord.
func ParseLabelMatch(s string) (LabelMatch, error) {
	switch m := LabelMatch(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MatchWord, nil
	case MatchWord, MatchSubstring:
		return m, nil
	default:
		return "", fmt.Errorf("unknown label match %q: want %s or %s", s, MatchWord, MatchSubstring)
	}
}

// Options tunes a parse. The zero value uses the defaults.
type Options struct {
	Ownership        Ownership
	GroupMarker      string
	SystemLabels     []string
	SystemLabelMatch LabelMatch
}

func (o Options) withDefaults() Options {
	if o.Ownership == nil {
		o.Ownership = PrefixOwnership{IndexTokens: DefaultIndexTokens}
	}
	if o.GroupMarker == "" {
		o.GroupMarker = DefaultGroupMarker
	}
	if o.SystemLabels == nil {
		o.SystemLabels = DefaultSystemLabels
	}
	if o.SystemLabelMatch == "" {
		o.SystemLabelMatch = MatchWord
	}
	return o
}

// Parse extracts the module structure from doc. It never fails: missing
// elements and attributes yield zero values, and items that match no block
// are reported as naming-convention warnings.
func Parse(doc string, opts Options) Module {
	opts = opts.withDefaults()
	var m Module

	if roots := Scan(doc, "FormModule"); len(roots) > 0 {
		m.Name = roots[0].Attr("Name")
		m.Title = roots[0].Attr("Title")
	}

	blockEls := Scan(doc, "Block")
	itemEls := Scan(doc, "Item")

	blocks := make([]Block, len(blockEls))
	names := make([]string, len(blockEls))
	index := make(map[string]int, len(blockEls))
	for i, el := range blockEls {
		blocks[i] = Block{
			Name:            el.Attr("Name"),
			QueryDataSource: el.Attr("QueryDataSourceName"),
			SingleRecord:    el.Bool("SingleRecord", el.Int("RecordsDisplayCount") <= 1),
		}
		names[i] = blocks[i].Name
		index[blocks[i].Name] = i
	}

	for _, el := range itemEls {
		it := item(el)
		if strings.EqualFold(it.ItemType, ItemImage) || hasPrefixFold(it.Name, opts.GroupMarker) {
			continue
		}
		owner, ok := assignBlock(opts.Ownership, names, it.Name)
		if strings.EqualFold(it.ItemType, ItemPushButton) {
			label := firstNonEmpty(el.Attr("Label"), it.Prompt, it.Name)
			if isSystemLabel(label, opts.SystemLabels, opts.SystemLabelMatch) {
				continue
			}
			m.Buttons = append(m.Buttons, Button{
				Name:    it.Name,
				Label:   label,
				Block:   owner,
				Canvas:  it.Canvas,
				TabPage: it.TabPage,
			})
			continue
		}
		if !ok {
			m.Diagnostics.AddWarning(diagnostic.CodeNamingConvention,
				fmt.Sprintf("item %s matches no block name; the ownership policy needs extending for this naming convention", it.Name),
				"", it.Name)
			continue
		}
		b := &blocks[index[owner]]
		b.Items = append(b.Items, it)
	}

	for i := range blocks {
		sort.SliceStable(blocks[i].Items, func(a, b int) bool {
			ia, ib := blocks[i].Items[a], blocks[i].Items[b]
			if ia.Y != ib.Y {
				return ia.Y < ib.Y
			}
			return ia.X < ib.X
		})
	}

	for _, el := range Scan(doc, "Trigger") {
		if containedIn(itemEls, el) >= 0 {
			continue
		}
		tr := Trigger{Name: el.Attr("Name"), Text: el.Attr("TriggerText")}
		if bi := containedIn(blockEls, el); bi >= 0 {
			blocks[bi].Triggers = append(blocks[bi].Triggers, tr)
			continue
		}
		m.Triggers = append(m.Triggers, tr)
	}

	for _, el := range Scan(doc, "Relation") {
		rel := Relation{Name: el.Attr("Name"), DetailBlock: el.Attr("DetailBlock"), MasterBlock: el.Attr("MasterBlock")}
		bi := containedIn(blockEls, el)
		if bi < 0 {
			if i, ok := index[rel.MasterBlock]; ok {
				bi = i
			}
		}
		if bi < 0 {
			continue
		}
		rel.MasterBlock = blocks[bi].Name
		blocks[bi].Relations = append(blocks[bi].Relations, rel)
	}
	m.Blocks = blocks

	m.Canvases, m.TabPages = canvases(doc)
	m.LOVs = lovs(doc)
	m.RecordGroups = recordGroups(doc)
	return m
}

func item(el Element) Item {
	return Item{
		Name:          el.Attr("Name"),
		ItemType:      firstNonEmpty(el.Attr("ItemType"), ItemText),
		Prompt:        el.Attr("Prompt"),
		Hint:          el.Attr("HintText"),
		DataType:      firstNonEmpty(el.Attr("DataType"), "Char"),
		MaxLength:     el.Int("MaximumLength"),
		Required:      el.Bool("Required", false),
		X:             el.Int("XPosition"),
		Y:             el.Int("YPosition"),
		Width:         el.Int("Width"),
		Height:        el.Int("Height"),
		LOV:           el.Attr("LovName"),
		Canvas:        el.Attr("CanvasName"),
		TabPage:       el.Attr("TabPageName"),
		InsertAllowed: el.Bool("InsertAllowed", true),
		UpdateAllowed: el.Bool("UpdateAllowed", true),
		QueryAllowed:  el.Bool("QueryAllowed", true),
		Visible:       el.Bool("Visible", true),
		DatabaseItem:  el.Bool("DatabaseItem", true),
		Column:        el.Attr("ColumnName"),
		MultiLine:     el.Bool("MultiLine", false),
	}
}

func canvases(doc string) ([]Canvas, []TabPage) {
	canvasEls := Scan(doc, "Canvas")
	out := make([]Canvas, len(canvasEls))
	for i, el := range canvasEls {
		out[i] = Canvas{Name: el.Attr("Name"), CanvasType: el.Attr("CanvasType")}
	}
	var pages []TabPage
	for _, el := range Scan(doc, "TabPage") {
		tp := TabPage{Name: el.Attr("Name"), Label: el.Attr("Label")}
		if ci := containedIn(canvasEls, el); ci >= 0 {
			tp.Canvas = out[ci].Name
			out[ci].TabPages = append(out[ci].TabPages, tp)
		}
		pages = append(pages, tp)
	}
	return out, pages
}

// lovs reads lists of values in two passes: elements with content carry
// column mappings, self-closing ones are added only under unseen names.
func lovs(doc string) []LOV {
	els := Scan(doc, "LOV")
	seen := make(map[string]bool)
	var out []LOV
	for _, el := range els {
		if el.SelfClosing || seen[el.Attr("Name")] {
			continue
		}
		l := lov(el)
		for _, c := range Scan(el.Body, "LOVColumnMapping") {
			l.Columns = append(l.Columns, LOVColumn{
				Name:       c.Attr("Name"),
				Title:      c.Attr("Title"),
				ReturnItem: c.Attr("ReturnItem"),
			})
		}
		seen[l.Name] = true
		out = append(out, l)
	}
	for _, el := range els {
		if !el.SelfClosing || seen[el.Attr("Name")] {
			continue
		}
		l := lov(el)
		seen[l.Name] = true
		out = append(out, l)
	}
	return out
}

func lov(el Element) LOV {
	return LOV{
		Name:        el.Attr("Name"),
		Title:       el.Attr("Title"),
		RecordGroup: el.Attr("RecordGroupName"),
		Columns:     []LOVColumn{},
	}
}

func recordGroups(doc string) []RecordGroup {
	var out []RecordGroup
	for _, el := range Scan(doc, "RecordGroup") {
		rg := RecordGroup{
			Name:      el.Attr("Name"),
			QueryType: firstNonEmpty(el.Attr("RecordGroupType"), "Query"),
			Query:     strings.TrimSpace(el.Attr("RecordGroupQuery")),
		}
		for _, c := range Scan(el.Body, "RecordGroupColumn") {
			rg.Columns = append(rg.Columns, c.Attr("Name"))
		}
		out = append(out, rg)
	}
	return out
}

// containedIn returns the index of the innermost element of outer whose
// range contains el, or -1.
func containedIn(outer []Element, el Element) int {
	best := -1
	for i, o := range outer {
		if o.Contains(el) && (best < 0 || o.Start > outer[best].Start) {
			best = i
		}
	}
	return best
}

// isSystemLabel reports whether label contains one of the system labels
// under the given match mode.
func isSystemLabel(label string, system []string, mode LabelMatch) bool {
	upper := strings.ToUpper(label)
	for _, s := range system {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		for from := 0; from < len(upper); {
			i := strings.Index(upper[from:], s)
			if i < 0 {
				break
			}
			start, end := from+i, from+i+len(s)
			if mode == MatchSubstring || !letterAt(upper, start-1) && !letterAt(upper, end) {
				return true
			}
			from = end
		}
	}
	return false
}

func letterAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := rune(s[i])
	return c < unicode.MaxASCII && unicode.IsLetter(c)
}

func hasPrefixFold(s, prefix string) bool {
	return prefix != "" && len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
