// Package grouping partitions a flat field list into the tab tree consumed
// by the presentation generator and the functional specification.
//
// A tree is rebuilt from scratch on every call; returned values are never
// modified afterwards, so several generators may read one tree at once.
package grouping

import (
	"fmt"
	"strings"

	"github.com/matthewbaird/formforge/internal/diagnostic"
	"github.com/matthewbaird/formforge/internal/field"
)

// DefaultMainDetailLabel labels the implicit primary-detail sub-tab.
const DefaultMainDetailLabel = "主區域"

// DefaultTabName is used for header and detail fields without a tab name.
const DefaultTabName = "Main"

// Options tunes a grouping pass.
type Options struct {
	// MainDetailLabels overrides the primary-detail label per tab name.
	MainDetailLabels map[string]string
	// DefaultMainDetailLabel is applied to tabs with detail tables and no
	// override. Empty means DefaultMainDetailLabel.
	DefaultMainDetailLabel string
}

// Layout is the grouped form of a field list.
type Layout struct {
	Tabs       []Tab              `json:"tabs"`
	ListFields []field.Definition `json:"listFields"`
}

// Tab is one top-level screen section.
type Tab struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Label           string             `json:"label"`
	HeaderFields    []field.Definition `json:"headerFields"`
	DetailTables    []DetailTable      `json:"detailTables"`
	SubTabs         []SubTab           `json:"subTabs"`
	MainDetailLabel string             `json:"mainDetailLabel,omitempty"`
}

// DetailTable holds the fields of one relationship, in input order.
type DetailTable struct {
	Relationship string             `json:"relationship"`
	Fields       []field.Definition `json:"fields"`
}

// SubTab is a named section nested inside a tab's tab group.
type SubTab struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	DetailTables []DetailTable `json:"detailTables"`
}

// HasTabGroup reports whether the tab needs a tab group around its detail
// area: it has its own detail tables or at least one sub-tab.
func (t Tab) HasTabGroup() bool {
	return len(t.DetailTables) > 0 || len(t.SubTabs) > 0
}

// Detail returns the detail table keyed by relationship.
func (t Tab) Detail(relationship string) (DetailTable, bool) {
	return findTable(t.DetailTables, relationship)
}

// SubTab returns the sub-tab with the given name.
func (t Tab) SubTab(name string) (SubTab, bool) {
	for _, st := range t.SubTabs {
		if st.Name == name {
			return st, true
		}
	}
	return SubTab{}, false
}

// Detail returns the detail table keyed by relationship.
func (s SubTab) Detail(relationship string) (DetailTable, bool) {
	return findTable(s.DetailTables, relationship)
}

// Tab returns the tab with the given name.
func (l Layout) Tab(name string) (Tab, bool) {
	for _, t := range l.Tabs {
		if t.Name == name {
			return t, true
		}
	}
	return Tab{}, false
}

// Group builds the tab tree from defs. Fields are placed in input order.
// Detail fields without a relationship are skipped and reported.
func Group(defs []field.Definition, opts Options) (Layout, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics
	b := newBuilder()

	for _, d := range defs {
		switch d.Area {
		case field.AreaList:
			b.list = append(b.list, d)
		case field.AreaHeader:
			t := b.tab(tabName(d))
			t.header = append(t.header, d)
		case field.AreaDetail:
			rel := strings.TrimSpace(d.Relationship)
			if rel == "" {
				diags.AddWarning(diagnostic.CodeMissingRelationship,
					"detail field has no relationship and was not placed", tabName(d), d.FieldName)
				continue
			}
			t := b.tab(tabName(d))
			if d.SubTabName == "" {
				t.tables.add(rel, d)
				continue
			}
			t.sub(d.SubTabName).tables.add(rel, d)
		default:
			diags.AddWarning(diagnostic.CodeInvalidField,
				fmt.Sprintf("unknown area %q", d.Area), tabName(d), d.FieldName)
		}
	}

	return b.build(opts), diags
}

// Flatten returns the fields of a layout in an order that Group maps back
// to the same layout.
func Flatten(l Layout) []field.Definition {
	var out []field.Definition
	for _, t := range l.Tabs {
		out = append(out, t.HeaderFields...)
		for _, dt := range t.DetailTables {
			out = append(out, dt.Fields...)
		}
		for _, st := range t.SubTabs {
			for _, dt := range st.DetailTables {
				out = append(out, dt.Fields...)
			}
		}
	}
	return append(out, l.ListFields...)
}

func tabName(d field.Definition) string {
	if n := strings.TrimSpace(d.TabName); n != "" {
		return n
	}
	return DefaultTabName
}

func findTable(tables []DetailTable, relationship string) (DetailTable, bool) {
	for _, dt := range tables {
		if dt.Relationship == relationship {
			return dt, true
		}
	}
	return DetailTable{}, false
}
