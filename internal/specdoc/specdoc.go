// Package specdoc renders the markdown functional specification of a
// grouped application: its metadata, every tab with header and detail
// field tables, the list view, and an optional appendix describing the
// legacy form it was converted from.
package specdoc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matthewbaird/formforge/internal/field"
	"github.com/matthewbaird/formforge/internal/fmb"
	"github.com/matthewbaird/formforge/internal/grouping"
)

// Options tunes a rendering pass.
type Options struct {
	Naming field.Naming
	// Module, when set, adds the legacy source appendix.
	Module *fmb.Module
}

// Render returns the markdown document for layout.
func Render(layout grouping.Layout, meta field.Metadata, opts Options) string {
	var buf strings.Builder
	r := renderer{buf: &buf, meta: meta, naming: opts.Naming}

	title := meta.AppID()
	buf.WriteString(fmt.Sprintf("# %s Functional Specification\n\n", title))
	if meta.Description != "" {
		buf.WriteString(meta.Description + "\n\n")
	}
	r.metadata()

	if len(layout.ListFields) > 0 {
		buf.WriteString("## List View\n\n")
		buf.WriteString("| Label | Attribute | Filterable | Sortable |\n")
		buf.WriteString("|---|---|---|---|\n")
		for _, d := range layout.ListFields {
			buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				cell(d.DisplayLabel()), cell(r.attribute(d)), yesNo(d.Filterable), yesNo(d.Sortable)))
		}
		buf.WriteString("\n")
	}

	for _, t := range layout.Tabs {
		r.tab(t)
	}

	if opts.Module != nil {
		legacy(&buf, *opts.Module)
	}
	return buf.String()
}

type renderer struct {
	buf    *strings.Builder
	meta   field.Metadata
	naming field.Naming
}

func (r renderer) metadata() {
	objectKind := "new"
	if r.meta.IsStandardObject {
		objectKind = "standard"
	}
	rows := [][2]string{
		{"Application", r.meta.AppID()},
		{"Main object", r.meta.Object()},
		{"Object type", objectKind},
		{"Key attribute", r.meta.Key()},
		{"Version", r.meta.Version},
		{"Order by", r.meta.OrderBy},
		{"Where clause", r.meta.WhereClause},
		{"Bean class", r.meta.BeanClass},
		{"Author", r.meta.Author},
	}
	r.buf.WriteString("## Application\n\n")
	r.buf.WriteString("| Property | Value |\n")
	r.buf.WriteString("|---|---|\n")
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		r.buf.WriteString(fmt.Sprintf("| %s | %s |\n", row[0], cell(row[1])))
	}
	r.buf.WriteString("\n")
}

func (r renderer) tab(t grouping.Tab) {
	r.buf.WriteString(fmt.Sprintf("## Tab: %s\n\n", t.Label))

	if len(t.HeaderFields) > 0 {
		r.buf.WriteString("### Header\n\n")
		r.fields(t.HeaderFields)
	}

	if len(t.DetailTables) > 0 {
		r.buf.WriteString(fmt.Sprintf("### %s\n\n", t.MainDetailLabel))
		for _, dt := range t.DetailTables {
			r.buf.WriteString(fmt.Sprintf("#### Detail: %s\n\n", dt.Relationship))
			r.fields(dt.Fields)
		}
	}

	for _, st := range t.SubTabs {
		r.buf.WriteString(fmt.Sprintf("### Sub-tab: %s\n\n", st.Name))
		for _, dt := range st.DetailTables {
			r.buf.WriteString(fmt.Sprintf("#### Detail: %s\n\n", dt.Relationship))
			r.fields(dt.Fields)
		}
	}
}

func (r renderer) fields(defs []field.Definition) {
	r.buf.WriteString("| Label | Attribute | Object | Type | Input | Lookup | Storage |\n")
	r.buf.WriteString("|---|---|---|---|---|---|---|\n")
	for _, d := range defs {
		r.buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
			cell(d.DisplayLabel()),
			cell(r.attribute(d)),
			cell(r.naming.Object(r.meta, d)),
			d.Control(),
			d.Mode(),
			cell(d.Lookup),
			cell(storage(d)),
		))
	}
	r.buf.WriteString("\n")
}

func (r renderer) attribute(d field.Definition) string {
	if !d.Bound() {
		return ""
	}
	return r.naming.Attribute(r.meta, d)
}

// storage formats the declared storage type, e.g. ALN(30) or DECIMAL(10,2).
func storage(d field.Definition) string {
	if d.MaxType == "" {
		return ""
	}
	s := strings.ToUpper(d.MaxType)
	switch {
	case d.Length > 0 && d.Scale > 0:
		s += fmt.Sprintf("(%d,%d)", d.Length.Int(), d.Scale.Int())
	case d.Length > 0:
		s += fmt.Sprintf("(%d)", d.Length.Int())
	}
	if d.DBRequired {
		s += " required"
	}
	if !d.IsPersistent() {
		s += " non-persistent"
	}
	return s
}

func legacy(buf *strings.Builder, m fmb.Module) {
	buf.WriteString("## Legacy Source\n\n")
	if m.Name != "" {
		buf.WriteString(fmt.Sprintf("Form module `%s`", m.Name))
		if m.Title != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", m.Title))
		}
		buf.WriteString(".\n\n")
	}

	if len(m.Blocks) > 0 {
		buf.WriteString("### Blocks\n\n")
		buf.WriteString("| Block | Table | Records | Items |\n")
		buf.WriteString("|---|---|---|---|\n")
		for _, b := range m.Blocks {
			records := "multi"
			if b.SingleRecord {
				records = "single"
			}
			buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				cell(b.Name), cell(b.Table()), records, strconv.Itoa(len(b.Items))))
		}
		buf.WriteString("\n")
	}

	if len(m.LOVs) > 0 {
		buf.WriteString("### Lists of Values\n\n")
		buf.WriteString("| LOV | Title | Record group | Columns |\n")
		buf.WriteString("|---|---|---|---|\n")
		for _, l := range m.LOVs {
			cols := make([]string, 0, len(l.Columns))
			for _, c := range l.Columns {
				cols = append(cols, c.Name)
			}
			buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				cell(l.Name), cell(l.Title), cell(l.RecordGroup), cell(strings.Join(cols, ", "))))
		}
		buf.WriteString("\n")
	}

	for _, rg := range m.RecordGroups {
		buf.WriteString(fmt.Sprintf("### Record Group %s\n\n", rg.Name))
		buf.WriteString(fmt.Sprintf("Type: %s\n\n", rg.QueryType))
		if rg.Query != "" {
			buf.WriteString("```sql\n" + rg.Query + "\n```\n\n")
		}
	}
}

// cell makes s safe inside a markdown table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
