package presentation

import (
	"strings"

	"github.com/matthewbaird/formforge/internal/field"
	"github.com/matthewbaird/formforge/internal/grouping"
)

const (
	listTableID  = "results_showlist"
	listRowsPage = 20
)

type generator struct {
	meta     field.Metadata
	opts     Options
	w        *xw
	ids      ids
	bindings []Binding
}

// Generate renders layout as presentation markup. The returned bindings
// list every attribute reference in the markup, in document order.
func Generate(layout grouping.Layout, meta field.Metadata, opts Options) (Result, error) {
	if meta.Object() == "" {
		return Result{}, ErrMissingMainObject
	}
	g := &generator{meta: meta, opts: opts, w: &xw{}, ids: ids{}}
	g.document(layout)
	return Result{XML: g.w.String(), Bindings: g.bindings}, nil
}

func (g *generator) document(layout grouping.Layout) {
	w := g.w
	w.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")

	resultsID := ""
	if len(layout.ListFields) > 0 {
		resultsID = listTableID
	}
	w.open("presentation",
		a("id", g.meta.AppID()),
		a("mboname", g.meta.Object()),
		a("keyattribute", g.meta.Key()),
		a("orderby", g.meta.OrderBy),
		a("whereclause", g.meta.WhereClause),
		a("beanclass", g.meta.BeanClass),
		a("version", g.meta.Version),
		a("resultstableid", resultsID),
	)
	w.open("page", a("id", "mainrec"))
	w.empty("include", a("controltoclone", "pageHeader"), a("id", "pageHeader"))
	w.open("clientarea", a("id", "clientarea"))
	w.open("tabgroup", a("id", "maintabs"))

	if len(layout.ListFields) > 0 {
		g.listTab(layout.ListFields)
	}
	for _, tab := range layout.Tabs {
		g.tab(tab)
	}

	w.close("tabgroup")
	w.close("clientarea")
	w.empty("include", a("controltoclone", "pageFooter"), a("id", "pageFooter"))
	w.close("page")

	for _, d := range g.opts.Dialogs {
		g.dialog(d)
	}
	w.close("presentation")
}

func (g *generator) listTab(defs []field.Definition) {
	w := g.w
	g.ids.next(listTableID)
	w.open("tab", a("id", "results"), a("label", "List View"), a("type", "list"), a("default", "true"))
	w.open("table", a("id", listTableID), a("inputmode", "readonly"), a("selectmode", "multiple"), a("mboname", g.meta.Object()))
	w.open("tablebody", a("id", listTableID+"_tablebody"), a("filterable", "true"), aInt("displayrowsperpage", listRowsPage))
	for _, d := range defs {
		g.column(d, listTableID, g.headerQualifier(d))
	}
	w.close("tablebody")
	w.close("table")
	w.close("tab")
}

func (g *generator) tab(tab grouping.Tab) {
	w := g.w
	tabID := g.ids.next(tab.ID)
	w.open("tab", a("id", tabID), a("label", tab.Label), a("type", "insert"))

	if len(tab.HeaderFields) > 0 {
		sectionID := g.ids.next(tabID, "header")
		w.open("section", a("id", sectionID))
		for _, d := range tab.HeaderFields {
			g.control(d, sectionID, g.headerQualifier(d))
		}
		w.close("section")
	}

	if tab.HasTabGroup() {
		w.open("tabgroup", a("id", g.ids.next(tabID, "tabgroup")), a("style", TabGroupStyle))
		if len(tab.DetailTables) > 0 {
			label := tab.MainDetailLabel
			if label == "" {
				label = grouping.DefaultMainDetailLabel
			}
			primaryID := g.ids.next(tabID, "primary")
			w.open("tab", a("id", primaryID), a("label", label))
			for _, dt := range tab.DetailTables {
				g.table(dt, primaryID)
			}
			w.close("tab")
		}
		for _, st := range tab.SubTabs {
			subID := g.ids.next(st.ID)
			w.open("tab", a("id", subID), a("label", st.Name))
			for _, dt := range st.DetailTables {
				g.table(dt, subID)
			}
			w.close("tab")
		}
		w.close("tabgroup")
	}

	w.close("tab")
}

func (g *generator) table(dt grouping.DetailTable, scope string) {
	w := g.w
	rel := relationshipName(dt.Relationship)
	cfg, ok := g.opts.Relationships[dt.Relationship]
	if !ok {
		cfg = g.opts.Relationships[rel]
	}
	label := cfg.Label
	if label == "" {
		label = rel
	}
	rows := cfg.RowsPerPage
	if rows <= 0 {
		rows = DefaultRowsPerPage
	}

	id := g.ids.next(scope, dt.Relationship)
	w.open("table",
		a("id", id),
		a("label", label),
		a("relationship", rel),
		a("orderby", cfg.OrderBy),
	)
	w.open("tablebody", a("id", id+"_tablebody"), aInt("displayrowsperpage", rows), aBool("filterable", cfg.Filterable))
	for _, d := range dt.Fields {
		g.column(d, id, rel)
	}
	w.close("tablebody")
	w.close("table")
}

// column renders a table column. Inside a table the binding is relative to
// the table's relationship, so dataattribute carries the bare attribute.
func (g *generator) column(d field.Definition, scope, qualifier string) {
	id := g.ids.next(scope, d.FieldName)
	if !d.Bound() {
		attrs := []attr{a("id", id), a("label", d.DisplayLabel())}
		if d.Control() == field.TypePushButton {
			attrs = append(attrs, a("type", "event"), a("mxevent", strings.ToLower(d.FieldName)))
		}
		g.w.empty("tablecol", attrs...)
		return
	}

	b := g.bind(d, id, qualifier)
	dataattr := b.Attribute
	if d.Area == field.AreaList {
		dataattr = b.Reference
	}
	attrs := []attr{
		a("dataattribute", dataattr),
		a("id", id),
		a("label", d.DisplayLabel()),
		aInt("width", d.Width.Int()),
		a("inputmode", mode(d)),
		a("lookup", d.Lookup),
	}
	if d.Area == field.AreaList {
		attrs = append(attrs, aBool("filterable", d.Filterable), aBool("sortable", d.Sortable))
	}
	if d.Control() == field.TypeCheckbox {
		attrs = append(attrs, a("type", "checkbox"))
	}
	g.w.empty("tablecol", attrs...)
}

// control renders a header or dialog control. dataattribute carries the
// full reference, qualified when the field is bound through a relationship.
func (g *generator) control(d field.Definition, scope, qualifier string) {
	w := g.w
	id := g.ids.next(scope, d.FieldName)
	label := d.DisplayLabel()

	switch d.Control() {
	case field.TypeStaticText:
		w.empty("statictext", a("id", id), a("label", label))
		return
	case field.TypePushButton:
		w.empty("pushbutton", a("id", id), a("label", label), a("mxevent", strings.ToLower(d.FieldName)))
		return
	case field.TypeAttachmentList:
		w.empty("attachments", a("id", id), a("label", label))
		return
	}

	b := g.bind(d, id, qualifier)
	common := []attr{a("dataattribute", b.Reference), a("id", id), a("label", label), a("inputmode", mode(d))}

	switch d.Control() {
	case field.TypeCheckbox:
		w.empty("checkbox", common...)
	case field.TypeMultiPartText:
		w.empty("multiparttextbox", append(common,
			a("descdataattribute", b.Attribute+".DESCRIPTION"),
			a("lookup", d.Lookup),
		)...)
	case field.TypeMultiLineText:
		w.empty("multilinetextbox", append(common, aInt("columns", d.Width.Int()), a("rows", "3"))...)
	default:
		w.empty("textbox", append(common, aInt("width", d.Width.Int()), a("lookup", d.Lookup))...)
	}
}

func (g *generator) dialog(d Dialog) {
	w := g.w
	id := g.ids.next(d.ID)
	label := d.Label
	if label == "" {
		label = d.ID
	}
	rel := relationshipName(d.Relationship)
	w.open("dialog", a("id", id), a("label", label), a("relationship", rel))
	sectionID := g.ids.next(id, "section")
	w.open("section", a("id", sectionID))
	for _, f := range d.Definitions() {
		qualifier := g.headerQualifier(f)
		if qualifier == "" {
			qualifier = rel
		}
		g.control(f, sectionID, qualifier)
	}
	w.close("section")
	w.open("buttongroup", a("id", g.ids.next(id, "buttons")))
	w.empty("pushbutton", a("id", g.ids.next(id, "ok")), a("label", "OK"), a("mxevent", "dialogok"), a("default", "true"))
	w.empty("pushbutton", a("id", g.ids.next(id, "cancel")), a("label", "Cancel"), a("mxevent", "dialogcancel"))
	w.close("buttongroup")
	w.close("dialog")
}

// headerQualifier returns the relationship a header or list field is read
// through: its own relationship, or its record name when it lives on a
// secondary record without one.
func (g *generator) headerQualifier(d field.Definition) string {
	if rel := relationshipName(d.Relationship); rel != "" {
		return rel
	}
	if !g.opts.Naming.IsPrimary(g.meta, d) {
		return g.opts.Naming.Object(g.meta, d)
	}
	return ""
}

func (g *generator) bind(d field.Definition, elementID, qualifier string) Binding {
	n := g.opts.Naming
	attribute := n.Attribute(g.meta, d)
	object := n.Object(g.meta, d)
	ref := attribute
	if qualifier != "" {
		ref = qualifier + "." + attribute
	}
	b := Binding{
		ElementID:    elementID,
		Object:       object,
		Relationship: qualifier,
		Attribute:    attribute,
		Reference:    ref,
		Area:         d.Area,
		Custom:       n.OwnsColumns(g.meta, object, attribute),
		Persistent:   d.IsPersistent(),
	}
	g.bindings = append(g.bindings, b)
	return b
}

func mode(d field.Definition) string {
	if m := d.Mode(); m != field.InputOptional {
		return string(m)
	}
	return ""
}

// relationshipName is the form every relationship takes in markup and
// binding references.
func relationshipName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
