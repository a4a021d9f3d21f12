package dbc

import (
	"bytes"
	"fmt"
	"strings"
)

type cw struct{ bytes.Buffer }

func (w *cw) line(format string, args ...interface{}) {
	fmt.Fprintf(&w.Buffer, format+"\n", args...)
}

// RenderMigration renders plan as a SQL migration: one CREATE TABLE per
// defined table and one ALTER TABLE per added column, in plan order.
func RenderMigration(p Plan) string {
	w := &cw{}
	w.line("-- Schema migration for %s", p.App)
	w.line("-- Generated by formforge. Do not edit.")

	for _, o := range p.Objects {
		w.line("")
		switch o.Operation {
		case OpDefineTable:
			renderCreate(w, o)
		default:
			renderAlter(w, o)
		}
		for _, a := range o.Attributes {
			if a.Persistent && a.Title != "" {
				w.line("COMMENT ON COLUMN %s.%s IS %s;", o.Object, a.Name, literal("ALN", a.Title))
			}
		}
		for _, a := range o.Attributes {
			if !a.Persistent {
				w.line("-- metadata only: %s.%s (%s)", o.Object, a.Name, a.MaxType)
			}
		}
	}
	return w.String()
}

func renderCreate(w *cw, o ObjectPlan) {
	var cols []string
	for _, a := range o.Attributes {
		if a.Persistent {
			cols = append(cols, "    "+column(a))
		}
	}
	key := o.UniqueID
	if key == "" {
		key = o.PrimaryKey
	}
	if key != "" {
		cols = append(cols, fmt.Sprintf("    CONSTRAINT %s_PK PRIMARY KEY (%s)", o.Object, key))
	}
	w.line("CREATE TABLE %s (", o.Object)
	w.line("%s", strings.Join(cols, ",\n"))
	w.line(");")
}

func renderAlter(w *cw, o ObjectPlan) {
	for _, a := range o.Attributes {
		if a.Persistent {
			w.line("ALTER TABLE %s ADD %s;", o.Object, column(a))
		}
	}
}

func column(a Attribute) string {
	var b strings.Builder
	b.WriteString(a.Name)
	b.WriteByte(' ')
	b.WriteString(ColumnType(a))
	if a.DefaultValue != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(literal(a.MaxType, a.DefaultValue))
	}
	if a.Required {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}
