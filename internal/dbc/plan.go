// Package dbc turns a flat field list into the schema artifacts of an
// application: a migration script, a resource-provisioning script, and
// the coverage check that ties both back to the presentation bindings.
package dbc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/matthewbaird/formforge/internal/diagnostic"
	"github.com/matthewbaird/formforge/internal/field"
)

var (
	// ErrMissingMainObject blocks generation when no primary record is named.
	ErrMissingMainObject = errors.New("dbc: metadata has no main object")
	// ErrNoFields blocks generation of an empty field list.
	ErrNoFields = errors.New("dbc: field list is empty")
)

// Operation is the kind of statement an object plan renders as.
type Operation string

const (
	OpDefineTable   Operation = "define_table"
	OpAddAttributes Operation = "add_attributes"
)

// Plan is the ordered set of per-object operations for one application.
type Plan struct {
	App         string                 `json:"app"`
	Objects     []ObjectPlan           `json:"objects"`
	Diagnostics diagnostic.Diagnostics `json:"diagnostics"`
}

// ObjectPlan is one define_table or add_attributes statement.
type ObjectPlan struct {
	Object      string      `json:"object"`
	Operation   Operation   `json:"operation"`
	Description string      `json:"description,omitempty"`
	Service     string      `json:"service,omitempty"`
	PrimaryKey  string      `json:"primaryKey,omitempty"`
	UniqueID    string      `json:"uniqueId,omitempty"`
	Attributes  []Attribute `json:"attributes"`
}

// Attribute is one attribute definition. Non-persistent attributes are
// registered as metadata only and get no storage column.
type Attribute struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Remarks      string `json:"remarks,omitempty"`
	MaxType      string `json:"maxType"`
	Length       int    `json:"length"`
	Scale        int    `json:"scale,omitempty"`
	Required     bool   `json:"required,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty"`
	Persistent   bool   `json:"persistent"`
}

// Object returns the plan for name.
func (p Plan) Object(name string) (ObjectPlan, bool) {
	return lo.Find(p.Objects, func(o ObjectPlan) bool { return o.Object == name })
}

// Defined returns the OBJECT.ATTRIBUTE pairs the plan defines, in plan order.
func (p Plan) Defined() []string {
	var out []string
	for _, o := range p.Objects {
		for _, a := range o.Attributes {
			out = append(out, o.Object+"."+a.Name)
		}
	}
	return out
}

// BuildPlan derives the schema operations for defs. Only attributes the
// application owns produce definitions; vendor-native attributes are
// assumed to exist already.
func BuildPlan(defs []field.Definition, meta field.Metadata, naming field.Naming) (Plan, error) {
	if meta.Object() == "" {
		return Plan{}, ErrMissingMainObject
	}
	if len(defs) == 0 {
		return Plan{}, ErrNoFields
	}

	b := &planBuilder{index: make(map[string]int), seen: make(map[string]Attribute)}
	primary := b.object(meta.Object())
	if !meta.IsStandardObject {
		primary.Operation = OpDefineTable
		primary.Description = meta.Description
		if primary.Description == "" {
			primary.Description = meta.AppID()
		}
		primary.Service = meta.ServiceOrDefault()
		primary.PrimaryKey = meta.Key()
		primary.UniqueID = meta.Object() + "ID"
		uid := Attribute{
			Name:       primary.UniqueID,
			Title:      "Unique ID",
			MaxType:    "BIGINT",
			Length:     defaultLength["BIGINT"],
			Required:   true,
			Persistent: true,
		}
		primary.Attributes = append(primary.Attributes, uid)
		b.seen[meta.Object()+"."+uid.Name] = uid
	}

	for _, d := range defs {
		if !d.Bound() {
			continue
		}
		name := naming.Attribute(meta, d)
		object := naming.Object(meta, d)
		if !naming.OwnsColumns(meta, object, name) {
			continue
		}
		key := object + "." + name
		attr := attribute(name, d)
		if first, ok := b.seen[key]; ok {
			if !sameStorage(first, attr) {
				b.diags.AddWarning(diagnostic.CodeDuplicateAttribute,
					fmt.Sprintf("attribute %s is defined more than once with different storage; the first definition is used", key),
					object, name)
			}
			continue
		}
		b.seen[key] = attr
		op := b.object(object)
		op.Attributes = append(op.Attributes, attr)
	}

	objects := lo.Filter(b.objects, func(o *ObjectPlan, _ int) bool {
		return o.Operation == OpDefineTable || len(o.Attributes) > 0
	})
	return Plan{
		App:         meta.AppID(),
		Objects:     lo.Map(objects, func(o *ObjectPlan, _ int) ObjectPlan { return *o }),
		Diagnostics: b.diags,
	}, nil
}

type planBuilder struct {
	objects []*ObjectPlan
	index   map[string]int
	seen    map[string]Attribute
	diags   diagnostic.Diagnostics
}

func (b *planBuilder) object(name string) *ObjectPlan {
	if i, ok := b.index[name]; ok {
		return b.objects[i]
	}
	op := &ObjectPlan{Object: name, Operation: OpAddAttributes}
	b.index[name] = len(b.objects)
	b.objects = append(b.objects, op)
	return op
}

// sameStorage reports whether two definitions of one attribute agree on
// how it is stored.
func sameStorage(a, b Attribute) bool {
	return a.MaxType == b.MaxType && a.Length == b.Length && a.Scale == b.Scale && a.Persistent == b.Persistent
}

func attribute(name string, d field.Definition) Attribute {
	maxType := strings.ToUpper(strings.TrimSpace(d.MaxType))
	if maxType == "" {
		maxType = "ALN"
	}
	length, scale := d.Length.Int(), d.Scale.Int()
	if scale < 0 {
		scale = 0
	}
	if length <= 0 {
		length = defaultLength[maxType]
		if scale == 0 && hasScale(maxType) {
			scale = defaultScale
		}
	}
	title := d.Title
	if title == "" {
		title = d.DisplayLabel()
	}
	return Attribute{
		Name:         name,
		Title:        title,
		Remarks:      d.DisplayLabel(),
		MaxType:      maxType,
		Length:       length,
		Scale:        scale,
		Required:     d.DBRequired,
		DefaultValue: d.DefaultValue,
		Persistent:   d.IsPersistent(),
	}
}
