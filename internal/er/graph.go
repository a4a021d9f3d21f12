// Package er derives an entity-relationship graph from a parsed form and
// lays it out for rendering.
package er

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/matthewbaird/formforge/internal/diagnostic"
)

// Kind classifies an entity.
type Kind string

const (
	KindHeader   Kind = "header"
	KindDetail   Kind = "detail"
	KindExternal Kind = "external"
)

// Role tags a field of an entity.
type Role string

const (
	RolePrimaryKey Role = "pk"
	RoleForeignKey Role = "fk"
	RoleRequired   Role = "required"
	RolePlain      Role = "plain"
)

// Style is the line style of a relationship: solid for detail nesting,
// dashed for lookup references.
type Style string

const (
	StyleSolid  Style = "solid"
	StyleDashed Style = "dashed"
)

// OneToMany is the only cardinality modeled.
const OneToMany = "1:N"

// Entity is one node of the graph.
type Entity struct {
	ID     string  `json:"id"`
	Block  string  `json:"block,omitempty"`
	Table  string  `json:"table"`
	Kind   Kind    `json:"kind"`
	Fields []Field `json:"fields"`
}

// Field is one displayed attribute of an entity.
type Field struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
	Role     Role   `json:"role"`
}

// Relationship is one edge of the graph.
type Relationship struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	Cardinality string `json:"cardinality"`
	Style       Style  `json:"style"`
	Label       string `json:"label,omitempty"`
}

// Graph is a derived entity-relationship graph. External entities and
// dashed relationships are always derived; ShowExternal records whether
// the caller chose to display them.
type Graph struct {
	Entities      []Entity               `json:"entities"`
	Relationships []Relationship         `json:"relationships"`
	ShowExternal  bool                   `json:"showExternal"`
	Diagnostics   diagnostic.Diagnostics `json:"diagnostics"`
}

// Entity returns the entity with the given id.
func (g Graph) Entity(id string) (Entity, bool) {
	return lo.Find(g.Entities, func(e Entity) bool { return e.ID == id })
}

// Visible returns the subgraph to render. Without showExternal, external
// entities and dashed relationships are dropped.
func (g Graph) Visible(showExternal bool) Graph {
	out := Graph{ShowExternal: showExternal}
	out.Diagnostics.Merge(g.Diagnostics)
	if showExternal {
		out.Entities = append([]Entity(nil), g.Entities...)
		out.Relationships = append([]Relationship(nil), g.Relationships...)
		return out
	}
	out.Entities = lo.Filter(g.Entities, func(e Entity, _ int) bool { return e.Kind != KindExternal })
	out.Relationships = lo.Filter(g.Relationships, func(r Relationship, _ int) bool { return r.Style != StyleDashed })
	return out
}

// Validate reports relationships whose endpoints are not entities of g.
func (g Graph) Validate() error {
	ids := lo.SliceToMap(g.Entities, func(e Entity) (string, bool) { return e.ID, true })
	var errs []error
	for _, r := range g.Relationships {
		if !ids[r.Source] {
			errs = append(errs, fmt.Errorf("relationship %s: unknown source %q", r.ID, r.Source))
		}
		if !ids[r.Target] {
			errs = append(errs, fmt.Errorf("relationship %s: unknown target %q", r.ID, r.Target))
		}
	}
	return errors.Join(errs...)
}
