package er

import (
	"fmt"

	"github.com/matthewbaird/formforge/internal/diagnostic"
	"github.com/matthewbaird/formforge/internal/fmb"
)

// Derive builds the graph of m: one entity per block, a solid relationship
// per master/detail nesting, and one external entity plus one dashed
// relationship per block and distinct lookup/record-group pair. Hidden items
// take no part; the first displayed item is the primary key.
func Derive(m fmb.Module) Graph {
	var g Graph
	blocks := make(map[string]bool, len(m.Blocks))

	for _, b := range m.Blocks {
		blocks[b.Name] = true
		e := Entity{ID: b.Name, Block: b.Name, Table: b.QueryDataSource, Kind: KindDetail}
		if b.SingleRecord {
			e.Kind = KindHeader
		}
		for i, it := range displayed(b.Items) {
			e.Fields = append(e.Fields, Field{Name: it.Name, DataType: it.DataType, Role: role(i, it)})
		}
		g.Entities = append(g.Entities, e)
	}

	g.Relationships = nesting(m, blocks, &g.Diagnostics)

	externals := make(map[string]bool)
	edges := make(map[string]bool)
	for _, b := range m.Blocks {
		for _, it := range displayed(b.Items) {
			if it.LOV == "" {
				continue
			}
			lov, _ := m.LOV(it.LOV)
			id := externalID(it.LOV, lov.RecordGroup)
			if !externals[id] {
				externals[id] = true
				g.Entities = append(g.Entities, external(id, it.LOV, lov))
			}
			relID := "ref:" + b.Name + "->" + id
			if edges[relID] {
				continue
			}
			edges[relID] = true
			g.Relationships = append(g.Relationships, Relationship{
				ID:          relID,
				Source:      b.Name,
				Target:      id,
				Cardinality: OneToMany,
				Style:       StyleDashed,
				Label:       it.LOV,
			})
		}
	}
	return g
}

// nesting returns the solid relationships. Declared relations are used
// first; a detail block without one hangs off the nearest preceding header
// block.
func nesting(m fmb.Module, blocks map[string]bool, diags *diagnostic.Diagnostics) []Relationship {
	var out []Relationship
	hasMaster := make(map[string]bool)
	for _, b := range m.Blocks {
		for _, rel := range b.Relations {
			if !blocks[rel.DetailBlock] {
				diags.AddWarning(diagnostic.CodeDanglingEdge,
					fmt.Sprintf("relation %s names unknown detail block %q", rel.Name, rel.DetailBlock),
					b.Name, "")
				continue
			}
			hasMaster[rel.DetailBlock] = true
			out = append(out, solid(b.Name, rel.DetailBlock, rel.Name))
		}
	}

	master := ""
	for _, b := range m.Blocks {
		if b.SingleRecord {
			master = b.Name
			continue
		}
		if hasMaster[b.Name] || master == "" {
			continue
		}
		out = append(out, solid(master, b.Name, ""))
	}
	return out
}

func solid(master, detail, label string) Relationship {
	return Relationship{
		ID:          "nest:" + master + "->" + detail,
		Source:      master,
		Target:      detail,
		Cardinality: OneToMany,
		Style:       StyleSolid,
		Label:       label,
	}
}

func displayed(items []fmb.Item) []fmb.Item {
	var out []fmb.Item
	for _, it := range items {
		if it.Visible {
			out = append(out, it)
		}
	}
	return out
}

func role(i int, it fmb.Item) Role {
	switch {
	case i == 0:
		return RolePrimaryKey
	case it.LOV != "":
		return RoleForeignKey
	case it.Required:
		return RoleRequired
	default:
		return RolePlain
	}
}

func externalID(lov, recordGroup string) string {
	return "ext:" + lov + "/" + recordGroup
}

func external(id, name string, lov fmb.LOV) Entity {
	e := Entity{ID: id, Table: lov.RecordGroup, Kind: KindExternal}
	if e.Table == "" {
		e.Table = name
	}
	for i, c := range lov.Columns {
		r := RolePlain
		if i == 0 {
			r = RolePrimaryKey
		}
		e.Fields = append(e.Fields, Field{Name: c.Name, Role: r})
	}
	return e
}
