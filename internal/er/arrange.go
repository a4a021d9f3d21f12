package er

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/matthewbaird/formforge/internal/diagnostic"
)

// Diagram is a visible graph together with its node positions.
type Diagram struct {
	Graph Graph  `json:"graph"`
	Nodes []Node `json:"nodes"`
}

// Node returns the positioned node for an entity id.
func (d Diagram) Node(id string) (Node, bool) {
	return lo.Find(d.Nodes, func(n Node) bool { return n.ID == id })
}

// Arrange lays out the part of g selected by showExternal. Every call
// recomputes the full layout. A nil layouter means Sugiyama.
func Arrange(ctx context.Context, g Graph, showExternal bool, l Layouter) (Diagram, error) {
	if l == nil {
		l = Sugiyama{}
	}
	visible := g.Visible(showExternal)
	if err := visible.Validate(); err != nil {
		visible.Diagnostics.AddWarning(diagnostic.CodeDanglingEdge,
			fmt.Sprintf("layout continues with unresolved edges: %v", err), "", "")
	}

	nodes := lo.Map(visible.Entities, func(e Entity, _ int) Node {
		w, h := Size(e)
		return Node{ID: e.ID, Width: w, Height: h}
	})
	edges := lo.Map(visible.Relationships, func(r Relationship, _ int) Edge {
		return Edge{Source: r.Source, Target: r.Target}
	})

	placed, err := l.Layout(ctx, nodes, edges)
	if err != nil {
		return Diagram{}, fmt.Errorf("computing layout: %w", err)
	}
	return Diagram{Graph: visible, Nodes: placed}, nil
}
