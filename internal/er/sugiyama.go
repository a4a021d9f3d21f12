package er

import (
	"context"
	"fmt"
	"math"

	"github.com/nikolaydubina/go-graph-layout/layout"
)

// Layout engine names.
const (
	EngineSugiyama = "sugiyama"
	EngineLayered  = "layered"
)

// Sugiyama lays nodes out with the layered strategy of go-graph-layout:
// cycle removal, longest-path levels, layer-by-layer median ordering and
// Brandes-Köpf horizontal placement. Coordinates are shifted so the
// top-left node box touches the origin.
//
// As with Layered, a node touched by an edge whose other endpoint is absent
// stays at the origin.
type Sugiyama struct {
	// Epochs bounds the ordering passes. Zero means 10.
	Epochs int
}

// Layout implements Layouter.
func (s Sugiyama) Layout(ctx context.Context, nodes []Node, edges []Edge) ([]Node, error) {
	out, free, dag := prune(nodes, edges)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(free) == 0 {
		return out, nil
	}

	g := layout.Graph{
		Nodes: make(map[uint64]layout.Node, len(free)),
		Edges: make(map[[2]uint64]layout.Edge, len(dag)),
	}
	for _, i := range free {
		g.Nodes[uint64(i)] = layout.Node{
			W: int(math.Ceil(out[i].Width)),
			H: int(math.Ceil(out[i].Height)),
		}
	}
	for _, e := range dag {
		g.Edges[[2]uint64{uint64(e[0]), uint64(e[1])}] = layout.Edge{}
	}

	s.engine().UpdateGraphLayout(g)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	minX, minY := math.MaxInt, math.MaxInt
	for _, n := range g.Nodes {
		minX = min(minX, n.XY[0])
		minY = min(minY, n.XY[1])
	}
	for _, i := range free {
		n := g.Nodes[uint64(i)]
		out[i].X = float64(n.XY[0] - minX)
		out[i].Y = float64(n.XY[1] - minY)
	}
	return out, nil
}

func (s Sugiyama) engine() layout.SugiyamaLayersStrategyGraphLayout {
	epochs := s.Epochs
	if epochs <= 0 {
		epochs = 10
	}
	return layout.SugiyamaLayersStrategyGraphLayout{
		CycleRemover:   layout.NewSimpleCycleRemover(),
		LevelsAssigner: layout.NewLayeredGraph,
		OrderingAssigner: layout.LBLOrderingOptimizer{
			Epochs:                   epochs,
			LayerOrderingInitializer: layout.BFSOrderingInitializer{},
			LayerOrderingOptimizer: layout.CompositeLayerOrderingOptimizer{
				Optimizers: []layout.LayerOrderingOptimizer{
					layout.WMedianOrderingOptimizer{},
					layout.SwitchAdjacentOrderingOptimizer{},
				},
			},
		}.Optimize,
		NodesHorizontalCoordinatesAssigner: layout.BrandesKopfLayersNodesHorizontalAssigner{
			Delta: int(NodeGap),
		},
		NodesVerticalCoordinatesAssigner: layout.BasicNodesVerticalCoordinatesAssigner{
			MarginLayers:   int(LayerGap),
			FakeNodeHeight: int(RowHeight),
		},
		EdgePathAssigner: layout.StraightEdgePathAssigner{}.UpdateGraphLayout,
	}
}

// NewLayouter returns the layout engine registered under name. An empty
// name selects Sugiyama.
func NewLayouter(name string) (Layouter, error) {
	switch name {
	case "", EngineSugiyama:
		return Sugiyama{}, nil
	case EngineLayered:
		return Layered{}, nil
	default:
		return nil, fmt.Errorf("unknown layout engine %q: want %s or %s", name, EngineSugiyama, EngineLayered)
	}
}
