package er

import (
	"context"
	"sort"
)

// Node sizing.
const (
	NodeMinWidth  = 180.0
	NodeMinHeight = 60.0
	HeaderHeight  = 32.0
	RowHeight     = 20.0
	CharWidth     = 7.5
)

// Layered layout spacing.
const (
	LayerGap = 80.0
	NodeGap  = 40.0
	sweeps   = 4
)

// Node is a sized, positioned box. X and Y are the top-left corner.
type Node struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Layouter computes node positions from sizes and edges alone.
type Layouter interface {
	Layout(ctx context.Context, nodes []Node, edges []Edge) ([]Node, error)
}

// Size returns the box size of e: one row per field below a header, with a
// minimum floor, and wide enough for the longest name.
func Size(e Entity) (width, height float64) {
	longest := len(e.ID)
	for _, f := range e.Fields {
		if n := len(f.Name) + len(f.DataType) + 3; n > longest {
			longest = n
		}
	}
	width = max(NodeMinWidth, float64(longest)*CharWidth+24)
	height = max(NodeMinHeight, HeaderHeight+RowHeight*float64(len(e.Fields)))
	return width, height
}

// Layered is the built-in top-down hierarchical layout: cycles are broken by
// reversing DFS back edges, nodes are layered by longest path, layers are
// reordered by barycenter sweeps to reduce crossings, and coordinates are
// assigned row by row with every row centred.
//
// A node touched by an edge whose other endpoint is absent stays at the
// origin; all other nodes are laid out normally.
type Layered struct{}

// Layout implements Layouter.
func (Layered) Layout(ctx context.Context, nodes []Node, edges []Edge) ([]Node, error) {
	out, free, dag := prune(nodes, edges)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dag = breakCycles(free, dag)
	layers := assignLayers(free, dag)
	order := orderLayers(free, layers)
	for i := 0; i < sweeps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sweep(order, dag, i%2 == 0)
	}
	place(out, order)
	return out, nil
}

// prune copies nodes with their positions cleared and splits off the part
// that can be laid out: nodes touched by an edge to an absent node are left
// out of free, and self loops or edges touching them are left out of dag.
func prune(nodes []Node, edges []Edge) (out []Node, free []int, dag [][2]int) {
	out = make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		out[i].X, out[i].Y = 0, 0
	}

	index := make(map[string]int, len(out))
	for i, n := range out {
		index[n.ID] = i
	}

	pinned := make(map[int]bool)
	for _, e := range edges {
		s, okS := index[e.Source]
		t, okT := index[e.Target]
		switch {
		case okS && !okT:
			pinned[s] = true
		case okT && !okS:
			pinned[t] = true
		}
	}

	for i := range out {
		if !pinned[i] {
			free = append(free, i)
		}
	}
	for _, e := range edges {
		s, okS := index[e.Source]
		t, okT := index[e.Target]
		if okS && okT && s != t && !pinned[s] && !pinned[t] {
			dag = append(dag, [2]int{s, t})
		}
	}
	return out, free, dag
}

// breakCycles reverses the back edges found by a DFS visiting nodes in
// input order.
func breakCycles(nodes []int, edges [][2]int) [][2]int {
	adj := make(map[int][]int)
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
	}
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[int]int)
	back := make(map[[2]int]bool)
	var visit func(n int)
	visit = func(n int) {
		state[n] = active
		for _, m := range adj[n] {
			switch state[m] {
			case unvisited:
				visit(m)
			case active:
				back[[2]int{n, m}] = true
			}
		}
		state[n] = done
	}
	for _, n := range nodes {
		if state[n] == unvisited {
			visit(n)
		}
	}

	out := make([][2]int, 0, len(edges))
	for _, e := range edges {
		if back[e] {
			e = [2]int{e[1], e[0]}
		}
		out = append(out, e)
	}
	return out
}

// assignLayers puts every node one layer below its deepest predecessor.
func assignLayers(nodes []int, edges [][2]int) map[int]int {
	indeg := make(map[int]int)
	adj := make(map[int][]int)
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		indeg[e[1]]++
	}
	layer := make(map[int]int, len(nodes))
	var queue []int
	for _, n := range nodes {
		layer[n] = 0
		if indeg[n] == 0 {
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range adj[n] {
			if layer[n]+1 > layer[m] {
				layer[m] = layer[n] + 1
			}
			indeg[m]--
			if indeg[m] == 0 {
				queue = append(queue, m)
			}
		}
	}
	return layer
}

// orderLayers groups nodes by layer, keeping input order inside a layer.
func orderLayers(nodes []int, layer map[int]int) [][]int {
	depth := 0
	for _, n := range nodes {
		depth = max(depth, layer[n]+1)
	}
	order := make([][]int, depth)
	for _, n := range nodes {
		l := layer[n]
		order[l] = append(order[l], n)
	}
	return order
}

// sweep reorders each layer by the mean position of its neighbours in the
// previous layer (downward) or the next layer (upward).
func sweep(order [][]int, edges [][2]int, down bool) {
	neighbours := make(map[int][]int)
	for _, e := range edges {
		if down {
			neighbours[e[1]] = append(neighbours[e[1]], e[0])
		} else {
			neighbours[e[0]] = append(neighbours[e[0]], e[1])
		}
	}

	reorder := func(l int, ref []int) {
		pos := make(map[int]int, len(ref))
		for i, n := range ref {
			pos[n] = i
		}
		bary := make(map[int]float64, len(order[l]))
		for i, n := range order[l] {
			sum, count := 0.0, 0
			for _, m := range neighbours[n] {
				if p, ok := pos[m]; ok {
					sum += float64(p)
					count++
				}
			}
			if count == 0 {
				bary[n] = float64(i)
				continue
			}
			bary[n] = sum / float64(count)
		}
		sort.SliceStable(order[l], func(a, b int) bool {
			return bary[order[l][a]] < bary[order[l][b]]
		})
	}

	if down {
		for l := 1; l < len(order); l++ {
			reorder(l, order[l-1])
		}
		return
	}
	for l := len(order) - 2; l >= 0; l-- {
		reorder(l, order[l+1])
	}
}

// place assigns coordinates: layers stack top-down, nodes run left to
// right, and each layer is centred on the widest one.
func place(nodes []Node, order [][]int) {
	widths := make([]float64, len(order))
	widest := 0.0
	for l, row := range order {
		for i, n := range row {
			if i > 0 {
				widths[l] += NodeGap
			}
			widths[l] += nodes[n].Width
		}
		widest = max(widest, widths[l])
	}

	y := 0.0
	for l, row := range order {
		x := (widest - widths[l]) / 2
		tallest := 0.0
		for _, n := range row {
			nodes[n].X, nodes[n].Y = x, y
			x += nodes[n].Width + NodeGap
			tallest = max(tallest, nodes[n].Height)
		}
		y += tallest + LayerGap
	}
}
