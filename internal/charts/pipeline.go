package charts

import "microcasa/internal/research"

// Diagram is the directed MICROCASA pipeline, rendered left to right.
type Diagram struct {
	Nodes []research.PipelineNode `json:"nodes"`
	Edges []research.PipelineEdge `json:"edges"`
}

// Stage pairs a node with the label of its outgoing edge, if any.
type Stage struct {
	Node research.PipelineNode
	Out  string
}

func Pipeline(d *research.Data) Diagram {
	return Diagram{Nodes: d.Pipeline.Nodes, Edges: d.Pipeline.Edges}
}

// Stages orders the nodes by following edges from the node with no inbound
// edge. Nodes unreachable from it are appended in declaration order.
func (g Diagram) Stages() []Stage {
	byID := make(map[string]research.PipelineNode, len(g.Nodes))
	inbound := make(map[string]bool, len(g.Nodes))
	out := make(map[string]research.PipelineEdge, len(g.Edges))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	for _, e := range g.Edges {
		inbound[e.To] = true
		out[e.From] = e
	}

	var stages []Stage
	visited := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if inbound[n.ID] {
			continue
		}
		for id := n.ID; id != "" && !visited[id]; {
			visited[id] = true
			e, ok := out[id]
			stages = append(stages, Stage{Node: byID[id], Out: e.Label})
			if !ok {
				break
			}
			id = e.To
		}
	}
	for _, n := range g.Nodes {
		if !visited[n.ID] {
			stages = append(stages, Stage{Node: n, Out: out[n.ID].Label})
		}
	}
	return stages
}
