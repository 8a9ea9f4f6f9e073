// Package analysis computes structural insights over a feature model's
// implication graph: which features carry the most constraint load and
// which act as bottlenecks between otherwise independent subtrees. The
// output is deterministic and capped, suitable for robot consumers.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/vanderheijden86/fmv/pkg/model"
)

// DefaultTopK caps ranked lists in the insights output.
const DefaultTopK = 10

// pageRankDamp and pageRankTol are the standard PageRank parameters.
const (
	pageRankDamp = 0.85
	pageRankTol  = 1e-6
)

// FeatureScore pairs a feature with a centrality score.
type FeatureScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Insights summarizes the implication structure of one feature model.
type Insights struct {
	FeatureCount int `json:"feature_count"`
	EdgeCount    int `json:"edge_count"`
	MaxDepth     int `json:"max_depth"`
	XORGroups    int `json:"xor_groups"`
	ORGroups     int `json:"or_groups"`
	Mandatory    int `json:"mandatory_features"`

	// ConstraintLoad ranks features by PageRank over the implication
	// graph: features many others imply score high.
	ConstraintLoad []FeatureScore `json:"constraint_load"`

	// Bottlenecks ranks features by betweenness centrality: features on
	// many implication paths between other features.
	Bottlenecks []FeatureScore `json:"bottlenecks"`
}

// Compute builds the implication digraph and derives insights. Edges
// follow implication direction: child → parent for tree edges, plus a
// parent → child edge per mandatory child (the bi-implication), plus
// dependent → required edges for the resolved cross-tree constraints
// given in requires.
func Compute(idx *model.Index, requires [][2]string) Insights {
	names := idx.Names()
	ins := Insights{FeatureCount: len(names)}

	id := make(map[string]int64, len(names))
	g := simple.NewDirectedGraph()
	for i, name := range names {
		id[name] = int64(i)
		g.AddNode(simple.Node(int64(i)))
	}

	addEdge := func(from, to string) {
		f, okF := id[from]
		t, okT := id[to]
		if !okF || !okT || f == t {
			return
		}
		if g.Edge(f, t) == nil {
			g.SetEdge(simple.Edge{F: simple.Node(f), T: simple.Node(t)})
			ins.EdgeCount++
		}
	}

	for _, name := range names {
		node := idx.Lookup(name)
		if node.Parent != "" {
			addEdge(name, node.Parent)
			if node.Mandatory {
				addEdge(node.Parent, name)
			}
		}
		switch node.Group {
		case model.GroupXOR:
			ins.XORGroups++
		case model.GroupOR:
			ins.ORGroups++
		}
		if node.Mandatory {
			ins.Mandatory++
		}
		if depth := depthOf(idx, name); depth > ins.MaxDepth {
			ins.MaxDepth = depth
		}
	}
	for _, edge := range requires {
		addEdge(edge[0], edge[1])
	}

	if len(names) == 0 {
		return ins
	}

	ranks := network.PageRank(g, pageRankDamp, pageRankTol)
	ins.ConstraintLoad = topScores(names, id, ranks, DefaultTopK)

	between := network.Betweenness(g)
	ins.Bottlenecks = topScores(names, id, between, DefaultTopK)

	return ins
}

// depthOf counts hops from the feature up to its root.
func depthOf(idx *model.Index, name string) int {
	depth := 0
	for node := idx.Lookup(name); node != nil && node.Parent != ""; node = idx.Lookup(node.Parent) {
		depth++
	}
	return depth
}

// topScores extracts the k highest-scoring features, ties broken by
// name so output is stable across runs.
func topScores(names []string, id map[string]int64, scores map[int64]float64, k int) []FeatureScore {
	out := make([]FeatureScore, 0, len(names))
	for _, name := range names {
		out = append(out, FeatureScore{Name: name, Score: scores[id[name]]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}
