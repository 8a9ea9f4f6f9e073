package analysis

import (
	"testing"

	"github.com/vanderheijden86/fmv/pkg/model"
)

func chainIndex() *model.Index {
	root := &model.FeatureNode{
		Name: "Root",
		Children: []*model.FeatureNode{
			{
				Name:      "Mid",
				Mandatory: true,
				Parent:    "Root",
				Group:     model.GroupXOR,
				Children: []*model.FeatureNode{
					{Name: "LeafA", Parent: "Mid"},
					{Name: "LeafB", Parent: "Mid"},
				},
			},
			{Name: "Side", Parent: "Root"},
		},
	}
	return model.NewIndex([]*model.FeatureNode{root})
}

// TestComputeCountsStructure verifies node, edge, depth and group tallies
func TestComputeCountsStructure(t *testing.T) {
	ins := Compute(chainIndex(), nil)

	if ins.FeatureCount != 5 {
		t.Errorf("FeatureCount = %d, want 5", ins.FeatureCount)
	}
	// Tree edges: Mid→Root, Root→Mid (mandatory), LeafA→Mid, LeafB→Mid, Side→Root.
	if ins.EdgeCount != 5 {
		t.Errorf("EdgeCount = %d, want 5", ins.EdgeCount)
	}
	if ins.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", ins.MaxDepth)
	}
	if ins.XORGroups != 1 || ins.ORGroups != 0 {
		t.Errorf("groups = %d XOR / %d OR, want 1/0", ins.XORGroups, ins.ORGroups)
	}
	if ins.Mandatory != 1 {
		t.Errorf("Mandatory = %d, want 1", ins.Mandatory)
	}
}

// TestComputeCrossTreeEdges verifies requires edges join the graph once
func TestComputeCrossTreeEdges(t *testing.T) {
	requires := [][2]string{{"LeafA", "Side"}, {"LeafA", "Side"}, {"LeafA", "Ghost"}}
	ins := Compute(chainIndex(), requires)

	// Duplicate and unknown-name edges are dropped.
	if ins.EdgeCount != 6 {
		t.Errorf("EdgeCount = %d, want 6", ins.EdgeCount)
	}
}

// TestComputeRankingsAreStable verifies deterministic, capped output
func TestComputeRankingsAreStable(t *testing.T) {
	first := Compute(chainIndex(), nil)
	second := Compute(chainIndex(), nil)

	if len(first.ConstraintLoad) != 5 || len(first.Bottlenecks) != 5 {
		t.Fatalf("rankings = %d/%d entries, want 5/5",
			len(first.ConstraintLoad), len(first.Bottlenecks))
	}
	for i := range first.ConstraintLoad {
		if first.ConstraintLoad[i] != second.ConstraintLoad[i] {
			t.Errorf("ConstraintLoad[%d] differs between runs: %v vs %v",
				i, first.ConstraintLoad[i], second.ConstraintLoad[i])
		}
	}

	// The root is the implication sink and must carry the highest load.
	if first.ConstraintLoad[0].Name != "Root" && first.ConstraintLoad[0].Name != "Mid" {
		t.Errorf("top constraint load = %s, expected Root or Mid", first.ConstraintLoad[0].Name)
	}

	// Mid sits between the leaves and the root.
	foundMid := false
	for _, fs := range first.Bottlenecks {
		if fs.Name == "Mid" && fs.Score > 0 {
			foundMid = true
		}
	}
	if !foundMid {
		t.Error("expected Mid to have positive betweenness")
	}
}

// TestComputeEmptyModel verifies the zero-feature edge case
func TestComputeEmptyModel(t *testing.T) {
	ins := Compute(model.NewIndex(nil), nil)
	if ins.FeatureCount != 0 || ins.EdgeCount != 0 {
		t.Errorf("empty model insights = %+v", ins)
	}
	if ins.ConstraintLoad != nil || ins.Bottlenecks != nil {
		t.Error("expected no rankings for an empty model")
	}
}
