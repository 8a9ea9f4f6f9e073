package logic

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/fmv/pkg/model"
)

// storeIndex builds the reference model used across logic tests:
//
//	Store
//	├── Catalog (mandatory)
//	├── Search (XOR)
//	│   ├── ByName
//	│   └── ByLocation
//	└── Location
func storeIndex() *model.Index {
	root := &model.FeatureNode{
		Name: "Store",
		Children: []*model.FeatureNode{
			{Name: "Catalog", Mandatory: true, Parent: "Store"},
			{
				Name:   "Search",
				Group:  model.GroupXOR,
				Parent: "Store",
				Children: []*model.FeatureNode{
					{Name: "ByName", Parent: "Search"},
					{Name: "ByLocation", Parent: "Search"},
				},
			},
			{Name: "Location", Parent: "Store"},
		},
	}
	return model.NewIndex([]*model.FeatureNode{root})
}

func locationConstraint() []*model.Constraint {
	return []*model.Constraint{{
		EnglishStatement: "Location is required to filter by location",
		Type:             "requires",
	}}
}

// TestRulesGeneration verifies the rule strings derived from the tree
func TestRulesGeneration(t *testing.T) {
	a := NewAnalyzer(storeIndex(), locationConstraint())
	rules := a.Rules()

	want := []string{
		"Store",
		"Store → Catalog",
		"Catalog → Store",
		"Search → Store",
		"Search → (ByName ∨ ByLocation)",
		"¬(ByName ∧ ByLocation)",
		"ByName → Search",
		"ByLocation → Search",
		"Location → Store",
		"ByLocation → Location",
	}
	for _, rule := range want {
		found := false
		for _, got := range rules {
			if got == rule {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing rule %q in %v", rule, rules)
		}
	}
}

// TestConstraintResolution verifies the camel-case phrase match picks up ByLocation
func TestConstraintResolution(t *testing.T) {
	a := NewAnalyzer(storeIndex(), locationConstraint())
	if len(a.requires) != 1 {
		t.Fatalf("expected 1 requires edge, got %v", a.requires)
	}
	if a.requires[0] != [2]string{"ByLocation", "Location"} {
		t.Errorf("requires edge = %v, want [ByLocation Location]", a.requires[0])
	}
}

// TestValidateAcceptsValidSelection verifies a satisfying configuration passes
func TestValidateAcceptsValidSelection(t *testing.T) {
	a := NewAnalyzer(storeIndex(), locationConstraint())
	res := a.ValidateSelection([]string{"Store", "Catalog"})
	if !res.IsValid {
		t.Fatalf("expected valid, got messages %v", res.Messages)
	}
	if len(res.Messages) != 0 {
		t.Errorf("valid selection must carry no messages, got %v", res.Messages)
	}
}

// TestValidateMissingMandatory verifies the mandatory-closure message
func TestValidateMissingMandatory(t *testing.T) {
	a := NewAnalyzer(storeIndex(), nil)
	res := a.ValidateSelection([]string{"Store"})
	if res.IsValid {
		t.Fatal("expected invalid: Catalog is mandatory under Store")
	}
	assertMessage(t, res.Messages, "Missing mandatory feature: Catalog")
}

// TestValidateXORNeedsExactlyOne verifies both zero and two selections fail
func TestValidateXORNeedsExactlyOne(t *testing.T) {
	a := NewAnalyzer(storeIndex(), nil)

	res := a.ValidateSelection([]string{"Store", "Catalog", "Search"})
	if res.IsValid {
		t.Fatal("expected invalid: XOR group with no selected child")
	}
	assertMessage(t, res.Messages, "XOR group Search must have exactly one selection")

	res = a.ValidateSelection([]string{"Store", "Catalog", "Search", "ByName", "ByLocation", "Location"})
	if res.IsValid {
		t.Fatal("expected invalid: XOR group with two selected children")
	}
	assertMessage(t, res.Messages, "XOR group Search must have exactly one selection")
}

// TestValidateCrossTreeRequires verifies the ByLocation→Location constraint message
func TestValidateCrossTreeRequires(t *testing.T) {
	a := NewAnalyzer(storeIndex(), locationConstraint())
	res := a.ValidateSelection([]string{"Store", "Catalog", "Search", "ByLocation"})
	if res.IsValid {
		t.Fatal("expected invalid: ByLocation without Location")
	}
	assertMessage(t, res.Messages, "Location feature is required for ByLocation")
}

// TestValidateIsDeterministic verifies repeated validation of one selection agrees
func TestValidateIsDeterministic(t *testing.T) {
	a := NewAnalyzer(storeIndex(), locationConstraint())
	sel := []string{"Store", "Catalog", "Search", "ByLocation"}

	first := a.ValidateSelection(sel)
	for i := 0; i < 5; i++ {
		again := a.ValidateSelection(sel)
		if again.IsValid != first.IsValid || len(again.Messages) != len(first.Messages) {
			t.Fatalf("validation diverged on run %d: %v vs %v", i, again, first)
		}
		for j := range first.Messages {
			if again.Messages[j] != first.Messages[j] {
				t.Fatalf("message %d diverged: %q vs %q", j, again.Messages[j], first.Messages[j])
			}
		}
	}
}

// TestMWPsAreMinimalAndClosed verifies the enumerated products
func TestMWPsAreMinimalAndClosed(t *testing.T) {
	a := NewAnalyzer(storeIndex(), locationConstraint())
	mwps := a.MWPs()
	if len(mwps) == 0 {
		t.Fatal("expected at least one MWP")
	}

	idx := storeIndex()
	for _, mwp := range mwps {
		has := make(map[string]bool, len(mwp))
		for _, name := range mwp {
			has[name] = true
		}

		if !has["Store"] {
			t.Errorf("MWP %v misses root Store", mwp)
		}
		if !has["Catalog"] {
			t.Errorf("MWP %v misses mandatory Catalog", mwp)
		}
		if has["ByName"] && has["ByLocation"] {
			t.Errorf("MWP %v selects both XOR alternatives", mwp)
		}
		if has["ByLocation"] && !has["Location"] {
			t.Errorf("MWP %v violates the cross-tree requires", mwp)
		}

		// Every enumerated product must itself validate.
		if res := a.ValidateSelection(mwp); !res.IsValid {
			t.Errorf("MWP %v fails validation: %v", mwp, res.Messages)
		}

		for _, name := range mwp {
			if !idx.Contains(name) {
				t.Errorf("MWP %v names unknown feature %s", mwp, name)
			}
		}
	}

	// Pairwise minimality: no MWP strictly contains another.
	for i := range mwps {
		for j := range mwps {
			if i == j {
				continue
			}
			if containsAll(mwps[i], mwps[j]) && len(mwps[i]) > len(mwps[j]) {
				t.Errorf("MWP %v is a strict superset of %v", mwps[i], mwps[j])
			}
		}
	}

	// The smallest product for this model is {Store, Catalog}.
	if len(mwps[0]) != 2 || mwps[0][0] != "Catalog" || mwps[0][1] != "Store" {
		t.Errorf("smallest MWP = %v, want [Catalog Store]", mwps[0])
	}
}

// TestSolverUnsatCore verifies the DPLL backend on a tiny contradiction
func TestSolverUnsatCore(t *testing.T) {
	if _, ok := solve(1, [][]int{{1}, {-1}}); ok {
		t.Fatal("expected x ∧ ¬x to be unsatisfiable")
	}
	assign, ok := solve(2, [][]int{{1, 2}, {-1, 2}})
	if !ok {
		t.Fatal("expected satisfiable formula")
	}
	if assign[2] != assignedTrue {
		t.Errorf("expected x2 forced true, got %v", assign)
	}
}

func assertMessage(t *testing.T, messages []string, want string) {
	t.Helper()
	for _, m := range messages {
		if m == want {
			return
		}
	}
	t.Errorf("missing message %q in %v", want, messages)
}

func containsAll(super, sub model.MWP) bool {
	has := make(map[string]bool, len(super))
	for _, name := range super {
		has[name] = true
	}
	for _, name := range sub {
		if !has[name] {
			return false
		}
	}
	return true
}

// TestMentionedFeaturesOrdering verifies appearance-order resolution
func TestMentionedFeaturesOrdering(t *testing.T) {
	a := NewAnalyzer(storeIndex(), nil)
	got := a.mentionedFeatures("ByName is required to use Catalog")
	if len(got) != 2 || got[0] != "ByName" || got[1] != "Catalog" {
		t.Errorf("mentionedFeatures = %v, want [ByName Catalog]", got)
	}
	if got := a.mentionedFeatures("no features here"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

// TestRulesJoinFormatting verifies group rules use the disjunction form
func TestRulesJoinFormatting(t *testing.T) {
	a := NewAnalyzer(storeIndex(), nil)
	found := false
	for _, rule := range a.Rules() {
		if strings.Contains(rule, "∨") {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected at least one disjunction rule for the XOR group")
	}
}
