// Package fmxml decodes feature-model description files. The format is a
// nested <feature> tree where grouped children sit inside a <group>
// element on their parent, plus optional cross-tree <constraint> blocks
// carrying an English statement.
//
// Example:
//
//	<featureModel>
//	  <feature name="Store">
//	    <group type="xor">
//	      <feature name="Basic"/>
//	      <feature name="Pro" mandatory="true"/>
//	    </group>
//	  </feature>
//	  <constraint>
//	    <englishStatement>Location is required to filter by location</englishStatement>
//	  </constraint>
//	</featureModel>
package fmxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/vanderheijden86/fmv/pkg/model"
)

type xmlFeature struct {
	Name      string       `xml:"name,attr"`
	Mandatory string       `xml:"mandatory,attr"`
	Group     *xmlGroup    `xml:"group"`
	Children  []xmlFeature `xml:"feature"`
}

type xmlGroup struct {
	Type     string       `xml:"type,attr"`
	Children []xmlFeature `xml:"feature"`
}

type xmlConstraint struct {
	EnglishStatement string `xml:"englishStatement"`
}

type xmlModel struct {
	Feature *xmlFeature `xml:"feature"`

	// Constraints may appear bare or inside a <constraints> wrapper.
	Constraints []xmlConstraint `xml:"constraint"`
	Wrapped     []xmlConstraint `xml:"constraints>constraint"`
}

// Parse decodes a feature-model document into its root feature and
// cross-tree constraints. The returned tree carries parent
// back-references by name and is validated for uniqueness before return.
func Parse(data []byte) (*model.FeatureNode, []*model.Constraint, error) {
	var doc xmlModel
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode feature model: %w", err)
	}
	if doc.Feature == nil {
		return nil, nil, fmt.Errorf("decode feature model: no root <feature> element")
	}

	root, err := buildFeature(doc.Feature, "")
	if err != nil {
		return nil, nil, err
	}
	if err := root.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid feature model: %w", err)
	}

	raw := append(doc.Constraints, doc.Wrapped...)
	constraints := make([]*model.Constraint, 0, len(raw))
	for _, c := range raw {
		stmt := strings.TrimSpace(c.EnglishStatement)
		if stmt == "" {
			continue
		}
		constraints = append(constraints, &model.Constraint{
			EnglishStatement: stmt,
			Type:             constraintType(stmt),
		})
	}

	return root, constraints, nil
}

// buildFeature converts one xmlFeature subtree. Grouped children take
// priority over plain nested features, matching the source format where a
// feature has either a <group> or direct <feature> children.
func buildFeature(xf *xmlFeature, parent string) (*model.FeatureNode, error) {
	if xf.Name == "" {
		return nil, fmt.Errorf("feature under %q is missing a name attribute", parent)
	}

	node := &model.FeatureNode{
		Name:      xf.Name,
		Mandatory: strings.EqualFold(xf.Mandatory, "true"),
		Parent:    parent,
	}

	children := xf.Children
	if xf.Group != nil {
		group := model.Group(strings.ToUpper(xf.Group.Type))
		if !group.IsValid() || group == model.GroupNone {
			return nil, fmt.Errorf("feature %s: unknown group type %q", xf.Name, xf.Group.Type)
		}
		node.Group = group
		children = xf.Group.Children
	}

	for i := range children {
		child, err := buildFeature(&children[i], xf.Name)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}

// constraintType classifies a constraint from its English phrasing:
// "required to" marks a requires constraint, anything else excludes.
func constraintType(statement string) string {
	if strings.Contains(statement, "required to") {
		return "requires"
	}
	return "excludes"
}
