package checks

import (
	"strings"

	"github.com/VPPATEL-SPS/aws-cdk-examples/intrinsics"
)

// References verifies that every reference in the template names something
// the template declares.
type References struct{}

func (References) Name() string { return "references" }

func (References) Description() string {
	return "Ref, Fn::GetAtt and Fn::Sub placeholders name declared resources, parameters or pseudo parameters"
}

const (
	refQuery = `(.Resources, (.Outputs // {})) | to_entries[] | .key as $owner | .value
		| .. | objects | select(has("Ref")) | {owner: $owner, target: .Ref}`

	getAttQuery = `(.Resources, (.Outputs // {})) | to_entries[] | .key as $owner | .value
		| .. | objects | select(has("Fn::GetAtt")) | {owner: $owner, args: .["Fn::GetAtt"]}`

	subQuery = `(.Resources, (.Outputs // {})) | to_entries[] | .key as $owner | .value
		| .. | objects | select(has("Fn::Sub")) | {owner: $owner, sub: .["Fn::Sub"]}`
)

func (c References) Run(doc *Document) []Finding {
	var findings []Finding

	refs, err := doc.Query(refQuery)
	if err != nil {
		return []Finding{errorf(c.Name(), "", "%v", err)}
	}
	for _, raw := range refs {
		m := raw.(map[string]any)
		owner, _ := m["owner"].(string)
		target, _ := m["target"].(string)
		switch {
		case target == "":
			findings = append(findings, errorf(c.Name(), owner, "unresolved Ref"))
		case !doc.declares(target):
			findings = append(findings, errorf(c.Name(), owner, "Ref to undeclared %q", target))
		}
	}

	getAtts, err := doc.Query(getAttQuery)
	if err != nil {
		return append(findings, errorf(c.Name(), "", "%v", err))
	}
	for _, raw := range getAtts {
		m := raw.(map[string]any)
		owner, _ := m["owner"].(string)
		args, _ := m["args"].([]any)
		if len(args) != 2 {
			findings = append(findings, errorf(c.Name(), owner, "Fn::GetAtt needs a resource and an attribute"))
			continue
		}
		target, _ := args[0].(string)
		if _, ok := doc.resources[target]; !ok {
			findings = append(findings, errorf(c.Name(), owner, "Fn::GetAtt on undeclared resource %q", target))
		}
	}

	subs, err := doc.Query(subQuery)
	if err != nil {
		return append(findings, errorf(c.Name(), "", "%v", err))
	}
	for _, raw := range subs {
		m := raw.(map[string]any)
		owner, _ := m["owner"].(string)

		var text string
		locals := make(map[string]bool)
		switch sub := m["sub"].(type) {
		case string:
			text = sub
		case []any:
			if len(sub) > 0 {
				text, _ = sub[0].(string)
			}
			if len(sub) > 1 {
				vars, _ := sub[1].(map[string]any)
				for name := range vars {
					locals[name] = true
				}
			}
		}

		for _, name := range substitutions(text) {
			if locals[name] {
				continue
			}
			target, _, _ := strings.Cut(name, ".")
			if !doc.declares(target) {
				findings = append(findings, errorf(c.Name(), owner, "Fn::Sub references undeclared ${%s}", name))
			}
		}
	}

	return findings
}

// declares reports whether name is a resource, a parameter or a pseudo parameter.
func (d *Document) declares(name string) bool {
	if _, ok := d.resources[name]; ok {
		return true
	}
	if _, ok := intrinsics.PseudoParameters[name]; ok {
		return true
	}
	return d.hasParameter(name)
}
