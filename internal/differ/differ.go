// Package differ provides semantic comparison of CloudFormation templates.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// Entry actions.
const (
	ActionAdded    = "added"
	ActionRemoved  = "removed"
	ActionModified = "modified"
)

// Options configures the differ.
type Options struct {
	// IgnoreOrder ignores array element order in comparisons
	IgnoreOrder bool
}

// Compare compares two templates. Resources, parameters and outputs are
// reported as entries; parameters and outputs use the types "Parameter" and
// "Output".
func Compare(before, after *cdk.Template, opts Options) cdk.TemplateDiff {
	diff := cdk.TemplateDiff{Entries: []cdk.DiffEntry{}}

	for _, name := range unionKeys(before.Resources, after.Resources) {
		r1, had := before.Resources[name]
		r2, has := after.Resources[name]
		switch {
		case !had:
			diff.Entries = append(diff.Entries, cdk.DiffEntry{Resource: name, Type: r2.Type, Action: ActionAdded})
		case !has:
			diff.Entries = append(diff.Entries, cdk.DiffEntry{Resource: name, Type: r1.Type, Action: ActionRemoved})
		default:
			if changes := compareResources(r1, r2, opts); len(changes) > 0 {
				diff.Entries = append(diff.Entries, cdk.DiffEntry{Resource: name, Type: r1.Type, Action: ActionModified, Changes: changes})
			}
		}
	}

	diff.Entries = append(diff.Entries, compareSection("Parameter", toGeneric(before.Parameters), toGeneric(after.Parameters), opts)...)
	diff.Entries = append(diff.Entries, compareSection("Output", toGeneric(before.Outputs), toGeneric(after.Outputs), opts)...)

	for _, e := range diff.Entries {
		switch e.Action {
		case ActionAdded:
			diff.Summary.Added++
		case ActionRemoved:
			diff.Summary.Removed++
		case ActionModified:
			diff.Summary.Modified++
		}
	}
	diff.Summary.Total = len(diff.Entries)

	return diff
}

// CompareFiles compares two template files.
func CompareFiles(file1, file2 string, opts Options) (cdk.TemplateDiff, error) {
	t1, err := LoadTemplate(file1)
	if err != nil {
		return cdk.TemplateDiff{}, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	t2, err := LoadTemplate(file2)
	if err != nil {
		return cdk.TemplateDiff{}, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(t1, t2, opts), nil
}

// LoadTemplate loads a CloudFormation template from a JSON or YAML file.
func LoadTemplate(path string) (*cdk.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTemplate(data)
}

// ParseTemplate decodes a JSON or YAML template. Values are normalized to
// the shapes encoding/json produces so both formats compare equal.
func ParseTemplate(data []byte) (*cdk.Template, error) {
	var template cdk.Template
	if err := json.Unmarshal(data, &template); err == nil {
		return &template, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse as JSON or YAML: %w", err)
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing YAML template: %w", err)
	}
	if err := json.Unmarshal(normalized, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// compareResources compares two resource definitions and returns changes.
func compareResources(def1, def2 cdk.ResourceDef, opts Options) []string {
	var changes []string

	if def1.Type != def2.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", def1.Type, def2.Type))
	}

	changes = append(changes, compareValues("", toGeneric(def1.Properties), toGeneric(def2.Properties), opts)...)

	if !deepEqual(toGeneric(def1.DependsOn), toGeneric(def2.DependsOn), Options{IgnoreOrder: true}) {
		changes = append(changes, "DependsOn changed")
	}

	sort.Strings(changes)
	return changes
}

// compareSection diffs the Parameters or Outputs section.
func compareSection(kind string, before, after any, opts Options) []cdk.DiffEntry {
	m1, _ := before.(map[string]any)
	m2, _ := after.(map[string]any)

	var entries []cdk.DiffEntry
	for _, name := range unionKeys(m1, m2) {
		v1, had := m1[name]
		v2, has := m2[name]
		switch {
		case !had:
			entries = append(entries, cdk.DiffEntry{Resource: name, Type: kind, Action: ActionAdded})
		case !has:
			entries = append(entries, cdk.DiffEntry{Resource: name, Type: kind, Action: ActionRemoved})
		default:
			if changes := compareValues("", v1, v2, opts); len(changes) > 0 {
				sort.Strings(changes)
				entries = append(entries, cdk.DiffEntry{Resource: name, Type: kind, Action: ActionModified, Changes: changes})
			}
		}
	}
	return entries
}

// compareValues walks two generic values and reports changed paths. Maps are
// descended into; anything else is compared whole.
func compareValues(path string, v1, v2 any, opts Options) []string {
	m1, ok1 := v1.(map[string]any)
	m2, ok2 := v2.(map[string]any)
	if !ok1 || !ok2 || isIntrinsic(m1) || isIntrinsic(m2) {
		if deepEqual(v1, v2, opts) {
			return nil
		}
		if path == "" {
			return []string{"modified"}
		}
		return []string{path + " modified"}
	}

	var changes []string
	for _, key := range unionKeys(m1, m2) {
		child := key
		if path != "" {
			child = path + "." + key
		}
		a, had := m1[key]
		b, has := m2[key]
		switch {
		case !had:
			changes = append(changes, child+" added")
		case !has:
			changes = append(changes, child+" removed")
		default:
			changes = append(changes, compareValues(child, a, b, opts)...)
		}
	}
	return changes
}

// isIntrinsic reports whether m is a single-key intrinsic such as Ref.
func isIntrinsic(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	for k := range m {
		return k == "Ref" || k == "Condition" || strings.HasPrefix(k, "Fn::")
	}
	return false
}

// deepEqual compares two values deeply, optionally ignoring order.
func deepEqual(a, b any, opts Options) bool {
	if opts.IgnoreOrder {
		a = normalizeValue(a)
		b = normalizeValue(b)
	}
	return reflect.DeepEqual(a, b)
}

// normalizeValue sorts slices by their JSON encoding.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = normalizeValue(item)
		}
		sort.SliceStable(result, func(i, j int) bool {
			return encodeKey(result[i]) < encodeKey(result[j])
		})
		return result
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = normalizeValue(v)
		}
		return result
	default:
		return v
	}
}

func encodeKey(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// toGeneric converts typed template values to the generic shapes
// encoding/json decodes into.
func toGeneric(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func unionKeys[V any](a, b map[string]V) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Format renders a diff for terminals, one line per change.
func Format(diff cdk.TemplateDiff) string {
	if diff.Summary.Total == 0 {
		return "No differences\n"
	}

	var sb strings.Builder
	for _, e := range diff.Entries {
		sign := "~"
		switch e.Action {
		case ActionAdded:
			sign = "+"
		case ActionRemoved:
			sign = "-"
		}
		fmt.Fprintf(&sb, "%s %s (%s)\n", sign, e.Resource, e.Type)
		for _, c := range e.Changes {
			fmt.Fprintf(&sb, "    %s\n", c)
		}
	}
	fmt.Fprintf(&sb, "\n%d added, %d removed, %d modified\n", diff.Summary.Added, diff.Summary.Removed, diff.Summary.Modified)
	return sb.String()
}
