// Package template provides CloudFormation template building from discovered declarations.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/discover"
	"github.com/VPPATEL-SPS/aws-cdk-examples/intrinsics"
)

// FormatVersion is the only template format version CloudFormation accepts.
const FormatVersion = "2010-09-09"

// Builder constructs CloudFormation templates from discovered declarations.
type Builder struct {
	result      *discover.Result
	values      map[string]any // Actual values for serialization
	description string
}

// NewBuilder creates a template builder from a discovery result.
func NewBuilder(result *discover.Result) *Builder {
	return &Builder{
		result: result,
		values: make(map[string]any),
	}
}

// SetValue associates a declared value with its logical name.
func (b *Builder) SetValue(name string, value any) {
	b.values[name] = value
}

// SetValues associates every entry of values with its logical name.
func (b *Builder) SetValues(values map[string]any) {
	for name, value := range values {
		b.values[name] = value
	}
}

// SetDescription sets the template Description.
func (b *Builder) SetDescription(description string) {
	b.description = description
}

// Build constructs the CloudFormation template.
func (b *Builder) Build() (*cdk.Template, error) {
	if err := b.checkUndeclared(); err != nil {
		return nil, err
	}

	order, err := b.topologicalSort()
	if err != nil {
		return nil, err
	}

	template := &cdk.Template{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              b.description,
		Resources:                make(map[string]cdk.ResourceDef),
	}

	if len(b.result.Parameters) > 0 {
		template.Parameters = make(map[string]cdk.Parameter)
		for name, param := range b.result.Parameters {
			value, ok := b.values[name].(intrinsics.Parameter)
			if !ok {
				return nil, fmt.Errorf("%s:%d: no Parameter value registered for %s", param.File, param.Line, name)
			}
			template.Parameters[name] = cdk.Parameter{
				Type:          value.Type,
				Description:   value.Description,
				Default:       value.Default,
				AllowedValues: value.AllowedValues,
			}
		}
	}

	for _, name := range order {
		res := b.result.Resources[name]
		value, ok := b.values[name]
		if !ok {
			return nil, fmt.Errorf("%s:%d: no value registered for resource %s", res.File, res.Line, name)
		}

		resource, ok := value.(cdk.Resource)
		if !ok {
			return nil, fmt.Errorf("%s:%d: %s (%T) is not a resource", res.File, res.Line, name, value)
		}

		props, err := b.serialize(name, value)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}

		dependsOn, err := liftDependsOn(props)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %s: %w", res.File, res.Line, name, err)
		}

		if len(props) == 0 {
			props = nil
		}
		template.Resources[name] = cdk.ResourceDef{
			Type:       resource.ResourceType(),
			Properties: props,
			DependsOn:  dependsOn,
		}
	}

	if len(b.result.Outputs) > 0 {
		template.Outputs = make(map[string]cdk.Output)
		for name, out := range b.result.Outputs {
			if _, ok := b.values[name].(intrinsics.Output); !ok {
				return nil, fmt.Errorf("%s:%d: no Output value registered for %s", out.File, out.Line, name)
			}
			fields, err := b.serialize(name, b.values[name])
			if err != nil {
				return nil, fmt.Errorf("serializing output %s: %w", name, err)
			}
			template.Outputs[name] = outputFromFields(fields)
		}
	}

	return template, nil
}

// checkUndeclared rejects values whose name matches no discovered resource,
// parameter or output. Such a value would otherwise be left out of the
// template without notice.
func (b *Builder) checkUndeclared() error {
	var undeclared []string
	for name := range b.values {
		if _, ok := b.result.Resources[name]; ok {
			continue
		}
		if _, ok := b.result.Parameters[name]; ok {
			continue
		}
		if _, ok := b.result.Outputs[name]; ok {
			continue
		}
		undeclared = append(undeclared, name)
	}
	if len(undeclared) == 0 {
		return nil
	}
	sort.Strings(undeclared)
	return fmt.Errorf("values registered without a matching declaration: %s", strings.Join(undeclared, ", "))
}

// serialize converts a value to generic JSON and resolves references from
// the declaration source.
func (b *Builder) serialize(name string, value any) (map[string]any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var props map[string]any
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, err
	}

	r := &resolver{result: b.result, active: map[string]bool{name: true}}
	if expr, ok := b.result.Decls[name]; ok {
		resolved, _ := r.resolve(expr, props).(map[string]any)
		props = resolved
	}
	return props, nil
}

// liftDependsOn moves the DependsOn resource attribute out of the properties.
func liftDependsOn(props map[string]any) ([]string, error) {
	raw, ok := props["DependsOn"]
	if !ok {
		return nil, nil
	}
	delete(props, "DependsOn")

	items, ok := raw.([]any)
	if !ok {
		return nil, errors.New("DependsOn must be a list")
	}

	var names []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			names = append(names, v)
		case map[string]any:
			ref, ok := v["Ref"].(string)
			if !ok || ref == "" {
				return nil, errors.New("DependsOn entries must name resources")
			}
			names = append(names, ref)
		default:
			return nil, fmt.Errorf("DependsOn entry %v is not a resource", item)
		}
	}
	return names, nil
}

func outputFromFields(fields map[string]any) cdk.Output {
	output := cdk.Output{Value: fields["Value"]}
	if desc, ok := fields["Description"].(string); ok {
		output.Description = desc
	}
	if exportName, ok := fields["ExportName"]; ok {
		output.Export = &cdk.OutputExport{Name: exportName}
	}
	return output
}

// dependencies returns the resources a resource depends on, including names
// listed in DependsOn and those reached through property vars.
func (b *Builder) dependencies(name string) []string {
	return b.result.ResolveDependencies(name)
}

// topologicalSort returns resources in dependency order.
func (b *Builder) topologicalSort() ([]string, error) {
	resources := b.result.Resources

	// Build adjacency list
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range resources {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name := range resources {
		for _, dep := range b.dependencies(name) {
			graph[dep] = append(graph[dep], name)
			inDegree[name]++
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue) // Deterministic order

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue) // Keep sorted for determinism
			}
		}
	}

	if len(result) != len(resources) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	resources := b.result.Resources
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.dependencies(node) {
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !visited[name] && findCycle(name) {
			break
		}
	}

	if len(cycle) == 0 {
		return errors.New("circular dependency detected")
	}

	var msg strings.Builder
	msg.WriteString("circular dependency detected:\n")
	for i, name := range cycle {
		res := resources[name]
		fmt.Fprintf(&msg, "  %s (%s:%d)", name, res.File, res.Line)
		if i < len(cycle)-1 {
			msg.WriteString("\n    → ")
		}
	}
	return errors.New(msg.String())
}

// ToJSON serializes the template to JSON.
func ToJSON(t *cdk.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *cdk.Template) ([]byte, error) {
	return yaml.Marshal(t)
}

// Encode serializes the template in the named format ("json" or "yaml").
func Encode(t *cdk.Template, format string) ([]byte, error) {
	switch format {
	case "json", "":
		return ToJSON(t)
	case "yaml", "yml":
		return ToYAML(t)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}
