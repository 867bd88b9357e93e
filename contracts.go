// Package cdkexamples declares Lambda stacks as Go values and synthesizes them
// into CloudFormation templates.
//
// Each stack is a Go package of package-level declarations:
//
//	var ExampleLambdaRole = iam.Role{
//	    AssumeRolePolicyDocument: LambdaTrustPolicy,
//	}
//
//	var ExampleLambdaFunction = lambda.Function{
//	    FunctionName: "example-lambda",
//	    Role:         ExampleLambdaRole.Arn, // GetAtt reference
//	}
//
// The stackctl CLI discovers these declarations via AST parsing, resolves the
// references between them and writes one template per stack.
package cdkexamples

import (
	"encoding/json"
)

// Resource represents a CloudFormation resource.
// Every type under resources/ implements this interface.
type Resource interface {
	// ResourceType returns the CloudFormation type (e.g., "AWS::Lambda::Function")
	ResourceType() string
}

// AttrRef represents a GetAtt reference to a resource attribute.
//
// Resource types expose one AttrRef field per attribute. The fields are never
// populated at runtime; the template builder rewrites each use site from the
// declaration source:
//
//	Role: ExampleLambdaRole.Arn  ->  {"Fn::GetAtt": ["ExampleLambdaRole", "Arn"]}
type AttrRef struct {
	// Resource is the logical name of the referenced resource
	Resource string
	// Attribute is the attribute name (e.g., "Arn", "RootResourceId")
	Attribute string
}

// MarshalJSON serializes AttrRef to CloudFormation GetAtt syntax.
func (a AttrRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{
		"Fn::GetAtt": {a.Resource, a.Attribute},
	})
}

// IsZero returns true if the AttrRef has not been populated.
func (a AttrRef) IsZero() bool {
	return a.Resource == "" && a.Attribute == ""
}

// DiscoveredResource represents a resource found by AST parsing.
type DiscoveredResource struct {
	// Name is the variable name (becomes CloudFormation logical ID)
	Name string
	// Type is the Go type (e.g., "lambda.Function", "iam.Role")
	Type string
	// Package is the package name containing the declaration
	Package string
	// File is the source file path
	File string
	// Line is the line number of the declaration
	Line int
	// Dependencies are names of referenced resources and package vars
	Dependencies []string
	// AttrRefUsages are the Resource.Attribute selectors used in the declaration
	AttrRefUsages []AttrRefUsage
}

// AttrRefUsage records a Resource.Attribute selector found in a declaration.
type AttrRefUsage struct {
	ResourceName string
	Attribute    string
	// FieldPath is the dotted field path the selector was assigned to
	FieldPath string
}

// DiscoveredParameter is a template parameter found by AST parsing.
type DiscoveredParameter struct {
	Name string
	File string
	Line int
}

// DiscoveredOutput is a template output found by AST parsing.
type DiscoveredOutput struct {
	Name          string
	File          string
	Line          int
	Dependencies  []string
	AttrRefUsages []AttrRefUsage
}

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Parameters               map[string]Parameter   `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type       string         `json:"Type" yaml:"Type"`
	Properties map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn  []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
}

// Parameter is a CloudFormation template parameter.
type Parameter struct {
	Type          string `json:"Type" yaml:"Type"`
	Description   string `json:"Description,omitempty" yaml:"Description,omitempty"`
	Default       any    `json:"Default,omitempty" yaml:"Default,omitempty"`
	AllowedValues []any  `json:"AllowedValues,omitempty" yaml:"AllowedValues,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string        `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any           `json:"Value" yaml:"Value"`
	Export      *OutputExport `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// OutputExport names a cross-stack export.
type OutputExport struct {
	Name any `json:"Name" yaml:"Name"`
}

// BuildResult is the JSON output from `stackctl synth`.
type BuildResult struct {
	Success   bool      `json:"success"`
	Stack     string    `json:"stack"`
	Path      string    `json:"path,omitempty"`
	Template  *Template `json:"template,omitempty"`
	Resources []string  `json:"resources,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
}

// LintResult is the JSON output from `stackctl lint`.
type LintResult struct {
	Success bool        `json:"success"`
	Issues  []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single linting issue.
type LintIssue struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Rule     string `json:"rule"`
}

// ValidateResult is the JSON output from `stackctl validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Stack     string   `json:"stack"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ListResult is the JSON output from `stackctl list`.
type ListResult struct {
	Stacks []ListStack `json:"stacks"`
}

// ListStack is a single stack in the list output.
type ListStack struct {
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	Description string         `json:"description,omitempty"`
	Resources   []ListResource `json:"resources"`
}

// ListResource is a single resource in the list output.
type ListResource struct {
	Name string `json:"name"`
	Type string `json:"type"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// TemplateDiff is the semantic difference between two templates.
type TemplateDiff struct {
	Entries []DiffEntry `json:"entries"`
	Summary DiffSummary `json:"summary"`
}

// DiffEntry describes one changed resource.
type DiffEntry struct {
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Action   string   `json:"action"` // "added", "removed", "modified"
	Changes  []string `json:"changes,omitempty"`
}

// DiffSummary counts the entries of a TemplateDiff.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}
