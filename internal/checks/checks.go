// Package checks verifies cross-reference invariants on synthesized templates.
//
// Checks run on the template as CloudFormation will see it, after every Go
// reference has been resolved to Ref/Fn::GetAtt/Fn::Sub. Each check is
// independent and reports findings against logical resource names.
//
// Checks:
//
//	references          every Ref, Fn::GetAtt and ${} substitution resolves
//	role-trust          roles trust lambda.amazonaws.com only
//	no-wildcard-actions no "*" in allowed IAM actions
//	log-group-scope     role log permissions match the function's log group
//	single-role         each function uses exactly one role of the stack
//	rule-trigger        rules have a valid pattern or schedule and target functions
//	http-routes         route keys are well formed, unique and integrated
//	usage-plan-stage    usage plans bind the stage that was actually deployed
//	resource-schema     required properties, value types and enumerated values
package checks

import (
	"fmt"
	"sort"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one violated invariant.
type Finding struct {
	Check    string   `json:"check"`
	Resource string   `json:"resource,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	if f.Resource == "" {
		return fmt.Sprintf("%s: %s [%s]", f.Severity, f.Message, f.Check)
	}
	return fmt.Sprintf("%s: %s: %s [%s]", f.Severity, f.Resource, f.Message, f.Check)
}

// Report collects the findings for one stack.
type Report struct {
	Stack    string    `json:"stack"`
	Findings []Finding `json:"findings,omitempty"`
}

// HasErrors reports whether any finding is an error.
func (r Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error findings formatted for BuildResult.Errors.
func (r Report) Errors() []string {
	return r.filter(SeverityError)
}

// Warnings returns the warning findings formatted for BuildResult.Warnings.
func (r Report) Warnings() []string {
	return r.filter(SeverityWarning)
}

func (r Report) filter(sev Severity) []string {
	var out []string
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f.String())
		}
	}
	return out
}

// Check is a single template invariant.
type Check interface {
	Name() string
	Description() string
	Run(doc *Document) []Finding
}

// Options configures a check run.
type Options struct {
	// Disabled lists check names to skip
	Disabled []string
}

// All returns every check in run order.
func All() []Check {
	return []Check{
		References{},
		RoleTrust{},
		NoWildcardActions{},
		LogGroupScope{},
		SingleRole{},
		RuleTrigger{},
		HTTPRoutes{},
		UsagePlanStage{},
		ResourceSchemaCheck{},
	}
}

// Names returns the names of every check.
func Names() []string {
	var names []string
	for _, c := range All() {
		names = append(names, c.Name())
	}
	return names
}

// Run executes the enabled checks against a template.
func Run(stack, kind string, t *cdk.Template, opts Options) (Report, error) {
	doc, err := NewDocument(t, kind)
	if err != nil {
		return Report{}, fmt.Errorf("decoding template for %s: %w", stack, err)
	}

	disabled := make(map[string]bool)
	for _, name := range opts.Disabled {
		disabled[name] = true
	}

	report := Report{Stack: stack}
	for _, check := range All() {
		if disabled[check.Name()] {
			continue
		}
		report.Findings = append(report.Findings, check.Run(doc)...)
	}

	sort.SliceStable(report.Findings, func(i, j int) bool {
		a, b := report.Findings[i], report.Findings[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityError
		}
		return a.Resource < b.Resource
	})
	return report, nil
}

func errorf(check, resource, format string, args ...any) Finding {
	return Finding{Check: check, Resource: resource, Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

func warnf(check, resource, format string, args ...any) Finding {
	return Finding{Check: check, Resource: resource, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}
