// Package validation runs the full validation pipeline for a stack:
//   - source lint rules over the stack's declarations
//   - synthesis with the template checks
//   - cfn-lint-go over the written template
package validation

import (
	"fmt"
	"os"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
	stacklint "github.com/VPPATEL-SPS/aws-cdk-examples/internal/lint"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/registry"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/synth"
)

// LintResult contains the source lint outcome.
type LintResult struct {
	Passed bool     `json:"passed"`
	Issues []string `json:"issues"`
}

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// ValidationResult contains all validation results for a stack.
type ValidationResult struct {
	Stack         string           `json:"stack"`
	LintResult    *LintResult      `json:"lint_result"`
	BuildResult   *cdk.BuildResult `json:"build_result"`
	CfnLintResult *CfnLintResult   `json:"cfn_lint_result"`
}

// Passed reports whether every stage passed.
func (r ValidationResult) Passed() bool {
	return r.LintResult != nil && r.LintResult.Passed &&
		r.BuildResult != nil && r.BuildResult.Success &&
		r.CfnLintResult != nil && r.CfnLintResult.Passed
}

// Options configures the pipeline.
type Options struct {
	Lint  stacklint.Options
	Synth synth.Options
}

// RunLint lints a stack's declaration sources.
func RunLint(s registry.Stack, opts stacklint.Options) (*LintResult, error) {
	res, err := stacklint.LintStack(s, opts)
	if err != nil {
		return nil, err
	}

	result := &LintResult{Passed: true, Issues: []string{}}
	for _, issue := range res.Issues {
		result.Issues = append(result.Issues, fmt.Sprintf("%s:%d:%d: %s: %s [%s]",
			issue.File, issue.Line, issue.Column, issue.Severity, issue.Message, issue.Rule))
		if issue.Severity == stacklint.SeverityError {
			result.Passed = false
		}
	}
	return result, nil
}

// RunCfnLint runs cfn-lint-go on the given template file.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Warnings are acceptable.
	result.Passed = len(result.Errors) == 0

	return result, nil
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}

// ValidateStack lints, synthesizes and cfn-lints a stack. The template is
// written to outputDir; an empty outputDir uses a temporary directory that
// is removed afterwards.
func ValidateStack(s registry.Stack, outputDir string, opts Options) (*ValidationResult, error) {
	result := &ValidationResult{Stack: s.Name}

	lintResult, err := RunLint(s, opts.Lint)
	if err != nil {
		return nil, fmt.Errorf("running lint: %w", err)
	}
	result.LintResult = lintResult

	if outputDir == "" {
		dir, err := os.MkdirTemp("", "stackctl-validate-")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dir)
		outputDir = dir
	}

	// Synthesize even when lint fails to report as much as possible.
	synthOpts := opts.Synth
	synthOpts.OutputDir = outputDir
	build := synth.Synthesize(s, synthOpts)
	result.BuildResult = &build

	if build.Success && build.Path != "" {
		cfnResult, err := RunCfnLint(build.Path)
		if err != nil {
			return nil, fmt.Errorf("running cfn-lint: %w", err)
		}
		result.CfnLintResult = cfnResult
	} else {
		result.CfnLintResult = &CfnLintResult{
			Passed: false,
			Errors: []string{"Build failed - no template to validate"},
		}
	}

	return result, nil
}
