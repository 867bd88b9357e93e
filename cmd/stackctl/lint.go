package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
	stacklint "github.com/VPPATEL-SPS/aws-cdk-examples/internal/lint"
)

func newLintCmd(a *app) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "lint [dirs...]",
		Short: "Check stack declarations for issues",
		Long: `Lint checks the Go declarations of stacks for common issues.

Without arguments the sources of the selected stacks are linted. Directories
may end in /... to lint every package below them.

Rules:
    STK001: Use pseudo-parameter variables instead of hardcoded strings
    STK002: Use the declaration instead of Ref{}
    STK003: Use Resource.Attr instead of GetAtt{}
    STK004: Declare resources as values, not pointers
    STK005: No wildcard IAM actions
    STK006: Resource names are unique across the package
    STK007: Split files with too many resources
    STK008: Use intrinsic types instead of raw map[string]any

Examples:
    stackctl lint
    stackctl lint ./stacks/...
    stackctl lint stacks/httpapi --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLint(cmd.OutOrStdout(), args, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func (a *app) runLint(w io.Writer, dirs []string, format string) error {
	if err := checkOutputFormat(format); err != nil {
		return err
	}
	opts := a.lintOptions()

	var results []stacklint.Result
	if len(dirs) == 0 {
		selected, err := a.selectStacks(nil)
		if err != nil {
			return err
		}
		for _, s := range selected {
			res, err := stacklint.LintStack(s, opts)
			if err != nil {
				return fmt.Errorf("lint failed: %w", err)
			}
			results = append(results, res)
		}
	} else {
		for _, dir := range dirs {
			res, err := stacklint.LintPackage(dir, opts)
			if err != nil {
				return fmt.Errorf("lint failed: %w", err)
			}
			results = append(results, res)
		}
	}

	result := cdk.LintResult{Success: true}
	for _, res := range results {
		for _, issue := range res.Issues {
			result.Issues = append(result.Issues, cdk.LintIssue{
				File:     issue.File,
				Line:     issue.Line,
				Column:   issue.Column,
				Severity: issue.Severity.String(),
				Message:  issue.Message,
				Rule:     issue.Rule,
			})
		}
	}
	result.Success = len(result.Issues) == 0

	return a.outputLintResult(w, result, format)
}

func (a *app) outputLintResult(w io.Writer, result cdk.LintResult, format string) error {
	if format == "json" {
		if err := a.printJSON(w, result); err != nil {
			return err
		}
	} else {
		if result.Success {
			fmt.Fprintln(w, "No issues found.")
			return nil
		}
		for _, issue := range result.Issues {
			if issue.File != "" {
				fmt.Fprintf(w, "%s:%d:%d: %s: %s [%s]\n",
					issue.File, issue.Line, issue.Column,
					issue.Severity, issue.Message, issue.Rule)
			} else {
				fmt.Fprintf(w, "%s: %s [%s]\n", issue.Severity, issue.Message, issue.Rule)
			}
		}
	}

	if !result.Success {
		return &exitError{code: 2}
	}
	return nil
}
