package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/synth"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/validation"
)

// newValidateCmd creates the "validate" subcommand for checking stacks without writing them.
func newValidateCmd(a *app) *cobra.Command {
	var (
		outputFormat string
		cfnLint      bool
	)

	cmd := &cobra.Command{
		Use:   "validate [stacks...]",
		Short: "Validate stacks without writing templates",
		Long: `Validate discovers, builds and checks the selected stacks.

Checks performed:
  - Reference validity: every referenced declaration exists
  - Dependency graph: no cycles between resources
  - Template checks: see 'stackctl check --list'

With --cfn-lint the source linter runs first and the synthesized template is
also checked against the CloudFormation resource schemas.

Examples:
    stackctl validate
    stackctl validate ExampleLambdaStack --cfn-lint
    stackctl validate --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfnLint {
				return a.runFullValidate(cmd.OutOrStdout(), args, outputFormat)
			}
			return a.runValidate(cmd.OutOrStdout(), args, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&cfnLint, "cfn-lint", false, "Also lint sources and run cfn-lint on the templates")

	return cmd
}

func (a *app) runValidate(w io.Writer, names []string, format string) error {
	if err := checkOutputFormat(format); err != nil {
		return err
	}
	selected, err := a.selectStacks(names)
	if err != nil {
		return err
	}

	results := make([]cdk.ValidateResult, 0, len(selected))
	passed := true
	for _, s := range selected {
		res := synth.Validate(s, a.synthOptions())
		results = append(results, res)
		passed = passed && res.Success
	}

	if format == "json" {
		if err := a.printJSON(w, results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			a.printValidateResult(w, res)
		}
	}

	if !passed {
		return &exitError{code: 1}
	}
	return nil
}

func (a *app) printValidateResult(w io.Writer, res cdk.ValidateResult) {
	if res.Success {
		a.log.PrintGreen(w, fmt.Sprintf("Validation passed: %s (%d resources)", res.Stack, res.Resources))
	} else {
		a.log.PrintRed(w, fmt.Sprintf("Validation FAILED: %s", res.Stack))
		for _, msg := range res.Errors {
			a.log.PrintRed(w, "  ERROR: "+msg)
		}
	}
	for _, msg := range res.Warnings {
		a.log.PrintYellow(w, "  WARNING: "+msg)
	}
}

func (a *app) runFullValidate(w io.Writer, names []string, format string) error {
	if err := checkOutputFormat(format); err != nil {
		return err
	}
	selected, err := a.selectStacks(names)
	if err != nil {
		return err
	}

	opts := validation.Options{Lint: a.lintOptions(), Synth: a.synthOptions()}
	results := make([]*validation.ValidationResult, 0, len(selected))
	passed := true
	for _, s := range selected {
		a.log.Info("validating", "stack", s.Name)
		res, err := validation.ValidateStack(s, "", opts)
		if err != nil {
			return fmt.Errorf("validating %s: %w", s.Name, err)
		}
		results = append(results, res)
		passed = passed && res.Passed()
	}

	if format == "json" {
		if err := a.printJSON(w, results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			a.printValidationResult(w, res)
		}
	}

	if !passed {
		return &exitError{code: 1}
	}
	return nil
}

func (a *app) printValidationResult(w io.Writer, res *validation.ValidationResult) {
	fmt.Fprintf(w, "%s\n", res.Stack)

	stage := func(name string, ok bool, lines []string) {
		if ok {
			a.log.PrintGreen(w, "  ✓ "+name)
		} else {
			a.log.PrintRed(w, "  ✗ "+name)
		}
		for _, line := range lines {
			fmt.Fprintf(w, "      %s\n", line)
		}
	}

	stage("lint", res.LintResult.Passed, res.LintResult.Issues)
	build := append(append([]string{}, res.BuildResult.Errors...), res.BuildResult.Warnings...)
	stage("synth", res.BuildResult.Success, build)
	cfn := res.CfnLintResult
	stage(fmt.Sprintf("cfn-lint (%d issues)", cfn.TotalIssues()), cfn.Passed,
		append(append(append([]string{}, cfn.Errors...), cfn.Warnings...), cfn.Informational...))
}
