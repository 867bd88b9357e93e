package main

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/checks"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/synth"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		outputFormat string
		list         bool
	)

	cmd := &cobra.Command{
		Use:   "check [stacks...]",
		Short: "Run the template checks",
		Long: `Check builds each stack's template and runs the template checks against it.

Checks disabled in the config (checks.disabled) are skipped.

Examples:
    stackctl check
    stackctl check ExampleRestApiLambdaStack
    stackctl check --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return a.runCheckList(cmd.OutOrStdout())
			}
			return a.runCheck(cmd.OutOrStdout(), args, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&list, "list", false, "List the available checks")

	return cmd
}

func (a *app) runCheckList(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range checks.All() {
		state := ""
		if slices.Contains(a.cfg.Checks.Disabled, c.Name()) {
			state = " (disabled)"
		}
		fmt.Fprintf(tw, "%s\t%s%s\n", c.Name(), c.Description(), state)
	}
	return tw.Flush()
}

func (a *app) runCheck(w io.Writer, names []string, format string) error {
	if err := checkOutputFormat(format); err != nil {
		return err
	}
	selected, err := a.selectStacks(names)
	if err != nil {
		return err
	}

	opts := checks.Options{Disabled: a.cfg.Checks.Disabled}
	reports := make([]checks.Report, 0, len(selected))
	failed := false
	for _, s := range selected {
		tmpl, _, err := synth.Build(s)
		if err != nil {
			a.log.PrintRed(w, fmt.Sprintf("✗ %s: %v", s.Name, err))
			failed = true
			continue
		}
		report, err := checks.Run(s.Name, s.Kind, tmpl, opts)
		if err != nil {
			return err
		}
		reports = append(reports, report)
		failed = failed || report.HasErrors()
	}

	if format == "json" {
		if err := a.printJSON(w, reports); err != nil {
			return err
		}
	} else {
		for _, report := range reports {
			if len(report.Findings) == 0 {
				a.log.PrintGreen(w, fmt.Sprintf("✓ %s: all checks passed", report.Stack))
				continue
			}
			fmt.Fprintf(w, "%s\n", report.Stack)
			for _, f := range report.Findings {
				if f.Severity == checks.SeverityError {
					a.log.PrintRed(w, "  "+f.String())
				} else {
					a.log.PrintYellow(w, "  "+f.String())
				}
			}
		}
	}

	if failed {
		return &exitError{code: 1}
	}
	return nil
}
