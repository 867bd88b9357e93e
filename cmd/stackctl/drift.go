package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/synth"
)

func newDriftCmd(a *app) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "drift <stack>",
		Short: "Compare a stack's functions with what is deployed",
		Long: `Drift synthesizes a stack and compares each Lambda function with its deployed
configuration: runtime, handler, timeout, memory, environment and layers, plus
the inline policies of its execution role.

Only read-only calls are made.

Examples:
    stackctl drift ExampleLambdaStack
    stackctl drift ExampleHttpApiLambdaStack --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDrift(cmd, args[0], outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func (a *app) runDrift(cmd *cobra.Command, name, format string) error {
	if err := checkOutputFormat(format); err != nil {
		return err
	}
	s, err := a.lookupStack(name)
	if err != nil {
		return err
	}
	tmpl, _, err := synth.Build(s)
	if err != nil {
		return fmt.Errorf("building %s: %w", name, err)
	}

	ctx := cmd.Context()
	client, err := a.awsClient(ctx)
	if err != nil {
		return err
	}
	id, err := client.CallerIdentity(ctx)
	if err != nil {
		return err
	}
	a.log.Info("checking drift", "stack", name, "account", id.Account, "region", client.Region)

	report, err := client.Drift(ctx, name, tmpl, id.Account)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if format == "json" {
		if err := a.printJSON(w, report); err != nil {
			return err
		}
	} else {
		for _, skipped := range report.Skipped {
			a.log.PrintYellow(w, fmt.Sprintf("- %s: function name is not a literal, skipped", skipped))
		}
		if !report.Drifted() {
			a.log.PrintGreen(w, fmt.Sprintf("✓ %s matches the deployed functions", name))
		}
		for _, f := range report.Findings {
			a.log.PrintRed(w, "~ "+f.String())
		}
	}

	if report.Drifted() {
		return &exitError{code: 1}
	}
	return nil
}
