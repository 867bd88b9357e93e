package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/synth"
)

func newListCmd(a *app) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list [stacks...]",
		Short: "List stacks and their resources",
		Long: `List discovers and displays every resource of the selected stacks.

Examples:
    stackctl list
    stackctl list ExampleRestApiLambdaStack --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd.OutOrStdout(), args, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func (a *app) runList(w io.Writer, names []string, format string) error {
	if err := checkOutputFormat(format); err != nil {
		return err
	}
	selected, err := a.selectStacks(names)
	if err != nil {
		return err
	}

	result, err := synth.List(selected)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if format == "json" {
		return a.printJSON(w, result)
	}

	for i, s := range result.Stacks {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s [%s] (%d resources)\n", s.Name, s.Kind, len(s.Resources))
		if s.Description != "" {
			fmt.Fprintf(w, "  %s\n", s.Description)
		}
		for _, res := range s.Resources {
			fmt.Fprintf(w, "  %s: %s  %s:%d\n", res.Name, res.Type, res.File, res.Line)
		}
	}
	return nil
}
