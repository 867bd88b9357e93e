package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/differ"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/synth"
)

func newDiffCmd(a *app) *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
		exitCode     bool
	)

	cmd := &cobra.Command{
		Use:   "diff <template1> <template2>",
		Short: "Compare two templates semantically",
		Long: `Diff compares two CloudFormation templates resource by resource.

Each argument is a template file (JSON or YAML) or the name of a stack, which
is synthesized in memory. Comparing a written template with its stack shows
what a rebuild would change.

Examples:
    stackctl diff old.json new.json
    stackctl diff cdk.out/ExampleLambdaStack.template.json ExampleLambdaStack
    stackctl diff a.yaml b.yaml --ignore-order --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDiff(cmd.OutOrStdout(), args[0], args[1], outputFormat, ignoreOrder, exitCode)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Treat lists as unordered")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit with status 1 when the templates differ")

	return cmd
}

func (a *app) runDiff(w io.Writer, left, right, format string, ignoreOrder, exitCode bool) error {
	if err := checkOutputFormat(format); err != nil {
		return err
	}

	before, err := a.loadTemplate(left)
	if err != nil {
		return err
	}
	after, err := a.loadTemplate(right)
	if err != nil {
		return err
	}

	diff := differ.Compare(before, after, differ.Options{IgnoreOrder: ignoreOrder})

	if format == "json" {
		if err := a.printJSON(w, diff); err != nil {
			return err
		}
	} else {
		fmt.Fprint(w, differ.Format(diff))
	}

	if exitCode && diff.Summary.Total > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// loadTemplate reads a template file, or synthesizes the stack named arg when
// no such file exists.
func (a *app) loadTemplate(arg string) (*cdk.Template, error) {
	if _, err := os.Stat(arg); err == nil {
		return differ.LoadTemplate(arg)
	}

	s, ok := a.registry.Lookup(arg)
	if !ok {
		return nil, fmt.Errorf("%s is neither a template file nor a stack", arg)
	}
	a.log.Debug("synthesizing for diff", "stack", s.Name)
	tmpl, _, err := synth.Build(s)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", s.Name, err)
	}
	return tmpl, nil
}
