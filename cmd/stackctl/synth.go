package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/synth"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/template"
)

func newSynthCmd(a *app) *cobra.Command {
	var (
		toStdout   bool
		skipChecks bool
	)

	cmd := &cobra.Command{
		Use:   "synth [stacks...]",
		Short: "Generate CloudFormation templates",
		Long: `Synth discovers each stack's declarations, builds its template and runs the
template checks. Clean stacks are written to <output>/<Stack>.template.<format>.

Stacks are synthesized in parallel. A stack with errors is not written.

Examples:
    stackctl synth
    stackctl synth ExampleLambdaStack -f yaml
    stackctl synth ExampleHttpApiLambdaStack --stdout`,
		Annotations: map[string]string{bindConfigFlags: "output,format"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSynth(cmd.OutOrStdout(), args, toStdout, skipChecks)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output directory (default: output_dir from config, cdk.out)")
	cmd.Flags().StringP("format", "f", "", "Template format: json or yaml")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the template of a single stack instead of writing it")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Build without running the template checks")

	return cmd
}

func (a *app) runSynth(w io.Writer, names []string, toStdout, skipChecks bool) error {
	selected, err := a.selectStacks(names)
	if err != nil {
		return err
	}

	opts := a.synthOptions()
	opts.SkipChecks = skipChecks

	if toStdout {
		if len(selected) != 1 {
			return fmt.Errorf("--stdout needs exactly one stack, got %d", len(selected))
		}
		opts.OutputDir = ""
		res := synth.Synthesize(selected[0], opts)
		if !res.Success {
			a.printBuildResult(w, res)
			return &exitError{code: 1}
		}
		data, err := template.Encode(res.Template, opts.Format)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	a.log.Info("synthesizing", "stacks", len(selected), "output", opts.OutputDir)
	results := synth.SynthesizeAll(selected, opts)

	failed := 0
	for _, res := range results {
		a.printBuildResult(w, res)
		if !res.Success {
			failed++
		}
	}
	if failed > 0 {
		a.log.PrintRed(w, fmt.Sprintf("%d of %d stacks failed", failed, len(results)))
		return &exitError{code: 1}
	}
	return nil
}

func (a *app) printBuildResult(w io.Writer, res cdk.BuildResult) {
	if res.Success {
		msg := fmt.Sprintf("✓ %s (%d resources)", res.Stack, len(res.Resources))
		if res.Path != "" {
			msg += " -> " + res.Path
		}
		a.log.PrintGreen(w, msg)
	} else {
		a.log.PrintRed(w, "✗ "+res.Stack)
		for _, e := range res.Errors {
			a.log.PrintRed(w, "    error: "+e)
		}
	}
	for _, warning := range res.Warnings {
		a.log.PrintYellow(w, "    warning: "+warning)
	}
}
