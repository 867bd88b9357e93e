package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/graph"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/synth"
)

func newGraphCmd(a *app) *cobra.Command {
	var gen graph.Generator
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "graph <stack>",
		Short: "Generate DOT graph of resource dependencies",
		Long: `Generate a DOT or Mermaid format graph showing a stack's resource dependencies.

The output can be rendered with Graphviz:
    stackctl graph ExampleLambdaStack | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    stackctl graph ExampleLambdaStack -f mermaid

Examples:
    stackctl graph ExampleRestApiLambdaStack
    stackctl graph ExampleRestApiLambdaStack -p     # include parameters
    stackctl graph ExampleRestApiLambdaStack -c     # cluster by service`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGraph(cmd.OutOrStdout(), args[0], outputFormat, gen)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&gen.IncludeParameters, "include-parameters", "p", false, "Include parameter nodes in the graph")
	cmd.Flags().BoolVar(&gen.IncludeOutputs, "include-outputs", false, "Include output nodes in the graph")
	cmd.Flags().BoolVarP(&gen.ClusterByType, "cluster", "c", false, "Cluster resources by AWS service")

	return cmd
}

func (a *app) runGraph(w io.Writer, name, format string, gen graph.Generator) error {
	f, err := graph.ParseFormat(format)
	if err != nil {
		return err
	}
	gen.Format = f

	s, err := a.lookupStack(name)
	if err != nil {
		return err
	}
	result, err := synth.Discover(s)
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			a.log.Error(e.Error())
		}
		return fmt.Errorf("%s has %d discovery errors", name, len(result.Errors))
	}
	if len(result.Resources) == 0 {
		return fmt.Errorf("no resources found")
	}

	return gen.Generate(result, w)
}
