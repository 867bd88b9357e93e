// Command stackctl synthesizes the shipped Lambda stacks into CloudFormation
// templates and checks them.
//
// Usage:
//
//	stackctl synth                      Write every stack's template to cdk.out
//	stackctl synth ExampleLambdaStack   Write one stack
//	stackctl check                      Run the template checks
//	stackctl lint                       Lint the stack declarations
//	stackctl version                    Show version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/awsclient"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/config"
	stacklint "github.com/VPPATEL-SPS/aws-cdk-examples/internal/lint"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/logging"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/registry"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/synth"
	"github.com/VPPATEL-SPS/aws-cdk-examples/stacks"
)

// bindConfigFlags is the command annotation listing the flags ("output",
// "format") that override output_dir and format from the config file.
const bindConfigFlags = "bind-config-flags"

// exitError ends the process with code after the command has already
// reported why.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app is the state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool
	debug      bool

	cfg      *config.Config
	log      logging.LogManager
	registry *registry.Registry

	newClient func(ctx context.Context, opts awsclient.Options) (*awsclient.Client, error)
}

func main() {
	err := newRootCmd(newApp()).Execute()

	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *app {
	return &app{
		log:       logging.GetLogManager(),
		registry:  stacks.Registry(),
		newClient: awsclient.New,
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stackctl",
		Short: "Synthesize and check the Lambda example stacks",
		Long: `stackctl turns the stacks declared under stacks/ into CloudFormation templates.

Each stack is a Go package of plain declarations:

    var ExampleLambdaFunction = lambda.Function{
        Runtime: "python3.12",
        Role:    ExampleLambdaRole.Arn,
    }

Synthesize every stack into cdk.out:

    stackctl synth

Settings come from stackctl.yaml, STACKCTL_* environment variables and flags.
stackctl never deploys; publish uploads the function package only.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./stackctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log progress")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Log everything")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newSynthCmd(a),
		newListCmd(a),
		newValidateCmd(a),
		newCheckCmd(a),
		newLintCmd(a),
		newGraphCmd(a),
		newDiffCmd(a),
		newWatchCmd(a),
		newPackageCmd(a),
		newPublishCmd(a),
		newDriftCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}

// setup loads and validates the configuration and sets the log level.
func (a *app) setup(cmd *cobra.Command) error {
	flags := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	names := []string{"log-level"}
	if bound := cmd.Annotations[bindConfigFlags]; bound != "" {
		names = append(names, strings.Split(bound, ",")...)
	}
	for _, name := range names {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags.AddFlag(f)
		}
	}

	cfg, err := config.Load(config.New(), a.configPath, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(a.registry.Names()); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	if err := a.log.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	if a.verbose {
		a.log.SetVerboseLevel()
	}
	if a.debug {
		a.log.SetDebugLevel()
	}
	a.log.Debug("config loaded", "output_dir", cfg.OutputDir, "format", cfg.Format, "stacks", cfg.Stacks)
	return nil
}

// selectStacks returns the named stacks, or the configured selection when
// names is empty.
func (a *app) selectStacks(names []string) ([]registry.Stack, error) {
	if len(names) == 0 {
		names = a.cfg.SelectedStacks(a.registry.Names())
	}
	return a.registry.Select(names)
}

func (a *app) lookupStack(name string) (registry.Stack, error) {
	s, ok := a.registry.Lookup(name)
	if !ok {
		return registry.Stack{}, fmt.Errorf("unknown stack %q (known: %v)", name, a.registry.Names())
	}
	return s, nil
}

func (a *app) synthOptions() synth.Options {
	opts := synth.Options{
		OutputDir: a.cfg.OutputDir,
		Format:    a.cfg.Format,
	}
	opts.Checks.Disabled = a.cfg.Checks.Disabled
	return opts
}

func (a *app) lintOptions() stacklint.Options {
	return stacklint.Options{
		DisabledRules: a.cfg.Lint.DisabledRules,
		MaxResources:  a.cfg.Lint.MaxResources,
	}
}

func (a *app) awsClient(ctx context.Context) (*awsclient.Client, error) {
	return a.newClient(ctx, awsclient.Options{
		Profile: a.cfg.AWS.Profile,
		Region:  a.cfg.AWS.Region,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stackctl %s\n", getVersion())
		},
	}
}
