// Package synth turns registered stacks into checked CloudFormation templates.
//
// For each stack: discover its declarations from the embedded sources, pair
// them with the registered values, build the template, then run the template
// checks. Discovery errors, build errors and error findings all mark the
// result unsuccessful; nothing is written for a failed stack.
package synth

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/iter"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/checks"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/discover"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/registry"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/template"
)

// Options configures synthesis.
type Options struct {
	// OutputDir receives <Stack>.template.<ext>; empty means do not write
	OutputDir string
	// Format is json or yaml
	Format string
	// Checks configures the template checks
	Checks checks.Options
	// SkipChecks builds without running template checks
	SkipChecks bool
}

// Discover runs discovery over a stack's embedded sources.
func Discover(s registry.Stack) (*discover.Result, error) {
	result, err := discover.DiscoverFS(s.Sources, s.Dir)
	if err != nil {
		return nil, fmt.Errorf("discovering %s: %w", s.Name, err)
	}
	return result, nil
}

// Build discovers and builds a stack's template without running checks.
func Build(s registry.Stack) (*cdk.Template, *discover.Result, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	result, err := Discover(s)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Errors) > 0 {
		return nil, result, discoveryError(result)
	}

	builder := template.NewBuilder(result)
	builder.SetDescription(s.Description)
	builder.SetValues(s.Values)

	tmpl, err := builder.Build()
	if err != nil {
		return nil, result, err
	}
	return tmpl, result, nil
}

// Synthesize builds and checks one stack, writing its template when
// opts.OutputDir is set and the stack is clean.
func Synthesize(s registry.Stack, opts Options) cdk.BuildResult {
	res := cdk.BuildResult{Stack: s.Name}

	tmpl, discovered, err := Build(s)
	if err != nil {
		res.Errors = errorLines(discovered, err)
		return res
	}
	res.Template = tmpl
	res.Resources = resourceNames(tmpl)

	if !opts.SkipChecks {
		report, err := checks.Run(s.Name, s.Kind, tmpl, opts.Checks)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			return res
		}
		res.Errors = append(res.Errors, report.Errors()...)
		res.Warnings = append(res.Warnings, report.Warnings()...)
		if report.HasErrors() {
			return res
		}
	}

	if opts.OutputDir != "" {
		path, err := Write(tmpl, s.Name, opts.OutputDir, opts.Format)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			return res
		}
		res.Path = path
	}

	res.Success = true
	return res
}

// SynthesizeAll synthesizes stacks in parallel. Results keep the input order.
func SynthesizeAll(stacks []registry.Stack, opts Options) []cdk.BuildResult {
	return iter.Map(stacks, func(s *registry.Stack) cdk.BuildResult {
		return Synthesize(*s, opts)
	})
}

// Write encodes a template to <dir>/<stack>.template.<format>.
func Write(tmpl *cdk.Template, stack, dir, format string) (string, error) {
	if format == "" {
		format = "json"
	}
	data, err := template.Encode(tmpl, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, TemplateFileName(stack, format))
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// TemplateFileName returns the file name a stack's template is written to.
func TemplateFileName(stack, format string) string {
	ext := "json"
	if format == "yaml" || format == "yml" {
		ext = "yaml"
	}
	return stack + ".template." + ext
}

// Validate synthesizes a stack and reports it in the validate command's shape.
func Validate(s registry.Stack, opts Options) cdk.ValidateResult {
	opts.OutputDir = ""
	res := Synthesize(s, opts)
	return cdk.ValidateResult{
		Success:   res.Success,
		Stack:     res.Stack,
		Resources: len(res.Resources),
		Errors:    res.Errors,
		Warnings:  res.Warnings,
	}
}

// List describes stacks from their discovered declarations.
func List(stacks []registry.Stack) (cdk.ListResult, error) {
	out := cdk.ListResult{Stacks: []cdk.ListStack{}}
	for _, s := range stacks {
		result, err := Discover(s)
		if err != nil {
			return out, err
		}
		ls := cdk.ListStack{Name: s.Name, Kind: s.Kind, Description: s.Description, Resources: []cdk.ListResource{}}
		for _, name := range sortedResourceNames(result) {
			res := result.Resources[name]
			ls.Resources = append(ls.Resources, cdk.ListResource{
				Name: name,
				Type: cfnType(res.Type),
				File: filepath.Base(res.File),
				Line: res.Line,
			})
		}
		out.Stacks = append(out.Stacks, ls)
	}
	return out, nil
}

// cfnType maps a discovered Go type such as lambda.Function to
// AWS::Lambda::Function.
func cfnType(goType string) string {
	pkg, name, ok := strings.Cut(goType, ".")
	if prefix := discover.ServicePrefix(pkg); ok && prefix != "" {
		return prefix + "::" + name
	}
	return goType
}

func discoveryError(result *discover.Result) error {
	return fmt.Errorf("%d discovery error(s), first: %w", len(result.Errors), result.Errors[0])
}

// errorLines expands discovery errors to one line each.
func errorLines(result *discover.Result, err error) []string {
	if result != nil && len(result.Errors) > 0 {
		lines := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			lines = append(lines, e.Error())
		}
		return lines
	}
	return []string{err.Error()}
}

func resourceNames(tmpl *cdk.Template) []string {
	names := make([]string, 0, len(tmpl.Resources))
	for name := range tmpl.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedResourceNames(result *discover.Result) []string {
	names := make([]string, 0, len(result.Resources))
	for name := range result.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
