package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

var shippedStacks = []string{"ExampleHttpApiLambdaStack", "ExampleLambdaStack", "ExampleRestApiLambdaStack"}

func TestSynthCmd_WritesEveryStack(t *testing.T) {
	out, err := execute(testApp(t), "synth")
	require.NoError(t, err, out)

	for _, name := range shippedStacks {
		assert.FileExists(t, filepath.Join("cdk.out", name+".template.json"))
		assert.Contains(t, out, name)
	}
}

func TestSynthCmd_Stdout(t *testing.T) {
	out, err := execute(testApp(t), "synth", "ExampleLambdaStack", "--stdout", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "AWSTemplateFormatVersion")
	assert.Contains(t, out, "ExampleLambdaFunction:")
	assert.NoDirExists(t, "cdk.out")
}

func TestSynthCmd_StdoutNeedsOneStack(t *testing.T) {
	_, err := execute(testApp(t), "synth", "--stdout")
	assert.Error(t, err)
}

func TestSynthCmd_Errors(t *testing.T) {
	_, err := execute(testApp(t), "synth", "NoSuchStack")
	assert.Error(t, err)

	_, err = execute(testApp(t), "synth", "-f", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}

func TestListCmd_JSON(t *testing.T) {
	out, err := execute(testApp(t), "list", "--format", "json")
	require.NoError(t, err)

	var result cdk.ListResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Stacks, 3)
	for _, s := range result.Stacks {
		assert.NotEmpty(t, s.Resources, s.Name)
	}
}

func TestListCmd_Text(t *testing.T) {
	out, err := execute(testApp(t), "list", "ExampleLambdaStack")
	require.NoError(t, err)
	assert.Contains(t, out, "ExampleLambdaStack [event-rule]")
	assert.Contains(t, out, "ExampleLambdaFunction: AWS::Lambda::Function")
}

func TestListCmd_BadFormat(t *testing.T) {
	_, err := execute(testApp(t), "list", "--format", "xml")
	assert.Error(t, err)
}

func TestValidateCmd(t *testing.T) {
	out, err := execute(testApp(t), "validate")
	require.NoError(t, err, out)
	for _, name := range shippedStacks {
		assert.Contains(t, out, "Validation passed: "+name)
	}
	assert.NoDirExists(t, "cdk.out")
}

func TestValidateCmd_JSON(t *testing.T) {
	out, err := execute(testApp(t), "validate", "ExampleRestApiLambdaStack", "-f", "json")
	require.NoError(t, err)

	var results []cdk.ValidateResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, "ExampleRestApiLambdaStack", results[0].Stack)
}

func TestCheckCmd(t *testing.T) {
	out, err := execute(testApp(t), "check")
	require.NoError(t, err, out)
	assert.Contains(t, out, "ExampleLambdaStack: all checks passed")
}

func TestCheckCmd_List(t *testing.T) {
	a := testApp(t)
	require.NoError(t, os.WriteFile("stackctl.yaml", []byte("checks:\n  disabled: [usage-plan-stage]\n"), 0644))

	out, err := execute(a, "check", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "role-trust")
	assert.Contains(t, out, "(disabled)")
}

func TestLintCmd_ShippedStacks(t *testing.T) {
	out, err := execute(testApp(t), "lint")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No issues found.")
}

func TestLintCmd_Issues(t *testing.T) {
	a := testApp(t)
	require.NoError(t, os.MkdirAll("infra", 0755))
	src := `package infra

import "github.com/VPPATEL-SPS/aws-cdk-examples/resources/iam"

var Role = &iam.Role{}
`
	require.NoError(t, os.WriteFile(filepath.Join("infra", "security.go"), []byte(src), 0644))

	out, err := execute(a, "lint", "infra")
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, out, "[STK004]")

	out, err = execute(a, "lint", "infra", "--format", "json")
	assert.Equal(t, 2, exitCode(err))
	var result cdk.LintResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, "error", result.Issues[0].Severity)
}

func TestLintCmd_DisabledRule(t *testing.T) {
	a := testApp(t)
	require.NoError(t, os.MkdirAll("infra", 0755))
	src := `package infra

import "github.com/VPPATEL-SPS/aws-cdk-examples/resources/iam"

var Role = &iam.Role{}
`
	require.NoError(t, os.WriteFile(filepath.Join("infra", "security.go"), []byte(src), 0644))
	t.Setenv("STACKCTL_LINT_DISABLED_RULES", "STK004")

	out, err := execute(a, "lint", "infra")
	require.NoError(t, err, out)
}

func TestGraphCmd(t *testing.T) {
	out, err := execute(testApp(t), "graph", "ExampleRestApiLambdaStack")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "ExampleLambdaFunction")

	out, err = execute(testApp(t), "graph", "ExampleLambdaStack", "-f", "mermaid", "-p")
	require.NoError(t, err)
	assert.Contains(t, out, "ExampleLambdaFunction")
	assert.Contains(t, out, "LambdaCodeBucket")
}

func TestGraphCmd_Errors(t *testing.T) {
	_, err := execute(testApp(t), "graph", "NoSuchStack")
	assert.Error(t, err)

	_, err = execute(testApp(t), "graph", "ExampleLambdaStack", "-f", "png")
	assert.Error(t, err)

	_, err = execute(testApp(t), "graph")
	assert.Error(t, err)
}

func TestDiffCmd_SameStack(t *testing.T) {
	out, err := execute(testApp(t), "diff", "ExampleLambdaStack", "ExampleLambdaStack", "--exit-code")
	require.NoError(t, err)
	assert.Equal(t, "No differences\n", out)
}

func TestDiffCmd_FileAgainstStack(t *testing.T) {
	a := testApp(t)
	_, err := execute(a, "synth", "ExampleLambdaStack")
	require.NoError(t, err)
	written := filepath.Join("cdk.out", "ExampleLambdaStack.template.json")

	out, err := execute(a, "diff", written, "ExampleLambdaStack")
	require.NoError(t, err)
	assert.Equal(t, "No differences\n", out)

	out, err = execute(a, "diff", written, "ExampleHttpApiLambdaStack", "--exit-code", "-f", "json")
	assert.Equal(t, 1, exitCode(err))
	var diff cdk.TemplateDiff
	require.NoError(t, json.Unmarshal([]byte(out), &diff))
	assert.Positive(t, diff.Summary.Added)
	assert.Positive(t, diff.Summary.Removed)
}

func TestDiffCmd_Errors(t *testing.T) {
	_, err := execute(testApp(t), "diff", "nothing.json", "ExampleLambdaStack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither a template file nor a stack")

	_, err = execute(testApp(t), "diff", "ExampleLambdaStack")
	assert.Error(t, err)
}

func TestPackageCmd(t *testing.T) {
	a := testApp(t)
	require.NoError(t, os.MkdirAll("lambda", 0755))
	require.NoError(t, os.WriteFile(filepath.Join("lambda", "lambda_function.py"), []byte("def lambda_handler(e, c):\n    return {}\n"), 0644))

	out, err := execute(a, "package", "--format", "json")
	require.NoError(t, err)

	var res packageResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"lambda_function.py"}, res.Files)
	assert.Equal(t, "assets/"+res.SHA256+".zip", res.Key)
	assert.Equal(t, filepath.Join("cdk.out", "assets", res.SHA256+".zip"), res.Path)
	assert.FileExists(t, res.Path)
}

func TestPackageCmd_MissingSource(t *testing.T) {
	_, err := execute(testApp(t), "package")
	assert.Error(t, err)
}

func TestWatchCmd(t *testing.T) {
	cmd := newWatchCmd(newApp())
	assert.Equal(t, "watch [dirs...]", cmd.Use)
	require.NotNil(t, cmd.Flags().Lookup("debounce"))
	assert.Equal(t, "500ms", cmd.Flags().Lookup("debounce").DefValue)
}

func TestWatchDirs(t *testing.T) {
	a := testApp(t)
	a.cfg = loadConfig(t)

	require.NoError(t, os.MkdirAll(filepath.Join("stacks", "demo"), 0755))
	dirs, err := a.watchDirs([]string{"stacks/demo", "./stacks/demo/..."})
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	assert.True(t, filepath.IsAbs(dirs[0]))

	_, err = a.watchDirs([]string{"missing"})
	assert.Error(t, err)

	// Registered stack directories are relative to the module root.
	_, err = a.watchDirs(nil)
	assert.Error(t, err)
}

func TestRecheck(t *testing.T) {
	a := testApp(t)
	a.cfg = loadConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stack.go"), []byte("package demo\n\nvar Name = \"demo\"\n"), 0644))

	var out strings.Builder
	assert.True(t, a.recheck(&out, dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stack.go"), []byte("package demo\n\nimport \"github.com/VPPATEL-SPS/aws-cdk-examples/resources/iam\"\n\nvar Role = &iam.Role{}\n"), 0644))
	assert.False(t, a.recheck(&out, dir))
	assert.Contains(t, out.String(), "STK004")
}
