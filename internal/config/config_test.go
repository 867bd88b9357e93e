package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var known = []string{"ExampleHttpApiLambdaStack", "ExampleLambdaStack", "ExampleRestApiLambdaStack"}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, "cdk.out", cfg.OutputDir)
	assert.Equal(t, "json", cfg.Format)
	assert.Empty(t, cfg.Stacks)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.Checks.Disabled)
	assert.Empty(t, cfg.Lint.DisabledRules)
	assert.Equal(t, 0, cfg.Lint.MaxResources)
	assert.Equal(t, "", cfg.AWS.Profile)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, "lambda", cfg.Assets.SourceDir)
	assert.Equal(t, "assets/", cfg.Assets.Prefix)
	assert.NoError(t, cfg.Validate(known))
	assert.Equal(t, known, cfg.SelectedStacks(known))
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
output_dir: out
format: yaml
stacks: [ExampleLambdaStack]
checks:
  disabled: [single-role]
lint:
  disabled_rules: [STK007]
  max_resources: 20
aws:
  profile: dev
  region: eu-west-1
assets:
  bucket: my-assets
`)

	cfg, err := Load(New(), path, nil)
	require.NoError(t, err)

	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, []string{"ExampleLambdaStack"}, cfg.Stacks)
	assert.Equal(t, []string{"single-role"}, cfg.Checks.Disabled)
	assert.Equal(t, []string{"STK007"}, cfg.Lint.DisabledRules)
	assert.Equal(t, 20, cfg.Lint.MaxResources)
	assert.Equal(t, "dev", cfg.AWS.Profile)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "my-assets", cfg.Assets.Bucket)
	assert.Equal(t, "lambda", cfg.Assets.SourceDir)
	assert.NoError(t, cfg.Validate(known))
	assert.Equal(t, []string{"ExampleLambdaStack"}, cfg.SelectedStacks(known))
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("output_dir: build\n"), 0644))
	t.Chdir(dir)

	cfg, err := Load(New(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.OutputDir)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "format: yaml\naws:\n  region: eu-west-1\n")
	t.Setenv("STACKCTL_FORMAT", "json")
	t.Setenv("STACKCTL_AWS_REGION", "ap-south-1")

	cfg, err := Load(New(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "ap-south-1", cfg.AWS.Region)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STACKCTL_OUTPUT_DIR", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "cdk.out", "")
	flags.String("format", "json", "")

	cfg, err := Load(New(), "", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OutputDir)

	require.NoError(t, flags.Parse([]string{"--output", "from-flag", "--format", "yaml"}))
	cfg, err = Load(New(), "", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.OutputDir)
	assert.Equal(t, "yaml", cfg.Format)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		OutputDir: "",
		Format:    "xml",
		LogLevel:  "loud",
		Stacks:    []string{"ExampleLambdaStack", "NoSuchStack"},
		Lint:      LintConfig{MaxResources: -1},
	}

	err := cfg.Validate(known)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `format must be json or yaml, got "xml"`)
	assert.Contains(t, err.Error(), "output_dir must not be empty")
	assert.Contains(t, err.Error(), `log_level must be one of debug, info, warn, error, got "loud"`)
	assert.Contains(t, err.Error(), "lint.max_resources must not be negative")
	assert.Contains(t, err.Error(), `unknown stack "NoSuchStack"`)
	assert.NotContains(t, err.Error(), `unknown stack "ExampleLambdaStack"`)
}
