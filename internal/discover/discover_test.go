package discover

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

const imports = `package demo

import (
	. "github.com/VPPATEL-SPS/aws-cdk-examples/intrinsics"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/events"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/iam"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/lambda"
)
`

func discoverSource(t *testing.T, files map[string]string) *Result {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(src)}
	}
	result, err := DiscoverFS(fsys, "demo")
	require.NoError(t, err)
	return result
}

func TestDiscover_SimpleResource(t *testing.T) {
	dir := t.TempDir()

	code := `package infra

import "github.com/VPPATEL-SPS/aws-cdk-examples/resources/iam"

var ExampleLambdaRole = iam.Role{
	RoleName: "example",
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "security.go"), []byte(code), 0644))

	result, err := Discover(Options{Packages: []string{dir}})
	require.NoError(t, err)

	assert.Len(t, result.Resources, 1)
	require.Contains(t, result.Resources, "ExampleLambdaRole")

	res := result.Resources["ExampleLambdaRole"]
	assert.Equal(t, "ExampleLambdaRole", res.Name)
	assert.Equal(t, "iam.Role", res.Type)
	assert.Equal(t, "infra", res.Package)
	assert.Equal(t, 5, res.Line)
	assert.Equal(t, filepath.Join(dir, "security.go"), res.File)
	assert.Empty(t, res.Dependencies)
	assert.Empty(t, result.Errors)
}

func TestDiscoverFS_WithDependencies(t *testing.T) {
	result := discoverSource(t, map[string]string{
		"compute.go": imports + `
var ExampleLambdaRole = iam.Role{}

var ExampleLambdaCode = lambda.Function_Code{S3Key: "code.zip"}

var ExampleLambdaFunction = lambda.Function{
	Role: ExampleLambdaRole.Arn,
	Code: ExampleLambdaCode,
}
`,
	})

	require.Empty(t, result.Errors)
	assert.Equal(t, []string{"demo/compute.go"}, result.Files)

	// Property types are not resources
	assert.NotContains(t, result.Resources, "ExampleLambdaCode")
	assert.Contains(t, result.AllVars, "ExampleLambdaCode")

	fn := result.Resources["ExampleLambdaFunction"]
	assert.Equal(t, "lambda.Function", fn.Type)
	assert.ElementsMatch(t, []string{"ExampleLambdaRole", "ExampleLambdaCode"}, fn.Dependencies)
	assert.Equal(t, []cdk.AttrRefUsage{
		{ResourceName: "ExampleLambdaRole", Attribute: "Arn", FieldPath: "Role"},
	}, fn.AttrRefUsages)
}

func TestDiscoverFS_UndefinedReference(t *testing.T) {
	result := discoverSource(t, map[string]string{
		"compute.go": imports + `
var ExampleLambdaFunction = lambda.Function{
	Role: UndefinedRole.Arn,
}
`,
	})

	require.Len(t, result.Errors, 1)
	assert.Equal(t,
		`demo/compute.go:10: ExampleLambdaFunction references undefined resource "UndefinedRole"`,
		result.Errors[0].Error())
}

func TestDiscoverFS_UndefinedReferenceInPropertyVar(t *testing.T) {
	result := discoverSource(t, map[string]string{
		"rules.go": imports + `
var ExampleRuleTarget = events.Rule_Target{
	Id:  "Target0",
	Arn: MissingFunction.Arn,
}

var ExampleRule = events.Rule{
	Targets: []any{ExampleRuleTarget},
}

var ArnOutput = Output{Value: MissingFunction.Arn}
`,
	})

	require.Len(t, result.Errors, 2)
	assert.Equal(t, `demo/rules.go:19: output ArnOutput references undefined resource "MissingFunction"`, result.Errors[0].Error())
	assert.Equal(t, `demo/rules.go:10: ExampleRuleTarget references undefined resource "MissingFunction"`, result.Errors[1].Error())
}

func TestDiscoverFS_MultipleFiles(t *testing.T) {
	result := discoverSource(t, map[string]string{
		"security.go": imports + `
var ExampleLambdaRole = iam.Role{}
`,
		"compute.go": imports + `
var ExampleLambdaFunction = lambda.Function{Role: ExampleLambdaRole.Arn}
`,
		"compute_test.go": `package demo

var Ignored = Missing
`,
	})

	assert.Empty(t, result.Errors)
	assert.Len(t, result.Resources, 2)
	assert.Equal(t, []string{"demo/compute.go", "demo/security.go"}, result.Files)
	assert.Equal(t, "demo/security.go", result.Resources["ExampleLambdaRole"].File)
}

func TestDiscoverFS_ParametersAndOutputs(t *testing.T) {
	result := discoverSource(t, map[string]string{
		"compute.go": imports + `
const functionName = "example-lambda"

var LambdaCodeBucket = Parameter{Type: "String"}

var ExampleLambdaFunction = lambda.Function{
	FunctionName: functionName,
	Code:         lambda.Function_Code{S3Bucket: LambdaCodeBucket},
}

var FunctionArnOutput = Output{Value: ExampleLambdaFunction.Arn}
`,
	})

	require.Empty(t, result.Errors)
	require.Contains(t, result.Parameters, "LambdaCodeBucket")
	assert.Equal(t, 12, result.Parameters["LambdaCodeBucket"].Line)
	assert.NotContains(t, result.Resources, "LambdaCodeBucket")
	assert.True(t, result.AllVars["functionName"])

	out := result.Outputs["FunctionArnOutput"]
	assert.Equal(t, []string{"ExampleLambdaFunction"}, out.Dependencies)
	assert.Equal(t, []cdk.AttrRefUsage{
		{ResourceName: "ExampleLambdaFunction", Attribute: "Arn", FieldPath: "Value"},
	}, out.AttrRefUsages)
}

func TestDiscoverFS_ParseError(t *testing.T) {
	_, err := DiscoverFS(fstest.MapFS{"bad.go": {Data: []byte("package demo\n\nvar X = {")}}, "demo")
	assert.Error(t, err)
}

func TestDiscover_NonExistentDir(t *testing.T) {
	result, err := Discover(Options{Packages: []string{"/nonexistent/path"}})
	require.NoError(t, err)
	assert.Empty(t, result.Resources)
}

func TestDiscover_RecursivePattern(t *testing.T) {
	result, err := Discover(Options{Packages: []string{"testdata/nested/..."}})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Contains(t, result.Resources, "OuterRole")
	assert.Contains(t, result.Resources, "InnerFunction")

	result, err = Discover(Options{Packages: []string{"testdata/nested"}})
	require.NoError(t, err)
	assert.Contains(t, result.Resources, "OuterRole")
	assert.NotContains(t, result.Resources, "InnerFunction")
}

func TestDiscover_RecursivePatternSkipsTestdata(t *testing.T) {
	result, err := Discover(Options{Packages: []string{"./..."}})
	require.NoError(t, err)
	assert.Empty(t, result.Resources)
	assert.Empty(t, result.Errors)
}

// The fixtures below hold names that resolve to nothing. They are kept in
// testdata so the compiler never sees them; discovery must.

func TestDiscover_DanglingRuleTarget(t *testing.T) {
	result, err := Discover(Options{Packages: []string{"testdata/eventrule_dangling"}})
	require.NoError(t, err)

	var messages []string
	for _, e := range result.Errors {
		messages = append(messages, e.Error())
	}
	require.Len(t, messages, 3)
	assert.Contains(t, messages[0], `ExampleEventRulePermission references undefined resource "SsmMwRule"`)
	assert.Contains(t, messages[1], `ExampleSchedulerRule references undefined resource "Schedule"`)
	assert.Contains(t, messages[2], `ExampleSchedulerRulePermission references undefined resource "SsmMwRule"`)
	assert.Contains(t, messages[0], "rules.go:26:")
}

func TestDiscover_MisnamedRestApi(t *testing.T) {
	result, err := Discover(Options{Packages: []string{"testdata/restapi_misnamed"}})
	require.NoError(t, err)

	require.Len(t, result.Errors, 3)
	for i, name := range []string{"ExampleRestApiDeployment", "ExampleRestApiMethod", "ExampleRestApiResource"} {
		assert.Contains(t, result.Errors[i].Error(), name+` references undefined resource "Api"`)
	}
}

func TestResolveDependencies(t *testing.T) {
	result := discoverSource(t, map[string]string{
		"rules.go": imports + `
var ExampleLambdaRole = iam.Role{}

var ExampleLambdaFunction = lambda.Function{Role: ExampleLambdaRole.Arn}

var ExampleRuleTarget = events.Rule_Target{Arn: ExampleLambdaFunction.Arn}

var ExampleRule = events.Rule{
	Targets:   []any{ExampleRuleTarget},
	DependsOn: []any{ExampleLambdaRole},
}
`,
	})

	assert.Equal(t, []string{"ExampleLambdaFunction", "ExampleLambdaRole"}, result.ResolveDependencies("ExampleRule"))
	assert.Equal(t, []string{"ExampleLambdaRole"}, result.ResolveDependencies("ExampleLambdaFunction"))
	assert.Empty(t, result.ResolveDependencies("ExampleLambdaRole"))
	assert.Empty(t, result.ResolveDependencies("Unknown"))
}

func TestResolveAttrRefs(t *testing.T) {
	result := discoverSource(t, map[string]string{
		"rules.go": imports + `
var ExampleLambdaFunction = lambda.Function{}

var ExampleRuleTarget = events.Rule_Target{Arn: ExampleLambdaFunction.Arn}

var ExampleRule = events.Rule{
	Targets: []any{ExampleRuleTarget},
}
`,
	})

	assert.Equal(t, []cdk.AttrRefUsage{
		{ResourceName: "ExampleLambdaFunction", Attribute: "Arn", FieldPath: "Targets.0.Arn"},
	}, result.ResolveAttrRefs("ExampleRule"))
	assert.Empty(t, result.ResolveAttrRefs("Unknown"))
}

func TestResolveAttrRefs_CircularReference(t *testing.T) {
	result := discoverSource(t, map[string]string{
		"loop.go": imports + `
var A = events.Rule_Target{Arn: B}

var B = events.Rule_Target{Arn: A}
`,
	})

	// Terminates without usages
	assert.Empty(t, result.ResolveAttrRefs("A"))
}

func TestDiscoverFS_IgnoresNonResourcePackages(t *testing.T) {
	result := discoverSource(t, map[string]string{
		"other.go": `package demo

import (
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/iam"
	lambda "example.com/not/a/resource/pkg"
)

var Local = lambda.Function{}

var Role = iam.Role{}

var Pointer = &iam.Role{}
`,
	})

	assert.NotContains(t, result.Resources, "Local")
	assert.NotContains(t, result.Resources, "Pointer")
	assert.Contains(t, result.Resources, "Role")
}

func TestServicePrefix(t *testing.T) {
	assert.Equal(t, "AWS::Lambda", ServicePrefix("lambda"))
	assert.Equal(t, "AWS::ApiGatewayV2", ServicePrefix("apigatewayv2"))
	assert.Equal(t, "", ServicePrefix("s3"))
}

func TestExtractTypeName(t *testing.T) {
	tests := []struct {
		code     string
		wantType string
		wantPkg  string
	}{
		{`lambda.Function{}`, "Function", "lambda"},
		{`Parameter{}`, "Parameter", ""},
		{`[]any{}`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			expr, err := parser.ParseExprFrom(token.NewFileSet(), "", tt.code, 0)
			require.NoError(t, err)
			typeName, pkgName := extractTypeName(expr.(*ast.CompositeLit).Type)
			assert.Equal(t, tt.wantType, typeName)
			assert.Equal(t, tt.wantPkg, pkgName)
		})
	}
}

func TestIsCommonIdent(t *testing.T) {
	for _, name := range []string{"true", "nil", "Sub", "Join", "Json", "AWS_REGION", "ServicePrincipal"} {
		assert.True(t, isCommonIdent(name), name)
	}
	for _, name := range []string{"ExampleLambdaRole", "Schedule", "SsmMwRule"} {
		assert.False(t, isCommonIdent(name), name)
	}
}

func TestIsIntrinsicPackage(t *testing.T) {
	dot := map[string]string{".": "github.com/VPPATEL-SPS/aws-cdk-examples/intrinsics"}
	assert.True(t, isIntrinsicPackage("", dot))
	assert.False(t, isIntrinsicPackage("", map[string]string{}))
	assert.True(t, isIntrinsicPackage("intrinsics", map[string]string{}))
	assert.False(t, isIntrinsicPackage("lambda", map[string]string{"lambda": "github.com/VPPATEL-SPS/aws-cdk-examples/resources/lambda"}))
}
