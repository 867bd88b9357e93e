package awsclient

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/synth"
	"github.com/VPPATEL-SPS/aws-cdk-examples/stacks"
)

const layerArn = "arn:aws:lambda:us-east-1:017000801446:layer:AWSLambdaPowertoolsPythonV2:73"

func eventRuleTemplate(t *testing.T) *cdk.Template {
	t.Helper()
	s, ok := stacks.Lookup("ExampleLambdaStack")
	require.True(t, ok)
	tmpl, _, err := synth.Build(s)
	require.NoError(t, err)
	return tmpl
}

func deployed() *lambda.GetFunctionConfigurationOutput {
	return &lambda.GetFunctionConfigurationOutput{
		FunctionName: aws.String("example-lambda"),
		Runtime:      lambdatypes.RuntimePython312,
		Handler:      aws.String("lambda_function.lambda_handler"),
		Timeout:      aws.Int32(300),
		MemorySize:   aws.Int32(128),
		Role:         aws.String("arn:aws:iam::123456789012:role/ExampleLambdaStack-ExampleLambdaRole-ABC"),
		Environment: &lambdatypes.EnvironmentResponse{
			Variables: map[string]string{"EXAMPLE_ENV": "EXAMPLE_ENV_VALUE"},
		},
		Layers: []lambdatypes.Layer{{Arn: aws.String(layerArn)}},
	}
}

func driftClient(fn *lambda.GetFunctionConfigurationOutput, fnErr error, policies []string) (*Client, *MockLambda, *MockIAM) {
	ctx := context.Background()
	l := new(MockLambda)
	l.On("GetFunctionConfiguration", ctx, mock.MatchedBy(func(in *lambda.GetFunctionConfigurationInput) bool {
		return aws.ToString(in.FunctionName) == "example-lambda"
	})).Return(fn, fnErr)

	i := new(MockIAM)
	i.On("ListRolePolicies", ctx, mock.MatchedBy(func(in *iam.ListRolePoliciesInput) bool {
		return aws.ToString(in.RoleName) == "ExampleLambdaStack-ExampleLambdaRole-ABC"
	})).Return(&iam.ListRolePoliciesOutput{PolicyNames: policies}, nil)

	return &Client{Region: "us-east-1", Lambda: l, IAM: i}, l, i
}

func TestDrift_InSync(t *testing.T) {
	c, l, i := driftClient(deployed(), nil, []string{"LambdaExecutionPolicy"})

	report, err := c.Drift(context.Background(), "ExampleLambdaStack", eventRuleTemplate(t), "123456789012")
	require.NoError(t, err)
	assert.False(t, report.Drifted(), "findings: %v", report.Findings)
	assert.Empty(t, report.Skipped)
	l.AssertExpectations(t)
	i.AssertExpectations(t)
}

func TestDrift_Changes(t *testing.T) {
	fn := deployed()
	fn.Runtime = lambdatypes.RuntimePython311
	fn.Timeout = aws.Int32(60)
	fn.Environment.Variables = map[string]string{}
	fn.Layers = nil
	c, _, _ := driftClient(fn, nil, []string{"LambdaExecutionPolicy", "Extra"})

	report, err := c.Drift(context.Background(), "ExampleLambdaStack", eventRuleTemplate(t), "123456789012")
	require.NoError(t, err)
	require.True(t, report.Drifted())

	byProperty := map[string]DriftFinding{}
	for _, f := range report.Findings {
		assert.Equal(t, "ExampleLambdaFunction", f.Resource)
		byProperty[f.Property] = f
	}
	assert.Equal(t, "python3.11", byProperty["Runtime"].Actual)
	assert.Equal(t, "300", byProperty["Timeout"].Expected)
	assert.Equal(t, "60", byProperty["Timeout"].Actual)
	assert.Equal(t, "(unset)", byProperty["Environment.EXAMPLE_ENV"].Actual)
	assert.Equal(t, layerArn, byProperty["Layers"].Expected)
	assert.Equal(t, "[LambdaExecutionPolicy]", byProperty["Role.Policies"].Expected)
	assert.Equal(t, "[Extra,LambdaExecutionPolicy]", byProperty["Role.Policies"].Actual)
	assert.NotContains(t, byProperty, "Handler")
	assert.NotContains(t, byProperty, "MemorySize")
}

func TestDrift_NotDeployed(t *testing.T) {
	c, _, i := driftClient(nil, &lambdatypes.ResourceNotFoundException{Message: aws.String("Function not found")}, nil)

	report, err := c.Drift(context.Background(), "ExampleLambdaStack", eventRuleTemplate(t), "123456789012")
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "FunctionName", report.Findings[0].Property)
	assert.Equal(t, "(not deployed)", report.Findings[0].Actual)
	i.AssertNotCalled(t, "ListRolePolicies", mock.Anything, mock.Anything)
}

func TestDrift_APIError(t *testing.T) {
	c, _, _ := driftClient(nil, errors.New("throttled"), nil)

	_, err := c.Drift(context.Background(), "ExampleLambdaStack", eventRuleTemplate(t), "123456789012")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestDrift_SkipsComputedNames(t *testing.T) {
	tmpl := &cdk.Template{Resources: map[string]cdk.ResourceDef{
		"Fn": {Type: "AWS::Lambda::Function", Properties: map[string]any{
			"FunctionName": map[string]any{"Fn::Sub": "${AWS::StackName}-fn"},
		}},
		"Bucket": {Type: "AWS::S3::Bucket"},
	}}
	c := &Client{Lambda: new(MockLambda), IAM: new(MockIAM)}

	report, err := c.Drift(context.Background(), "Demo", tmpl, "123456789012")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fn"}, report.Skipped)
	assert.False(t, report.Drifted())
}

func TestResolveString(t *testing.T) {
	pseudo := map[string]string{"AWS::Region": "eu-west-1", "AWS::AccountId": "1"}

	s, ok := resolveString(map[string]any{"Fn::Sub": "arn:${AWS::Region}:${AWS::AccountId}"}, pseudo)
	assert.True(t, ok)
	assert.Equal(t, "arn:eu-west-1:1", s)

	_, ok = resolveString(map[string]any{"Fn::Sub": "${Other}"}, pseudo)
	assert.False(t, ok)

	_, ok = resolveString(map[string]any{"Ref": "X"}, pseudo)
	assert.False(t, ok)

	s, ok = resolveString("literal", pseudo)
	assert.True(t, ok)
	assert.Equal(t, "literal", s)
}

func TestDriftFinding_String(t *testing.T) {
	f := DriftFinding{Resource: "Fn", Property: "Runtime", Expected: "python3.12", Actual: "python3.11"}
	assert.Equal(t, "Fn.Runtime: expected python3.12, deployed python3.11", f.String())
}
