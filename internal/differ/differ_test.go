package differ

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

func baseTemplate() *cdk.Template {
	return &cdk.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Parameters: map[string]cdk.Parameter{
			"LambdaCodeBucket": {Type: "String"},
		},
		Resources: map[string]cdk.ResourceDef{
			"Role": {Type: "AWS::IAM::Role"},
			"Function": {Type: "AWS::Lambda::Function", Properties: map[string]any{
				"FunctionName": "example-lambda",
				"Timeout":      300,
				"Role":         map[string]any{"Fn::GetAtt": []any{"Role", "Arn"}},
				"Code": map[string]any{
					"S3Bucket": map[string]any{"Ref": "LambdaCodeBucket"},
					"S3Key":    "lambda.zip",
				},
			}},
		},
		Outputs: map[string]cdk.Output{
			"Arn": {Value: map[string]any{"Fn::GetAtt": []any{"Function", "Arn"}}},
		},
	}
}

func TestCompare_Identical(t *testing.T) {
	diff := Compare(baseTemplate(), baseTemplate(), Options{})
	assert.Empty(t, diff.Entries)
	assert.Equal(t, cdk.DiffSummary{}, diff.Summary)
	assert.Equal(t, "No differences\n", Format(diff))
}

func TestCompare_Resources(t *testing.T) {
	after := baseTemplate()
	delete(after.Resources, "Role")
	after.Resources["Queue"] = cdk.ResourceDef{Type: "AWS::SQS::Queue"}
	fn := after.Resources["Function"]
	fn.Properties = map[string]any{
		"FunctionName": "example-lambda",
		"Timeout":      60,
		"Role":         map[string]any{"Fn::GetAtt": []any{"Other", "Arn"}},
		"Code":         map[string]any{"S3Bucket": map[string]any{"Ref": "LambdaCodeBucket"}},
		"Layers":       []any{"arn:layer"},
	}
	fn.DependsOn = []string{"Queue"}
	after.Resources["Function"] = fn

	diff := Compare(baseTemplate(), after, Options{})
	require.Len(t, diff.Entries, 3)

	assert.Equal(t, cdk.DiffEntry{
		Resource: "Function",
		Type:     "AWS::Lambda::Function",
		Action:   ActionModified,
		Changes: []string{
			"Code.S3Key removed",
			"DependsOn changed",
			"Layers added",
			"Role modified",
			"Timeout modified",
		},
	}, diff.Entries[0])
	assert.Equal(t, cdk.DiffEntry{Resource: "Queue", Type: "AWS::SQS::Queue", Action: ActionAdded}, diff.Entries[1])
	assert.Equal(t, cdk.DiffEntry{Resource: "Role", Type: "AWS::IAM::Role", Action: ActionRemoved}, diff.Entries[2])
	assert.Equal(t, cdk.DiffSummary{Added: 1, Removed: 1, Modified: 1, Total: 3}, diff.Summary)
}

func TestCompare_ParametersAndOutputs(t *testing.T) {
	after := baseTemplate()
	after.Parameters["LambdaCodeKey"] = cdk.Parameter{Type: "String"}
	after.Parameters["LambdaCodeBucket"] = cdk.Parameter{Type: "String", Description: "bucket"}
	delete(after.Outputs, "Arn")

	diff := Compare(baseTemplate(), after, Options{})
	assert.Equal(t, []cdk.DiffEntry{
		{Resource: "LambdaCodeBucket", Type: "Parameter", Action: ActionModified, Changes: []string{"Description added"}},
		{Resource: "LambdaCodeKey", Type: "Parameter", Action: ActionAdded},
		{Resource: "Arn", Type: "Output", Action: ActionRemoved},
	}, diff.Entries)
}

func TestCompare_IgnoreOrder(t *testing.T) {
	before := &cdk.Template{Resources: map[string]cdk.ResourceDef{
		"Rule": {Type: "AWS::Events::Rule", Properties: map[string]any{"Sources": []any{"a", "b"}}},
	}}
	after := &cdk.Template{Resources: map[string]cdk.ResourceDef{
		"Rule": {Type: "AWS::Events::Rule", Properties: map[string]any{"Sources": []any{"b", "a"}}},
	}}

	assert.Len(t, Compare(before, after, Options{}).Entries, 1)
	assert.Empty(t, Compare(before, after, Options{IgnoreOrder: true}).Entries)
}

func TestCompareFiles_JSONAgainstYAML(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "a.template.json")
	yamlPath := filepath.Join(dir, "a.template.yaml")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  "Resources": {"Function": {"Type": "AWS::Lambda::Function", "Properties": {"Timeout": 300, "Handler": "h"}}}
}`), 0644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(`Resources:
  Function:
    Type: AWS::Lambda::Function
    Properties:
      Timeout: 300
      Handler: other
`), 0644))

	diff, err := CompareFiles(jsonPath, yamlPath, Options{})
	require.NoError(t, err)
	require.Len(t, diff.Entries, 1)
	assert.Equal(t, []string{"Handler modified"}, diff.Entries[0].Changes)

	out := Format(diff)
	assert.Contains(t, out, "~ Function (AWS::Lambda::Function)")
	assert.Contains(t, out, "    Handler modified")
	assert.Contains(t, out, "0 added, 0 removed, 1 modified")
}

func TestCompareFiles_Missing(t *testing.T) {
	_, err := CompareFiles("missing.json", "other.json", Options{})
	assert.Error(t, err)
}

func TestParseTemplate_Invalid(t *testing.T) {
	_, err := ParseTemplate([]byte("{not: [valid"))
	assert.Error(t, err)
}
