package checks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

const lambdaTemplate = `{
  "Parameters": {"CodeBucket": {"Type": "String"}},
  "Resources": {
    "Role": {
      "Type": "AWS::IAM::Role",
      "Properties": {
        "AssumeRolePolicyDocument": {
          "Version": "2012-10-17",
          "Statement": [{"Effect": "Allow", "Principal": {"Service": "lambda.amazonaws.com"}, "Action": ["sts:AssumeRole"]}]
        },
        "Policies": [{
          "PolicyName": "exec",
          "PolicyDocument": {
            "Statement": [
              {"Effect": "Allow", "Action": "logs:CreateLogGroup", "Resource": {"Fn::Sub": "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:*"}},
              {"Effect": "Allow", "Action": ["logs:CreateLogStream", "logs:PutLogEvents"],
               "Resource": [{"Fn::Sub": "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:log-group:/aws/lambda/demo:*"}]}
            ]
          }
        }]
      }
    },
    "Function": {
      "Type": "AWS::Lambda::Function",
      "Properties": {
        "FunctionName": "demo",
        "Role": {"Fn::GetAtt": ["Role", "Arn"]},
        "Code": {"S3Bucket": {"Ref": "CodeBucket"}, "S3Key": "demo.zip"}
      }
    }
  },
  "Outputs": {"Arn": {"Value": {"Fn::GetAtt": ["Function", "Arn"]}}}
}`

func parse(t *testing.T, src, kind string) *Document {
	t.Helper()
	var root map[string]any
	require.NoError(t, json.Unmarshal([]byte(src), &root))
	return newDocument(root, kind)
}

// withResources adds resources to the base lambda template.
func withResources(t *testing.T, extra string) string {
	t.Helper()
	var base, add map[string]any
	require.NoError(t, json.Unmarshal([]byte(lambdaTemplate), &base))
	require.NoError(t, json.Unmarshal([]byte(extra), &add))
	resources := base["Resources"].(map[string]any)
	for k, v := range add {
		resources[k] = v
	}
	data, err := json.Marshal(base)
	require.NoError(t, err)
	return string(data)
}

func findingsOf(c Check, doc *Document) []string {
	var out []string
	for _, f := range c.Run(doc) {
		out = append(out, f.String())
	}
	return out
}

func TestRun_CleanTemplate(t *testing.T) {
	tmpl := &cdk.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]cdk.ResourceDef{
			"Role": {Type: "AWS::IAM::Role", Properties: map[string]any{
				"AssumeRolePolicyDocument": map[string]any{
					"Statement": []any{map[string]any{
						"Effect":    "Allow",
						"Principal": map[string]any{"Service": "lambda.amazonaws.com"},
						"Action":    "sts:AssumeRole",
					}},
				},
			}},
		},
	}

	report, err := Run("Demo", "", tmpl, Options{Disabled: []string{"single-role"}})
	require.NoError(t, err)
	assert.Equal(t, "Demo", report.Stack)
	assert.False(t, report.HasErrors())
	assert.Empty(t, report.Findings)
}

func TestRun_Disabled(t *testing.T) {
	tmpl := &cdk.Template{Resources: map[string]cdk.ResourceDef{
		"Role": {Type: "AWS::IAM::Role"},
	}}

	report, err := Run("Demo", "", tmpl, Options{})
	require.NoError(t, err)
	assert.True(t, report.HasErrors())
	assert.NotEmpty(t, report.Errors())
	assert.NotEmpty(t, report.Warnings())

	report, err = Run("Demo", "", tmpl, Options{Disabled: []string{"role-trust", "single-role", "resource-schema"}})
	require.NoError(t, err)
	assert.Empty(t, report.Findings)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"references", "role-trust", "no-wildcard-actions", "log-group-scope",
		"single-role", "rule-trigger", "http-routes", "usage-plan-stage",
		"resource-schema",
	}, Names())
}

func TestReferences(t *testing.T) {
	doc := parse(t, lambdaTemplate, "")
	assert.Empty(t, findingsOf(References{}, doc))

	doc = parse(t, withResources(t, `{
		"Broken": {"Type": "AWS::Lambda::Permission", "Properties": {
			"FunctionName": {"Fn::GetAtt": ["Missing", "Arn"]},
			"SourceAccount": {"Ref": "Nowhere"},
			"SourceArn": {"Fn::Sub": "arn:aws:events:${AWS::Region}:${AWS::AccountId}:rule/${Ghost}"},
			"Action": {"Ref": ""}
		}}
	}`), "")
	findings := findingsOf(References{}, doc)
	assert.Contains(t, findings, `error: Broken: Fn::GetAtt on undeclared resource "Missing" [references]`)
	assert.Contains(t, findings, `error: Broken: Ref to undeclared "Nowhere" [references]`)
	assert.Contains(t, findings, `error: Broken: Fn::Sub references undeclared ${Ghost} [references]`)
	assert.Contains(t, findings, `error: Broken: unresolved Ref [references]`)
	assert.Len(t, findings, 4)
}

func TestReferences_SubVariablesAndEscapes(t *testing.T) {
	doc := parse(t, withResources(t, `{
		"Perm": {"Type": "AWS::Lambda::Permission", "Properties": {
			"SourceArn": {"Fn::Sub": ["${Prefix}/${!Literal}/${Function.Arn}", {"Prefix": "x"}]}
		}}
	}`), "")
	assert.Empty(t, findingsOf(References{}, doc))
}

func TestRoleTrust(t *testing.T) {
	doc := parse(t, lambdaTemplate, "")
	assert.Empty(t, findingsOf(RoleTrust{}, doc))

	doc = parse(t, withResources(t, `{
		"Wide": {"Type": "AWS::IAM::Role", "Properties": {
			"AssumeRolePolicyDocument": {"Statement": [
				{"Effect": "Allow", "Principal": {"AWS": "*"}, "Action": "sts:AssumeRole"}
			]}
		}},
		"Empty": {"Type": "AWS::IAM::Role", "Properties": {}}
	}`), "")
	findings := RoleTrust{}.Run(doc)
	require.Len(t, findings, 2)
	assert.Equal(t, "Empty", findings[0].Resource)
	assert.Equal(t, "role has no trust policy", findings[0].Message)
	assert.Equal(t, "Wide", findings[1].Resource)
	assert.Contains(t, findings[1].Message, "Principal must be lambda.amazonaws.com")
}

func TestNoWildcardActions(t *testing.T) {
	doc := parse(t, lambdaTemplate, "")
	assert.Empty(t, findingsOf(NoWildcardActions{}, doc))

	doc = parse(t, withResources(t, `{
		"Admin": {"Type": "AWS::IAM::Role", "Properties": {
			"Policies": [{"PolicyName": "all", "PolicyDocument": {"Statement": [
				{"Effect": "Allow", "Action": ["s3:GetObject", "logs:*"], "Resource": "*"},
				{"Effect": "Deny", "Action": "*", "Resource": "*"}
			]}}]
		}}
	}`), "")
	findings := NoWildcardActions{}.Run(doc)
	require.Len(t, findings, 1)
	assert.Equal(t, "Admin", findings[0].Resource)
	assert.Equal(t, `policy all allows wildcard action "logs:*"`, findings[0].Message)
}

func TestLogGroupScope(t *testing.T) {
	doc := parse(t, lambdaTemplate, "")
	assert.Empty(t, findingsOf(LogGroupScope{}, doc))

	var root map[string]any
	require.NoError(t, json.Unmarshal([]byte(lambdaTemplate), &root))
	fn := root["Resources"].(map[string]any)["Function"].(map[string]any)
	fn["Properties"].(map[string]any)["FunctionName"] = "renamed"

	findings := LogGroupScope{}.Run(newDocument(root, ""))
	require.Len(t, findings, 1)
	assert.Equal(t, "Role", findings[0].Resource)
	assert.Contains(t, findings[0].Message, "want log-group:/aws/lambda/renamed:*")
}

func TestLogGroupScope_MissingGrant(t *testing.T) {
	var root map[string]any
	require.NoError(t, json.Unmarshal([]byte(lambdaTemplate), &root))
	role := root["Resources"].(map[string]any)["Role"].(map[string]any)
	delete(role["Properties"].(map[string]any), "Policies")

	findings := findingsOf(LogGroupScope{}, newDocument(root, ""))
	assert.Equal(t, []string{
		"error: Role: role of Function does not grant logs:CreateLogGroup [log-group-scope]",
		"error: Role: role of Function does not grant logs:CreateLogStream [log-group-scope]",
		"error: Role: role of Function does not grant logs:PutLogEvents [log-group-scope]",
	}, findings)
}

// withLogStatements replaces the statements of the base role's policy.
func withLogStatements(t *testing.T, stmts string) *Document {
	t.Helper()
	var root map[string]any
	require.NoError(t, json.Unmarshal([]byte(lambdaTemplate), &root))
	var parsed []any
	require.NoError(t, json.Unmarshal([]byte(stmts), &parsed))
	role := root["Resources"].(map[string]any)["Role"].(map[string]any)
	policy := role["Properties"].(map[string]any)["Policies"].([]any)[0].(map[string]any)
	policy["PolicyDocument"] = map[string]any{"Statement": parsed}
	return newDocument(root, "")
}

const createLogGroupStatement = `{"Effect": "Allow", "Action": "logs:CreateLogGroup",
	"Resource": {"Fn::Sub": "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:*"}}`

func TestLogGroupScope_WriteResources(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		wantErr  bool
	}{
		{"own log group", "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:log-group:/aws/lambda/demo:*", false},
		{"partition placeholder", "arn:${AWS::Partition}:logs:${AWS::Region}:${AWS::AccountId}:log-group:/aws/lambda/demo:*", false},
		{"wildcard prefix", "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:log-group:*/aws/lambda/demo:*", true},
		{"nested path", "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:log-group:/other/aws/lambda/demo:*", true},
		{"other function", "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:log-group:/aws/lambda/demo-2:*", true},
		{"any account", "arn:aws:logs:${AWS::Region}:*:log-group:/aws/lambda/demo:*", true},
		{"literal account", "arn:aws:logs:${AWS::Region}:210987654321:log-group:/aws/lambda/demo:*", true},
		{"whole namespace", "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:*", true},
		{"wrong service", "arn:aws:s3:::demo-logs/*", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := withLogStatements(t, `[`+createLogGroupStatement+`,
				{"Effect": "Allow", "Action": ["logs:CreateLogStream", "logs:PutLogEvents"],
				 "Resource": [{"Fn::Sub": "`+tt.resource+`"}]}]`)
			findings := LogGroupScope{}.Run(doc)
			if !tt.wantErr {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, "Role", findings[0].Resource)
			assert.Equal(t, SeverityError, findings[0].Severity)
		})
	}
}

func TestLogGroupScope_CreateLogGroup(t *testing.T) {
	const writes = `{"Effect": "Allow", "Action": ["logs:CreateLogStream", "logs:PutLogEvents"],
		"Resource": {"Fn::Sub": "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:log-group:/aws/lambda/demo:*"}}`

	doc := withLogStatements(t, `[`+writes+`]`)
	assert.Equal(t, []string{
		"error: Role: role of Function does not grant logs:CreateLogGroup [log-group-scope]",
	}, findingsOf(LogGroupScope{}, doc))

	doc = withLogStatements(t, `[`+writes+`, {"Effect": "Allow", "Action": "logs:CreateLogGroup", "Resource": "arn:aws:s3:::*"}]`)
	assert.Equal(t, []string{
		`error: Role: logs:CreateLogGroup granted on "arn:aws:s3:::*", outside the logs namespace of ${AWS::AccountId} [log-group-scope]`,
	}, findingsOf(LogGroupScope{}, doc))

	doc = withLogStatements(t, `[`+writes+`, {"Effect": "Allow", "Action": "logs:CreateLogGroup", "Resource": "arn:aws:logs:*:*:*"}]`)
	assert.Equal(t, []string{
		`error: Role: logs:CreateLogGroup granted on "arn:aws:logs:*:*:*", outside the logs namespace of ${AWS::AccountId} [log-group-scope]`,
	}, findingsOf(LogGroupScope{}, doc))

	doc = withLogStatements(t, `[`+writes+`, {"Effect": "Allow", "Action": "logs:CreateLogGroup",
		"Resource": {"Fn::Sub": "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:log-group:/aws/*"}}]`)
	findings := findingsOf(LogGroupScope{}, doc)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "want the whole logs namespace or log-group:/aws/lambda/demo:*")

	// a denial never counts as a grant
	doc = withLogStatements(t, `[`+writes+`, {"Effect": "Deny", "Action": "logs:CreateLogGroup", "Resource": "*"}]`)
	assert.Len(t, findingsOf(LogGroupScope{}, doc), 1)

	doc = withLogStatements(t, `[`+writes+`, `+createLogGroupStatement+`]`)
	assert.Empty(t, findingsOf(LogGroupScope{}, doc))
}

func TestParseARN(t *testing.T) {
	arn, err := parseARN("arn:${AWS::Partition}:logs:${AWS::Region}:${AWS::AccountId}:log-group:/aws/lambda/demo:*")
	require.NoError(t, err)
	assert.Equal(t, arnParts{
		Service:  "logs",
		Region:   "${AWS::Region}",
		Account:  "${AWS::AccountId}",
		Resource: "log-group:/aws/lambda/demo:*",
	}, arn)

	arn, err = parseARN("arn:aws:s3:::bucket/*")
	require.NoError(t, err)
	assert.Equal(t, "s3", arn.Service)
	assert.Empty(t, arn.Account)
	assert.Equal(t, "bucket/*", arn.Resource)

	_, err = parseARN("${Bucket}/key")
	assert.Error(t, err)
	_, err = parseARN("arn:aws:logs")
	assert.Error(t, err)
}

func TestSingleRole(t *testing.T) {
	doc := parse(t, lambdaTemplate, "")
	assert.Empty(t, findingsOf(SingleRole{}, doc))

	doc = parse(t, withResources(t, `{
		"Second": {"Type": "AWS::Lambda::Function", "Properties": {"Role": {"Fn::GetAtt": ["Role", "Arn"]}}},
		"Literal": {"Type": "AWS::Lambda::Function", "Properties": {"Role": "arn:aws:iam::1:role/x"}},
		"Spare": {"Type": "AWS::IAM::Role", "Properties": {}}
	}`), "")
	findings := findingsOf(SingleRole{}, doc)
	assert.Contains(t, findings, "error: Literal: Role must be Fn::GetAtt of a role in this stack [single-role]")
	assert.Contains(t, findings, "error: Role: role is shared by functions Function, Second [single-role]")
	assert.Contains(t, findings, "warning: Spare: role is not used by any function [single-role]")
}
