package awsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// DriftFinding is one difference between a template and the deployed function.
type DriftFinding struct {
	Resource string `json:"resource"`
	Property string `json:"property"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

func (f DriftFinding) String() string {
	return fmt.Sprintf("%s.%s: expected %s, deployed %s", f.Resource, f.Property, f.Expected, f.Actual)
}

// DriftReport lists the findings for one stack. Skipped names functions
// whose properties could not be compared because their name is not literal.
type DriftReport struct {
	Stack    string         `json:"stack"`
	Findings []DriftFinding `json:"findings"`
	Skipped  []string       `json:"skipped,omitempty"`
}

// Drifted reports whether any finding was recorded.
func (r DriftReport) Drifted() bool {
	return len(r.Findings) > 0
}

// Drift compares every Lambda function of the template with its deployed
// configuration and the inline policies of its execution role. account
// fills ${AWS::AccountId} in substituted values.
func (c *Client) Drift(ctx context.Context, stack string, tmpl *cdk.Template, account string) (DriftReport, error) {
	report := DriftReport{Stack: stack, Findings: []DriftFinding{}}

	resources, err := genericResources(tmpl)
	if err != nil {
		return report, err
	}
	pseudo := map[string]string{
		"AWS::Region":    c.Region,
		"AWS::AccountId": account,
		"AWS::Partition": "aws",
		"AWS::URLSuffix": "amazonaws.com",
	}

	for _, name := range sortedNames(resources) {
		res := resources[name]
		if res.Type != "AWS::Lambda::Function" {
			continue
		}
		fnName, ok := res.Properties["FunctionName"].(string)
		if !ok {
			report.Skipped = append(report.Skipped, name)
			continue
		}

		out, err := c.Lambda.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
			FunctionName: aws.String(fnName),
		})
		if err != nil {
			var notFound *lambdatypes.ResourceNotFoundException
			if errors.As(err, &notFound) {
				report.Findings = append(report.Findings, DriftFinding{
					Resource: name, Property: "FunctionName", Expected: fnName, Actual: "(not deployed)",
				})
				continue
			}
			return report, fmt.Errorf("GetFunctionConfiguration %s: %w", fnName, err)
		}

		report.Findings = append(report.Findings, compareFunction(name, res.Properties, out, pseudo)...)

		roleFindings, err := c.compareRolePolicies(ctx, name, res.Properties, resources, aws.ToString(out.Role))
		if err != nil {
			return report, err
		}
		report.Findings = append(report.Findings, roleFindings...)
	}

	return report, nil
}

func compareFunction(name string, props map[string]any, out *lambda.GetFunctionConfigurationOutput, pseudo map[string]string) []DriftFinding {
	var findings []DriftFinding
	diff := func(property, expected, actual string) {
		if expected != actual {
			findings = append(findings, DriftFinding{Resource: name, Property: property, Expected: expected, Actual: actual})
		}
	}

	if v, ok := props["Runtime"].(string); ok {
		diff("Runtime", v, string(out.Runtime))
	}
	if v, ok := props["Handler"].(string); ok {
		diff("Handler", v, aws.ToString(out.Handler))
	}
	// CloudFormation defaults: 3 seconds, 128 MB.
	diff("Timeout", numberOr(props["Timeout"], 3), strconv.Itoa(int(aws.ToInt32(out.Timeout))))
	diff("MemorySize", numberOr(props["MemorySize"], 128), strconv.Itoa(int(aws.ToInt32(out.MemorySize))))

	if env, ok := props["Environment"].(map[string]any); ok {
		vars, _ := env["Variables"].(map[string]any)
		var deployed map[string]string
		if out.Environment != nil {
			deployed = out.Environment.Variables
		}
		for _, key := range sortedNames(vars) {
			want, ok := vars[key].(string)
			if !ok {
				continue
			}
			got, present := deployed[key]
			if !present {
				got = "(unset)"
			}
			diff("Environment."+key, want, got)
		}
	}

	if layers, ok := props["Layers"].([]any); ok {
		var want []string
		for _, l := range layers {
			if arn, ok := resolveString(l, pseudo); ok {
				want = append(want, arn)
			}
		}
		var got []string
		for _, l := range out.Layers {
			got = append(got, aws.ToString(l.Arn))
		}
		if len(want) == len(layers) {
			diff("Layers", strings.Join(want, ","), strings.Join(got, ","))
		}
	}

	return findings
}

// compareRolePolicies checks the deployed role carries the inline policies
// the template's role declares.
func (c *Client) compareRolePolicies(ctx context.Context, name string, props map[string]any, resources map[string]cdk.ResourceDef, roleArn string) ([]DriftFinding, error) {
	roleName := roleArn[strings.LastIndex(roleArn, "/")+1:]
	if roleName == "" {
		return nil, nil
	}
	role, ok := roleResource(props, resources)
	if !ok {
		return nil, nil
	}

	var want []string
	policies, _ := role.Properties["Policies"].([]any)
	for _, p := range policies {
		if m, ok := p.(map[string]any); ok {
			if n, ok := m["PolicyName"].(string); ok {
				want = append(want, n)
			}
		}
	}

	out, err := c.IAM.ListRolePolicies(ctx, &iam.ListRolePoliciesInput{RoleName: aws.String(roleName)})
	if err != nil {
		return nil, fmt.Errorf("ListRolePolicies %s: %w", roleName, err)
	}
	got := append([]string(nil), out.PolicyNames...)

	sort.Strings(want)
	sort.Strings(got)
	if strings.Join(want, ",") == strings.Join(got, ",") {
		return nil, nil
	}
	return []DriftFinding{{
		Resource: name,
		Property: "Role.Policies",
		Expected: "[" + strings.Join(want, ",") + "]",
		Actual:   "[" + strings.Join(got, ",") + "]",
	}}, nil
}

// roleResource follows Role: {"Fn::GetAtt": [role, "Arn"]}.
func roleResource(props map[string]any, resources map[string]cdk.ResourceDef) (cdk.ResourceDef, bool) {
	getAtt, ok := props["Role"].(map[string]any)
	if !ok {
		return cdk.ResourceDef{}, false
	}
	args, ok := getAtt["Fn::GetAtt"].([]any)
	if !ok || len(args) != 2 {
		return cdk.ResourceDef{}, false
	}
	name, _ := args[0].(string)
	role, ok := resources[name]
	return role, ok && role.Type == "AWS::IAM::Role"
}

// resolveString returns a literal string or an Fn::Sub string whose
// placeholders are all pseudo parameters.
func resolveString(v any, pseudo map[string]string) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case map[string]any:
		s, ok := val["Fn::Sub"].(string)
		if !ok {
			return "", false
		}
		for key, value := range pseudo {
			s = strings.ReplaceAll(s, "${"+key+"}", value)
		}
		return s, !strings.Contains(s, "${")
	}
	return "", false
}

func numberOr(v any, def int) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(f))
	}
	return strconv.Itoa(def)
}

// genericResources round-trips the resources through JSON so property
// values have the shapes the comparisons expect.
func genericResources(tmpl *cdk.Template) (map[string]cdk.ResourceDef, error) {
	data, err := json.Marshal(tmpl.Resources)
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	var out map[string]cdk.ResourceDef
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}
	return out, nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
