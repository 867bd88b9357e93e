package checks

import (
	"fmt"
	"strings"
)

const (
	typeRole       = "AWS::IAM::Role"
	typeFunction   = "AWS::Lambda::Function"
	typePermission = "AWS::Lambda::Permission"

	lambdaService = "lambda.amazonaws.com"
)

// RoleTrust requires every role to be assumable by the Lambda service only.
type RoleTrust struct{}

func (RoleTrust) Name() string { return "role-trust" }

func (RoleTrust) Description() string {
	return "IAM roles trust only lambda.amazonaws.com through sts:AssumeRole"
}

func (c RoleTrust) Run(doc *Document) []Finding {
	var findings []Finding
	for _, role := range doc.ofType(typeRole) {
		stmts := statements(role.Props["AssumeRolePolicyDocument"])
		if len(stmts) == 0 {
			findings = append(findings, errorf(c.Name(), role.Name, "role has no trust policy"))
			continue
		}
		for i, stmt := range stmts {
			if msg := checkTrustStatement(stmt); msg != "" {
				findings = append(findings, errorf(c.Name(), role.Name, "trust statement %d: %s", i, msg))
			}
		}
	}
	return findings
}

func checkTrustStatement(stmt map[string]any) string {
	if stmt["Effect"] != "Allow" {
		return "Effect must be Allow"
	}
	actions := stringsOf(stmt["Action"])
	if len(actions) != 1 || actions[0] != "sts:AssumeRole" {
		return fmt.Sprintf("Action must be sts:AssumeRole, got %v", stmt["Action"])
	}
	principal, ok := stmt["Principal"].(map[string]any)
	if !ok || len(principal) != 1 {
		return "Principal must be a single Service principal"
	}
	services := stringsOf(principal["Service"])
	if len(services) != 1 || services[0] != lambdaService {
		return fmt.Sprintf("Principal must be %s, got %v", lambdaService, principal)
	}
	return ""
}

// NoWildcardActions rejects "*" in allowed actions of inline role policies.
type NoWildcardActions struct{}

func (NoWildcardActions) Name() string { return "no-wildcard-actions" }

func (NoWildcardActions) Description() string {
	return `IAM Allow statements list explicit actions, never "*" patterns`
}

const wildcardActionQuery = `.Resources | to_entries[]
	| select(.value.Type == "AWS::IAM::Role") | .key as $role
	| (.value.Properties.Policies // [])[] | .PolicyName as $policy
	| .PolicyDocument.Statement | if type == "array" then .[] else . end
	| select(.Effect == "Allow")
	| .Action | if type == "array" then .[] else . end
	| select(type == "string" and contains("*"))
	| {role: $role, policy: $policy, action: .}`

func (c NoWildcardActions) Run(doc *Document) []Finding {
	results, err := doc.Query(wildcardActionQuery)
	if err != nil {
		return []Finding{errorf(c.Name(), "", "%v", err)}
	}
	var findings []Finding
	for _, raw := range results {
		m := raw.(map[string]any)
		role, _ := m["role"].(string)
		findings = append(findings, errorf(c.Name(), role, "policy %v allows wildcard action %q", m["policy"], m["action"]))
	}
	return findings
}

// LogGroupScope requires the execution role of each function to grant log
// writes to that function's own log group and nothing wider, and log group
// creation only within the stack account's logs namespace.
type LogGroupScope struct{}

func (LogGroupScope) Name() string { return "log-group-scope" }

func (LogGroupScope) Description() string {
	return "log stream permissions are scoped to /aws/lambda/<function-name> of the stack account"
}

const (
	createLogGroupAction = "logs:CreateLogGroup"
	accountPlaceholder   = "${AWS::AccountId}"
)

var (
	logWriteActions = []string{"logs:CreateLogStream", "logs:PutLogEvents"}
	logActions      = []string{createLogGroupAction, "logs:CreateLogStream", "logs:PutLogEvents"}
)

func (c LogGroupScope) Run(doc *Document) []Finding {
	var findings []Finding
	for _, fn := range doc.ofType(typeFunction) {
		roleName, _, ok := getAttTarget(fn.Props["Role"])
		if !ok || !doc.isType(roleName, typeRole) {
			// single-role reports this
			continue
		}
		fnName, ok := fn.Props["FunctionName"].(string)
		if !ok {
			findings = append(findings, warnf(c.Name(), fn.Name, "function has no literal FunctionName; log scope not verified"))
			continue
		}
		want := "log-group:/aws/lambda/" + fnName + ":*"

		role := doc.resources[roleName]
		granted := make(map[string]bool)
		for _, stmt := range rolePolicyStatements(role) {
			if stmt["Effect"] != "Allow" {
				continue
			}
			actions := stringsOf(stmt["Action"])
			writes := containsAny(actions, logWriteActions)
			creates := containsAny(actions, []string{createLogGroupAction})
			if !writes && !creates {
				continue
			}
			for _, a := range actions {
				granted[a] = true
			}
			for _, raw := range listOf(stmt["Resource"]) {
				text, ok := stringValue(raw)
				if !ok {
					findings = append(findings, errorf(c.Name(), roleName, "log resource %v is not a string or Fn::Sub", raw))
					continue
				}
				arn, err := parseARN(text)
				if err != nil {
					findings = append(findings, errorf(c.Name(), roleName, "log resource: %v", err))
					continue
				}
				switch {
				case arn.Service != "logs" || arn.Account != accountPlaceholder:
					findings = append(findings, errorf(c.Name(), roleName,
						"%s granted on %q, outside the logs namespace of %s", strings.Join(actions, ", "), text, accountPlaceholder))
				case writes && arn.Resource != want:
					findings = append(findings, errorf(c.Name(), roleName,
						"log writes granted on %q, want %s of function %s", text, want, fn.Name))
				case !writes && arn.Resource != "*" && arn.Resource != want:
					findings = append(findings, errorf(c.Name(), roleName,
						"%s granted on %q, want the whole logs namespace or %s", createLogGroupAction, text, want))
				}
			}
		}
		for _, action := range logActions {
			if !granted[action] {
				findings = append(findings, errorf(c.Name(), roleName, "role of %s does not grant %s", fn.Name, action))
			}
		}
	}
	return findings
}

func rolePolicyStatements(role resource) []map[string]any {
	var out []map[string]any
	policies, _ := role.Props["Policies"].([]any)
	for _, raw := range policies {
		policy, _ := raw.(map[string]any)
		out = append(out, statements(policy["PolicyDocument"])...)
	}
	return out
}

func containsAny(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// SingleRole requires each function to run under exactly one role declared
// in the same template, and that role to serve only that function.
type SingleRole struct{}

func (SingleRole) Name() string { return "single-role" }

func (SingleRole) Description() string {
	return "each function uses one role of its stack through Fn::GetAtt Role.Arn"
}

func (c SingleRole) Run(doc *Document) []Finding {
	var findings []Finding
	users := make(map[string][]string)

	for _, fn := range doc.ofType(typeFunction) {
		roleName, attr, ok := getAttTarget(fn.Props["Role"])
		switch {
		case !ok:
			findings = append(findings, errorf(c.Name(), fn.Name, "Role must be Fn::GetAtt of a role in this stack"))
			continue
		case !doc.isType(roleName, typeRole):
			findings = append(findings, errorf(c.Name(), fn.Name, "Role refers to %s, which is not an IAM role", roleName))
			continue
		case attr != "Arn":
			findings = append(findings, errorf(c.Name(), fn.Name, "Role must use %s.Arn, not %s", roleName, attr))
			continue
		}
		users[roleName] = append(users[roleName], fn.Name)
	}

	for _, role := range doc.ofType(typeRole) {
		switch fns := users[role.Name]; len(fns) {
		case 0:
			findings = append(findings, warnf(c.Name(), role.Name, "role is not used by any function"))
		case 1:
		default:
			findings = append(findings, errorf(c.Name(), role.Name, "role is shared by functions %s", strings.Join(fns, ", ")))
		}
	}
	return findings
}
