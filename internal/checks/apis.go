package checks

import (
	"strings"
)

const (
	typeHTTPAPI      = "AWS::ApiGatewayV2::Api"
	typeHTTPStage    = "AWS::ApiGatewayV2::Stage"
	typeIntegration  = "AWS::ApiGatewayV2::Integration"
	typeRoute        = "AWS::ApiGatewayV2::Route"
	typeRestAPI      = "AWS::ApiGateway::RestApi"
	typeMethod       = "AWS::ApiGateway::Method"
	typeDeployment   = "AWS::ApiGateway::Deployment"
	typeRestStage    = "AWS::ApiGateway::Stage"
	typeAPIKey       = "AWS::ApiGateway::ApiKey"
	typeUsagePlan    = "AWS::ApiGateway::UsagePlan"
	typeUsagePlanKey = "AWS::ApiGateway::UsagePlanKey"

	apiGatewayService = "apigateway.amazonaws.com"
)

var routeMethods = map[string]bool{
	"ANY": true, "GET": true, "POST": true, "PUT": true,
	"PATCH": true, "DELETE": true, "HEAD": true, "OPTIONS": true,
}

// HTTPRoutes checks HTTP API routes and their Lambda integrations.
type HTTPRoutes struct{}

func (HTTPRoutes) Name() string { return "http-routes" }

func (HTTPRoutes) Description() string {
	return "HTTP API route keys are well formed, unique per API and target an integration of the same API"
}

func (c HTTPRoutes) Run(doc *Document) []Finding {
	var findings []Finding
	seen := make(map[string]string) // api + route key -> route

	routes := doc.ofType(typeRoute)
	for _, route := range routes {
		api, ok := refTarget(route.Props["ApiId"])
		if !ok || !doc.isType(api, typeHTTPAPI) {
			findings = append(findings, errorf(c.Name(), route.Name, "ApiId must Ref an HTTP API of this stack"))
			continue
		}

		key, _ := route.Props["RouteKey"].(string)
		if !ValidRouteKey(key) {
			findings = append(findings, errorf(c.Name(), route.Name, "invalid route key %q", key))
		} else if other, dup := seen[api+" "+key]; dup {
			findings = append(findings, errorf(c.Name(), route.Name, "route key %q already used by %s", key, other))
		} else {
			seen[api+" "+key] = route.Name
		}

		integration, ok := routeIntegration(route.Props["Target"])
		if !ok || !doc.isType(integration, typeIntegration) {
			findings = append(findings, errorf(c.Name(), route.Name, `Target must be Fn::Join ["/", ["integrations", Ref integration]]`))
			continue
		}
		if integAPI, _ := refTarget(doc.resources[integration].Props["ApiId"]); integAPI != api {
			findings = append(findings, errorf(c.Name(), route.Name, "integration %s belongs to %s, route to %s", integration, integAPI, api))
		}
	}

	for _, integ := range doc.ofType(typeIntegration) {
		api, _ := refTarget(integ.Props["ApiId"])
		fn, _, ok := getAttTarget(integ.Props["IntegrationUri"])
		if !ok || !doc.isType(fn, typeFunction) {
			continue
		}
		if !doc.permits(fn, apiGatewayService, api) {
			findings = append(findings, errorf(c.Name(), integ.Name, "no permission lets %s invoke %s", api, fn))
		}
	}

	if doc.Kind == "http-api" {
		if len(routes) == 0 {
			findings = append(findings, errorf(c.Name(), "", "http-api stacks need at least one route"))
		}
		for _, api := range doc.ofType(typeHTTPAPI) {
			if !doc.hasAutoDeployStage(api.Name) {
				findings = append(findings, warnf(c.Name(), api.Name, "API has no auto-deployed stage; routes will not be reachable"))
			}
		}
	}
	return findings
}

// ValidRouteKey reports whether key is "$default" or "METHOD /path".
func ValidRouteKey(key string) bool {
	if key == "$default" {
		return true
	}
	method, path, ok := strings.Cut(key, " ")
	if !ok || !routeMethods[method] || !strings.HasPrefix(path, "/") {
		return false
	}
	return !strings.ContainsAny(path, " \t") && !strings.Contains(path, "//")
}

// routeIntegration extracts the integration from
// {"Fn::Join": ["/", ["integrations", {"Ref": I}]]}.
func routeIntegration(target any) (string, bool) {
	m, ok := target.(map[string]any)
	if !ok {
		return "", false
	}
	args, ok := m["Fn::Join"].([]any)
	if !ok || len(args) != 2 || args[0] != "/" {
		return "", false
	}
	parts, ok := args[1].([]any)
	if !ok || len(parts) != 2 || parts[0] != "integrations" {
		return "", false
	}
	return refTarget(parts[1])
}

func (d *Document) hasAutoDeployStage(api string) bool {
	for _, stage := range d.ofType(typeHTTPStage) {
		if ref, _ := refTarget(stage.Props["ApiId"]); ref == api && stage.Props["AutoDeploy"] == true {
			return true
		}
	}
	return false
}

// UsagePlanStage checks that usage plans and API key stage bindings reference
// the stage that was deployed for their API and that every API key is
// attached to a plan.
type UsagePlanStage struct{}

func (UsagePlanStage) Name() string { return "usage-plan-stage" }

func (UsagePlanStage) Description() string {
	return "usage plan stages belong to a deployment of the same REST API; API keys are attached to plans"
}

func (c UsagePlanStage) Run(doc *Document) []Finding {
	var findings []Finding
	covered := make(map[string]bool) // REST APIs reachable through a usage plan

	for _, plan := range doc.ofType(typeUsagePlan) {
		stages, _ := plan.Props["ApiStages"].([]any)
		if len(stages) == 0 {
			findings = append(findings, errorf(c.Name(), plan.Name, "usage plan has no API stages"))
		}
		for _, raw := range stages {
			apiStage, _ := raw.(map[string]any)
			api, ok := refTarget(apiStage["ApiId"])
			if !ok || !doc.isType(api, typeRestAPI) {
				findings = append(findings, errorf(c.Name(), plan.Name, "ApiStages.ApiId must Ref a REST API of this stack"))
				continue
			}
			if msg := doc.checkPlanStage(api, apiStage["Stage"]); msg != "" {
				findings = append(findings, errorf(c.Name(), plan.Name, "%s", msg))
				continue
			}
			covered[api] = true
		}
	}

	for _, key := range doc.ofType(typeAPIKey) {
		if !doc.keyAttached(key.Name) {
			findings = append(findings, errorf(c.Name(), key.Name, "API key is not attached to any usage plan"))
		}
		for _, raw := range listOf(key.Props["StageKeys"]) {
			stageKey, _ := raw.(map[string]any)
			api, ok := refTarget(stageKey["RestApiId"])
			if !ok || !doc.isType(api, typeRestAPI) {
				findings = append(findings, errorf(c.Name(), key.Name, "StageKeys.RestApiId must Ref a REST API of this stack"))
				continue
			}
			if msg := doc.checkPlanStage(api, stageKey["StageName"]); msg != "" {
				findings = append(findings, errorf(c.Name(), key.Name, "StageKeys: %s", msg))
			}
		}
	}

	for _, method := range doc.ofType(typeMethod) {
		if method.Props["ApiKeyRequired"] != true {
			continue
		}
		api, _ := refTarget(method.Props["RestApiId"])
		if !covered[api] {
			findings = append(findings, errorf(c.Name(), method.Name, "method requires an API key but no usage plan covers %s", api))
		}
	}

	for _, method := range doc.ofType(typeMethod) {
		integration, _ := method.Props["Integration"].(map[string]any)
		fn, ok := joinedFunction(integration["Uri"])
		if !ok {
			continue
		}
		api, _ := refTarget(method.Props["RestApiId"])
		if !doc.permits(fn, apiGatewayService, api) {
			findings = append(findings, errorf(c.Name(), method.Name, "no permission lets %s invoke %s", api, fn))
		}
	}
	return findings
}

// checkPlanStage validates one ApiStages.Stage value against the API.
func (d *Document) checkPlanStage(api string, stage any) string {
	if name, ok := refTarget(stage); ok {
		res, exists := d.resources[name]
		if !exists || res.Type != typeRestStage {
			return "Stage must Ref a stage resource, got " + name
		}
		if owner, _ := refTarget(res.Props["RestApiId"]); owner != api {
			return "stage " + name + " belongs to " + owner + ", not " + api
		}
		deployment, ok := refTarget(res.Props["DeploymentId"])
		if !ok || !d.isType(deployment, typeDeployment) {
			return "stage " + name + " is not bound to a deployment"
		}
		if owner, _ := refTarget(d.resources[deployment].Props["RestApiId"]); owner != api {
			return "deployment " + deployment + " belongs to " + owner + ", not " + api
		}
		return ""
	}

	literal, ok := stage.(string)
	if !ok {
		return "Stage must be a stage name or Ref a stage resource"
	}
	for _, s := range d.ofType(typeRestStage) {
		owner, _ := refTarget(s.Props["RestApiId"])
		if owner == api && s.Props["StageName"] == literal {
			return ""
		}
	}
	return "stage " + literal + " is not deployed for " + api
}

func (d *Document) keyAttached(key string) bool {
	for _, link := range d.ofType(typeUsagePlanKey) {
		keyID, _ := refTarget(link.Props["KeyId"])
		plan, _ := refTarget(link.Props["UsagePlanId"])
		if keyID == key && d.isType(plan, typeUsagePlan) {
			return true
		}
	}
	return false
}

// joinedFunction finds the function whose ARN is embedded in an
// Fn::Join integration URI.
func joinedFunction(uri any) (string, bool) {
	m, ok := uri.(map[string]any)
	if !ok {
		return "", false
	}
	args, ok := m["Fn::Join"].([]any)
	if !ok || len(args) != 2 {
		return "", false
	}
	parts, _ := args[1].([]any)
	for _, part := range parts {
		if name, attr, ok := getAttTarget(part); ok && attr == "Arn" {
			return name, true
		}
	}
	return "", false
}
