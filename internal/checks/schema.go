package checks

import (
	"fmt"
	"sort"
	"strings"
)

// ResourceSchema is the offline subset of a CloudFormation resource schema.
type ResourceSchema struct {
	Required   []string
	Properties map[string]PropertySchema
}

// PropertySchema describes one property of a resource.
type PropertySchema struct {
	Type          string
	AllowedValues []string
}

var (
	propString = PropertySchema{Type: "String"}
	propInt    = PropertySchema{Type: "Integer"}
	propBool   = PropertySchema{Type: "Boolean"}
	propList   = PropertySchema{Type: "List"}
	propMap    = PropertySchema{Type: "Map"}
	propJSON   = PropertySchema{Type: "Json"}
)

func oneOf(values ...string) PropertySchema {
	return PropertySchema{Type: "String", AllowedValues: values}
}

// resourceSchemas covers the resource types the stacks declare.
var resourceSchemas = map[string]ResourceSchema{
	"AWS::IAM::Role": {
		Required: []string{"AssumeRolePolicyDocument"},
		Properties: map[string]PropertySchema{
			"AssumeRolePolicyDocument": propJSON,
			"Description":              propString,
			"ManagedPolicyArns":        propList,
			"MaxSessionDuration":       propInt,
			"Path":                     propString,
			"Policies":                 propList,
			"RoleName":                 propString,
			"Tags":                     propList,
		},
	},
	"AWS::Lambda::Function": {
		Required: []string{"Code", "Role"},
		Properties: map[string]PropertySchema{
			"Architectures": propList,
			"Code":          propMap,
			"Description":   propString,
			"Environment":   propMap,
			"FunctionName":  propString,
			"Handler":       propString,
			"Layers":        propList,
			"MemorySize":    propInt,
			"PackageType":   oneOf("Image", "Zip"),
			"Role":          propString,
			"Runtime": oneOf(
				"python3.9", "python3.10", "python3.11", "python3.12", "python3.13",
				"nodejs18.x", "nodejs20.x", "nodejs22.x",
				"java17", "java21", "dotnet8", "ruby3.3", "provided.al2", "provided.al2023",
			),
			"Tags":    propList,
			"Timeout": propInt,
		},
	},
	"AWS::Lambda::Permission": {
		Required: []string{"Action", "FunctionName", "Principal"},
		Properties: map[string]PropertySchema{
			"Action":        propString,
			"FunctionName":  propString,
			"Principal":     propString,
			"SourceAccount": propString,
			"SourceArn":     propString,
		},
	},
	"AWS::Events::Rule": {
		Properties: map[string]PropertySchema{
			"Description":        propString,
			"EventBusName":       propString,
			"EventPattern":       propJSON,
			"Name":               propString,
			"RoleArn":            propString,
			"ScheduleExpression": propString,
			"State":              oneOf("DISABLED", "ENABLED", "ENABLED_WITH_ALL_CLOUDTRAIL_MANAGEMENT_EVENTS"),
			"Targets":            propList,
		},
	},
	"AWS::ApiGatewayV2::Api": {
		Properties: map[string]PropertySchema{
			"Body":                      propJSON,
			"CorsConfiguration":         propMap,
			"Description":               propString,
			"DisableExecuteApiEndpoint": propBool,
			"Name":                      propString,
			"ProtocolType":              oneOf("HTTP", "WEBSOCKET"),
			"RouteSelectionExpression":  propString,
			"Tags":                      propMap,
			"Version":                   propString,
		},
	},
	"AWS::ApiGatewayV2::Stage": {
		Required: []string{"ApiId", "StageName"},
		Properties: map[string]PropertySchema{
			"ApiId":          propString,
			"AutoDeploy":     propBool,
			"DeploymentId":   propString,
			"Description":    propString,
			"StageName":      propString,
			"StageVariables": propJSON,
		},
	},
	"AWS::ApiGatewayV2::Integration": {
		Required: []string{"ApiId", "IntegrationType"},
		Properties: map[string]PropertySchema{
			"ApiId":                propString,
			"Description":          propString,
			"IntegrationMethod":    propString,
			"IntegrationType":      oneOf("AWS", "AWS_PROXY", "HTTP", "HTTP_PROXY", "MOCK"),
			"IntegrationUri":       propString,
			"PayloadFormatVersion": oneOf("1.0", "2.0"),
			"TimeoutInMillis":      propInt,
		},
	},
	"AWS::ApiGatewayV2::Route": {
		Required: []string{"ApiId", "RouteKey"},
		Properties: map[string]PropertySchema{
			"ApiId":             propString,
			"AuthorizationType": oneOf("NONE", "AWS_IAM", "CUSTOM", "JWT"),
			"AuthorizerId":      propString,
			"OperationName":     propString,
			"RouteKey":          propString,
			"Target":            propString,
		},
	},
	"AWS::ApiGateway::RestApi": {
		Properties: map[string]PropertySchema{
			"ApiKeySourceType":      oneOf("HEADER", "AUTHORIZER"),
			"Body":                  propJSON,
			"Description":           propString,
			"EndpointConfiguration": propMap,
			"Name":                  propString,
			"Policy":                propJSON,
			"Tags":                  propList,
		},
	},
	"AWS::ApiGateway::Resource": {
		Required: []string{"ParentId", "PathPart", "RestApiId"},
		Properties: map[string]PropertySchema{
			"ParentId":  propString,
			"PathPart":  propString,
			"RestApiId": propString,
		},
	},
	"AWS::ApiGateway::Method": {
		Required: []string{"HttpMethod", "ResourceId", "RestApiId"},
		Properties: map[string]PropertySchema{
			"ApiKeyRequired":    propBool,
			"AuthorizationType": oneOf("NONE", "AWS_IAM", "CUSTOM", "COGNITO_USER_POOLS"),
			"AuthorizerId":      propString,
			"HttpMethod":        oneOf("ANY", "DELETE", "GET", "HEAD", "OPTIONS", "PATCH", "POST", "PUT"),
			"Integration":       propMap,
			"MethodResponses":   propList,
			"OperationName":     propString,
			"ResourceId":        propString,
			"RestApiId":         propString,
		},
	},
	"AWS::ApiGateway::Deployment": {
		Required: []string{"RestApiId"},
		Properties: map[string]PropertySchema{
			"Description": propString,
			"RestApiId":   propString,
			"StageName":   propString,
		},
	},
	"AWS::ApiGateway::Stage": {
		Required: []string{"RestApiId"},
		Properties: map[string]PropertySchema{
			"DeploymentId":   propString,
			"Description":    propString,
			"MethodSettings": propList,
			"RestApiId":      propString,
			"StageName":      propString,
			"Variables":      propMap,
		},
	},
	"AWS::ApiGateway::ApiKey": {
		Properties: map[string]PropertySchema{
			"Description": propString,
			"Enabled":     propBool,
			"Name":        propString,
			"StageKeys":   propList,
			"Value":       propString,
		},
	},
	"AWS::ApiGateway::UsagePlan": {
		Properties: map[string]PropertySchema{
			"ApiStages":     propList,
			"Description":   propString,
			"Quota":         propMap,
			"Throttle":      propMap,
			"UsagePlanName": propString,
		},
	},
	"AWS::ApiGateway::UsagePlanKey": {
		Required: []string{"KeyId", "KeyType", "UsagePlanId"},
		Properties: map[string]PropertySchema{
			"KeyId":       propString,
			"KeyType":     oneOf("API_KEY"),
			"UsagePlanId": propString,
		},
	},
}

// ResourceSchemaCheck validates resources against the offline schemas:
// required properties are set, values have the right type and enumerated
// properties use an allowed value.
type ResourceSchemaCheck struct {
	// Strict also warns about properties missing from the schema.
	Strict bool
}

func (ResourceSchemaCheck) Name() string { return "resource-schema" }

func (ResourceSchemaCheck) Description() string {
	return "resources set their required properties with values of the right type"
}

func (c ResourceSchemaCheck) Run(doc *Document) []Finding {
	names := make([]string, 0, len(doc.resources))
	for name := range doc.resources {
		names = append(names, name)
	}
	sort.Strings(names)

	var findings []Finding
	for _, name := range names {
		findings = append(findings, c.validateResource(doc.resources[name])...)
	}
	return findings
}

func (c ResourceSchemaCheck) validateResource(res resource) []Finding {
	if !isValidResourceType(res.Type) {
		return []Finding{errorf(c.Name(), res.Name, "invalid resource type format: %q", res.Type)}
	}

	schema, ok := resourceSchemas[res.Type]
	if !ok {
		return []Finding{warnf(c.Name(), res.Name, "no schema for %s; properties not validated", res.Type)}
	}

	var findings []Finding
	for _, required := range schema.Required {
		if _, ok := res.Props[required]; !ok {
			findings = append(findings, errorf(c.Name(), res.Name, "missing required property %s", required))
		}
	}

	props := make([]string, 0, len(res.Props))
	for prop := range res.Props {
		props = append(props, prop)
	}
	sort.Strings(props)

	for _, prop := range props {
		propSchema, ok := schema.Properties[prop]
		if !ok {
			if c.Strict {
				findings = append(findings, warnf(c.Name(), res.Name, "unknown property %s for %s", prop, res.Type))
			}
			continue
		}
		if msg := validateProperty(res.Props[prop], propSchema); msg != "" {
			findings = append(findings, errorf(c.Name(), res.Name, "%s: %s", prop, msg))
		}
	}
	return findings
}

// isValidResourceType accepts AWS::Service::Resource, Alexa::* and Custom::*.
func isValidResourceType(typ string) bool {
	if strings.HasPrefix(typ, "Custom::") {
		return true
	}
	parts := strings.Split(typ, "::")
	if len(parts) != 3 {
		return false
	}
	return parts[0] == "AWS" || parts[0] == "Alexa"
}

func validateProperty(value any, schema PropertySchema) string {
	if !isValidType(value, schema.Type) {
		return fmt.Sprintf("expected type %s, got %s", schema.Type, describe(value))
	}
	if len(schema.AllowedValues) == 0 {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	for _, allowed := range schema.AllowedValues {
		if s == allowed {
			return ""
		}
	}
	return fmt.Sprintf("value %q not in allowed values %v", s, schema.AllowedValues)
}

// isValidType reports whether value matches the schema type. Intrinsic
// functions match every type.
func isValidType(value any, expected string) bool {
	if m, ok := value.(map[string]any); ok && len(m) == 1 {
		for key := range m {
			if strings.HasPrefix(key, "Fn::") || key == "Ref" {
				return true
			}
		}
	}

	switch expected {
	case "String":
		_, ok := value.(string)
		return ok
	case "Integer":
		switch value.(type) {
		case int, int32, int64, float64:
			return true
		}
		return false
	case "Boolean":
		_, ok := value.(bool)
		return ok
	case "List":
		_, ok := value.([]any)
		return ok
	case "Map":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}

func describe(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int32, int64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", value)
}
