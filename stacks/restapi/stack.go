package restapi

import (
	"embed"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/registry"
)

//go:embed *.go
var sources embed.FS

// Stack returns the ExampleRestApiLambdaStack registration.
func Stack() registry.Stack {
	return registry.Stack{
		Name:        "ExampleRestApiLambdaStack",
		Kind:        registry.KindRESTAPI,
		Description: "Lambda function behind a REST API method guarded by an API key and usage plan",
		Dir:         "stacks/restapi",
		Sources:     sources,
		Values: map[string]any{
			"ExampleLambdaRole":              ExampleLambdaRole,
			"LambdaCodeBucket":               LambdaCodeBucket,
			"LambdaCodeKey":                  LambdaCodeKey,
			"ExampleLambdaFunction":          ExampleLambdaFunction,
			"ExampleRestApi":                 ExampleRestApi,
			"ExampleRestApiResource":         ExampleRestApiResource,
			"ExampleRestApiMethod":           ExampleRestApiMethod,
			"ExampleRestApiMethodPermission": ExampleRestApiMethodPermission,
			"ExampleRestApiDeployment":       ExampleRestApiDeployment,
			"ExampleRestApiStage":            ExampleRestApiStage,
			"ExampleRestApiKey":              ExampleRestApiKey,
			"ExampleRestApiUsagePlan":        ExampleRestApiUsagePlan,
			"ExampleRestApiUsagePlanKey":     ExampleRestApiUsagePlanKey,
			"RestApiEndpointOutput":          RestApiEndpointOutput,
			"FunctionArnOutput":              FunctionArnOutput,
		},
	}
}
