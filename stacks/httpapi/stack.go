package httpapi

import (
	"embed"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/registry"
)

//go:embed *.go
var sources embed.FS

// Stack returns the ExampleHttpApiLambdaStack registration.
func Stack() registry.Stack {
	return registry.Stack{
		Name:        "ExampleHttpApiLambdaStack",
		Kind:        registry.KindHTTPAPI,
		Description: "Lambda function behind an HTTP API route",
		Dir:         "stacks/httpapi",
		Sources:     sources,
		Values: map[string]any{
			"ExampleLambdaRole":              ExampleLambdaRole,
			"LambdaCodeBucket":               LambdaCodeBucket,
			"LambdaCodeKey":                  LambdaCodeKey,
			"ExampleLambdaFunction":          ExampleLambdaFunction,
			"ExampleHttpApi":                 ExampleHttpApi,
			"ExampleHttpApiDefaultStage":     ExampleHttpApiDefaultStage,
			"ExampleLambdaIntegration":       ExampleLambdaIntegration,
			"ExampleEndpointRoute":           ExampleEndpointRoute,
			"ExampleEndpointRoutePermission": ExampleEndpointRoutePermission,
			"HttpApiEndpointOutput":          HttpApiEndpointOutput,
			"FunctionArnOutput":              FunctionArnOutput,
		},
	}
}
