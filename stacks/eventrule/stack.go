package eventrule

import (
	"embed"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/registry"
)

//go:embed *.go
var sources embed.FS

// Stack returns the ExampleLambdaStack registration.
func Stack() registry.Stack {
	return registry.Stack{
		Name:        "ExampleLambdaStack",
		Kind:        registry.KindEventRule,
		Description: "Lambda function triggered by an SSM event rule and a one-minute schedule",
		Dir:         "stacks/eventrule",
		Sources:     sources,
		// Resources, parameters and outputs; property blocks are reached
		// through the declarations that embed them.
		Values: map[string]any{
			"ExampleLambdaRole":              ExampleLambdaRole,
			"LambdaCodeBucket":               LambdaCodeBucket,
			"LambdaCodeKey":                  LambdaCodeKey,
			"ExampleLambdaFunction":          ExampleLambdaFunction,
			"ExampleEventRule":               ExampleEventRule,
			"ExampleEventRulePermission":     ExampleEventRulePermission,
			"ExampleSchedulerRule":           ExampleSchedulerRule,
			"ExampleSchedulerRulePermission": ExampleSchedulerRulePermission,
			"FunctionArnOutput":              FunctionArnOutput,
		},
	}
}
