package eventrule

import (
	. "github.com/VPPATEL-SPS/aws-cdk-examples/intrinsics"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/events"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/iam"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/lambda"
)

var ExampleLambdaRole = iam.Role{}

var ExampleLambdaFunction = lambda.Function{
	FunctionName: "example-lambda",
	Role:         ExampleLambdaRole.Arn,
}

var ExampleEventRule = events.Rule{
	Name: "Example-Event-Rule",
	EventPattern: Json{
		"source":      []any{"aws.ssm"},
		"detail_type": []any{"Maintenance Window Execution State-change Notification"},
	},
}

// Both permissions name a rule that is never declared.
var ExampleEventRulePermission = lambda.Permission{
	Action:       "lambda:InvokeFunction",
	FunctionName: ExampleLambdaFunction.Arn,
	Principal:    "events.amazonaws.com",
	SourceArn:    SsmMwRule.Arn,
}

var ExampleSchedulerRule = events.Rule{
	Name:               "Example-Scheduler-Rule",
	ScheduleExpression: Schedule.Rate,
}

var ExampleSchedulerRulePermission = lambda.Permission{
	Action:       "lambda:InvokeFunction",
	FunctionName: ExampleLambdaFunction.Arn,
	Principal:    "events.amazonaws.com",
	SourceArn:    SsmMwRule.Arn,
}
