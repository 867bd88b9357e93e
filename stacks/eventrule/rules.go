package eventrule

import (
	. "github.com/VPPATEL-SPS/aws-cdk-examples/intrinsics"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/events"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/lambda"
)

// ----------------------------------------------------------------------------
// Pattern rule
// ----------------------------------------------------------------------------

// MaintenanceWindowEventPattern matches SSM maintenance window state changes.
var MaintenanceWindowEventPattern = Json{
	"source":      []any{"aws.ssm"},
	"detail-type": []any{"Maintenance Window Execution State-change Notification"},
}

var ExampleEventRuleTarget = events.Rule_Target{
	Id:  "Target0",
	Arn: ExampleLambdaFunction.Arn,
}

var ExampleEventRule = events.Rule{
	Name:         "Example-Event-Rule",
	Description:  "Description for the Event Rule",
	EventPattern: MaintenanceWindowEventPattern,
	Targets:      []any{ExampleEventRuleTarget},
}

// ExampleEventRulePermission lets the pattern rule invoke the function.
var ExampleEventRulePermission = lambda.Permission{
	Action:       "lambda:InvokeFunction",
	FunctionName: ExampleLambdaFunction.Arn,
	Principal:    "events.amazonaws.com",
	SourceArn:    ExampleEventRule.Arn,
}

// ----------------------------------------------------------------------------
// Schedule rule
// ----------------------------------------------------------------------------

var ExampleSchedulerRuleTarget = events.Rule_Target{
	Id:  "Target0",
	Arn: ExampleLambdaFunction.Arn,
}

var ExampleSchedulerRule = events.Rule{
	Name:               "Example-Scheduler-Rule",
	Description:        "Description for the Scheduler Event Rule",
	ScheduleExpression: "rate(1 minute)",
	Targets:            []any{ExampleSchedulerRuleTarget},
}

// ExampleSchedulerRulePermission lets the schedule rule invoke the function.
var ExampleSchedulerRulePermission = lambda.Permission{
	Action:       "lambda:InvokeFunction",
	FunctionName: ExampleLambdaFunction.Arn,
	Principal:    "events.amazonaws.com",
	SourceArn:    ExampleSchedulerRule.Arn,
}

// ----------------------------------------------------------------------------
// Outputs
// ----------------------------------------------------------------------------

var FunctionArnOutput = Output{
	Description: "ARN of the example function",
	Value:       ExampleLambdaFunction.Arn,
}
