// Package eventrule declares ExampleLambdaStack: a Lambda function invoked by
// an SSM maintenance-window event rule and by a one-minute schedule.
//
// This file contains the execution role.
package eventrule

import (
	. "github.com/VPPATEL-SPS/aws-cdk-examples/intrinsics"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/iam"
)

// ----------------------------------------------------------------------------
// Execution Role
// ----------------------------------------------------------------------------

// LambdaAssumeRoleStatement lets only the Lambda service assume the role.
var LambdaAssumeRoleStatement = PolicyStatement{
	Effect:    "Allow",
	Principal: ServicePrincipal{"lambda.amazonaws.com"},
	Action:    []any{"sts:AssumeRole"},
}

// LambdaTrustPolicy is the role's trust relationship.
var LambdaTrustPolicy = PolicyDocument{
	Version:   "2012-10-17",
	Statement: []any{LambdaAssumeRoleStatement},
}

// CreateLogGroupStatement allows creating log groups in the account's logs namespace.
var CreateLogGroupStatement = PolicyStatement{
	Effect:   "Allow",
	Action:   []any{"logs:CreateLogGroup"},
	Resource: []any{Sub{String: "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:*"}},
}

// WriteLogEventsStatement is scoped to the function's own log group.
var WriteLogEventsStatement = PolicyStatement{
	Effect: "Allow",
	Action: []any{"logs:CreateLogStream", "logs:PutLogEvents"},
	Resource: []any{
		Sub{String: "arn:aws:logs:${AWS::Region}:${AWS::AccountId}:log-group:/aws/lambda/" + functionName + ":*"},
	},
}

// LambdaExecutionPolicy is the role's only inline policy.
var LambdaExecutionPolicy = iam.Role_Policy{
	PolicyName: "LambdaExecutionPolicy",
	PolicyDocument: PolicyDocument{
		Version:   "2012-10-17",
		Statement: []any{CreateLogGroupStatement, WriteLogEventsStatement},
	},
}

// ExampleLambdaRole is the function's execution role.
var ExampleLambdaRole = iam.Role{
	AssumeRolePolicyDocument: LambdaTrustPolicy,
	Policies:                 []iam.Role_Policy{LambdaExecutionPolicy},
}
