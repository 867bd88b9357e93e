// Package lambda provides typed declarations for AWS::Lambda resources.
package lambda

import (
	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// Function represents AWS::Lambda::Function.
type Function struct {
	FunctionName  any   `json:"FunctionName,omitempty"`
	Description   any   `json:"Description,omitempty"`
	Runtime       any   `json:"Runtime,omitempty"`
	Handler       any   `json:"Handler,omitempty"`
	Code          any   `json:"Code,omitempty"`
	Layers        []any `json:"Layers,omitempty"`
	Environment   any   `json:"Environment,omitempty"`
	Timeout       int   `json:"Timeout,omitempty"`
	MemorySize    int   `json:"MemorySize,omitempty"`
	Architectures []any `json:"Architectures,omitempty"`
	Role          any   `json:"Role,omitempty"`
	DependsOn     []any `json:"DependsOn,omitempty"`

	// Arn is the function ARN.
	Arn cdk.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r Function) ResourceType() string { return "AWS::Lambda::Function" }

// Function_Code locates the deployment package.
type Function_Code struct {
	S3Bucket        any `json:"S3Bucket,omitempty"`
	S3Key           any `json:"S3Key,omitempty"`
	S3ObjectVersion any `json:"S3ObjectVersion,omitempty"`
	ZipFile         any `json:"ZipFile,omitempty"`
}

// Function_Environment holds the function's environment variables.
type Function_Environment struct {
	Variables map[string]any `json:"Variables,omitempty"`
}
