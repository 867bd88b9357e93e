// Package intrinsics provides CloudFormation intrinsic functions.
//
// This package re-exports the core intrinsic types from cloudformation-schema-go
// and adds the parameter, output and IAM policy types used by stack declarations.
//
// Core intrinsic functions:
//
//	Ref{"ExampleHttpApi"} → {"Ref": "ExampleHttpApi"}
//	Sub{"arn:aws:logs:${AWS::Region}:${AWS::AccountId}:*"} → {"Fn::Sub": "..."}
//	Join{"/", []any{"integrations", ExampleHttpApiIntegration}} → {"Fn::Join": ["/", [...]]}
//
// Pseudo-parameters:
//
//	AWS_REGION, AWS_ACCOUNT_ID, AWS_STACK_NAME, etc.
package intrinsics

import (
	"encoding/json"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// SubWithMap is Fn::Sub with a variable map.
	SubWithMap = intrinsics.SubWithMap

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// Select represents a CloudFormation Fn::Select intrinsic function.
	Select = intrinsics.Select

	// Split represents a CloudFormation Fn::Split intrinsic function.
	Split = intrinsics.Split

	// ImportValue represents a CloudFormation Fn::ImportValue intrinsic function.
	ImportValue = intrinsics.ImportValue

	// Tag represents a CloudFormation resource tag.
	Tag = intrinsics.Tag
)

// Param creates a Ref for a CloudFormation parameter by name.
var Param = intrinsics.Param

// Parameter defines a CloudFormation template parameter.
// When used as a value in resource properties, it serializes to {"Ref": "ParameterName"}.
//
// Example:
//
//	var LambdaCodeBucket = Parameter{
//	    Type:        "String",
//	    Description: "S3 bucket holding the packaged function code",
//	}
//
//	var ExampleLambdaCode = lambda.Function_Code{
//	    S3Bucket: LambdaCodeBucket, // {"Ref": "LambdaCodeBucket"}
//	}
type Parameter struct {
	// Type is the CloudFormation parameter type (String, Number, ...)
	Type string
	// Description is optional documentation for the parameter
	Description string
	// Default is the default value if none is provided
	Default any
	// AllowedValues restricts the parameter to specific values
	AllowedValues []any
}

// MarshalJSON serializes a Ref placeholder. A parameter value does not know
// its own variable name; the template builder fills it in from the declaration.
func (p Parameter) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Ref": ""})
}

// ToDefinition returns the parameter as a map suitable for the Parameters section.
func (p Parameter) ToDefinition() map[string]any {
	def := map[string]any{
		"Type": p.Type,
	}
	if p.Description != "" {
		def["Description"] = p.Description
	}
	if p.Default != nil {
		def["Default"] = p.Default
	}
	if len(p.AllowedValues) > 0 {
		def["AllowedValues"] = p.AllowedValues
	}
	return def
}

// Output declares a template output.
//
//	var FunctionArnOutput = Output{
//	    Description: "ARN of the example function",
//	    Value:       ExampleLambdaFunction.Arn,
//	}
type Output struct {
	Description string `json:"Description,omitempty"`
	Value       any    `json:"Value"`
	// ExportName publishes the output for cross-stack imports when set
	ExportName any `json:"ExportName,omitempty"`
}
