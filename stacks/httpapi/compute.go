package httpapi

import (
	. "github.com/VPPATEL-SPS/aws-cdk-examples/intrinsics"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/lambda"
)

const functionName = "example-lambda"

// ----------------------------------------------------------------------------
// Code location
// ----------------------------------------------------------------------------

// LambdaCodeBucket holds the packaged lambda/ directory.
var LambdaCodeBucket = Parameter{
	Type:        "String",
	Description: "S3 bucket holding the packaged function code",
}

// LambdaCodeKey is the object key of the packaged lambda/ directory.
var LambdaCodeKey = Parameter{
	Type:        "String",
	Description: "S3 key of the packaged function code",
}

var ExampleLambdaCode = lambda.Function_Code{
	S3Bucket: LambdaCodeBucket,
	S3Key:    LambdaCodeKey,
}

// ----------------------------------------------------------------------------
// Function
// ----------------------------------------------------------------------------

// PowertoolsLayerArn is the shared AWS Lambda Powertools layer. Referenced, never owned.
var PowertoolsLayerArn = Sub{String: "arn:aws:lambda:${AWS::Region}:017000801446:layer:AWSLambdaPowertoolsPythonV2:73"}

var ExampleLambdaEnvironment = lambda.Function_Environment{
	Variables: map[string]any{
		"EXAMPLE_ENV": "EXAMPLE_ENV_VALUE",
	},
}

// ExampleLambdaFunction is the function every trigger in this stack invokes.
var ExampleLambdaFunction = lambda.Function{
	FunctionName: functionName,
	Description:  "Example Lambda Description",
	Runtime:      "python3.12",
	Handler:      "lambda_function.lambda_handler",
	Code:         ExampleLambdaCode,
	Layers:       []any{PowertoolsLayerArn},
	Environment:  ExampleLambdaEnvironment,
	Timeout:      300,
	Role:         ExampleLambdaRole.Arn,
}
