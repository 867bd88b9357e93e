package inner

import "github.com/VPPATEL-SPS/aws-cdk-examples/resources/lambda"

var InnerFunction = lambda.Function{
	FunctionName: "inner",
	Role:         OuterRole.Arn,
}
