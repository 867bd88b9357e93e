package httpapi

import (
	. "github.com/VPPATEL-SPS/aws-cdk-examples/intrinsics"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/apigatewayv2"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/lambda"
)

// ----------------------------------------------------------------------------
// HTTP API
// ----------------------------------------------------------------------------

var ExampleHttpApi = apigatewayv2.Api{
	Name:         "example-http-api",
	ProtocolType: "HTTP",
}

// ExampleHttpApiDefaultStage is the auto-deployed $default stage.
var ExampleHttpApiDefaultStage = apigatewayv2.Stage{
	ApiId:      ExampleHttpApi,
	StageName:  "$default",
	AutoDeploy: true,
}

// ----------------------------------------------------------------------------
// Lambda integration and route
// ----------------------------------------------------------------------------

// ExampleLambdaIntegration proxies requests to the function.
var ExampleLambdaIntegration = apigatewayv2.Integration{
	ApiId:                ExampleHttpApi,
	IntegrationType:      "AWS_PROXY",
	IntegrationUri:       ExampleLambdaFunction.Arn,
	PayloadFormatVersion: "2.0",
}

var ExampleEndpointRoute = apigatewayv2.Route{
	ApiId:             ExampleHttpApi,
	RouteKey:          "POST /example-endpoint",
	AuthorizationType: "NONE",
	Target: Join{
		Delimiter: "/",
		Values:    []any{"integrations", ExampleLambdaIntegration},
	},
}

// ExampleEndpointRoutePermission lets the route invoke the function.
var ExampleEndpointRoutePermission = lambda.Permission{
	Action:       "lambda:InvokeFunction",
	FunctionName: ExampleLambdaFunction.Arn,
	Principal:    "apigateway.amazonaws.com",
	SourceArn: Sub{
		String: "arn:${AWS::Partition}:execute-api:${AWS::Region}:${AWS::AccountId}:${ExampleHttpApi}/*/*/example-endpoint",
	},
}

// ----------------------------------------------------------------------------
// Outputs
// ----------------------------------------------------------------------------

var HttpApiEndpointOutput = Output{
	Description: "Default endpoint of the HTTP API",
	Value:       ExampleHttpApi.ApiEndpoint,
}

var FunctionArnOutput = Output{
	Description: "ARN of the example function",
	Value:       ExampleLambdaFunction.Arn,
}
