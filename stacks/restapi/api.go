package restapi

import (
	. "github.com/VPPATEL-SPS/aws-cdk-examples/intrinsics"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/apigateway"
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/lambda"
)

// ----------------------------------------------------------------------------
// REST API
// ----------------------------------------------------------------------------

var ExampleRestApi = apigateway.RestApi{
	Name:        "Example-Rest-Api",
	Description: "Description For Example Rest API",
	EndpointConfiguration: apigateway.RestApi_EndpointConfiguration{
		Types: []any{"REGIONAL"},
	},
}

// ExampleRestApiResource creates /example-resource on the API root.
var ExampleRestApiResource = apigateway.Resource{
	RestApiId: ExampleRestApi,
	ParentId:  ExampleRestApi.RootResourceId,
	PathPart:  "example-resource",
}

// ----------------------------------------------------------------------------
// Method and integration
// ----------------------------------------------------------------------------

var ExampleLambdaIntegration = apigateway.Method_Integration{
	Type_:                 "AWS_PROXY",
	IntegrationHttpMethod: "POST",
	Uri: Join{
		Delimiter: "",
		Values: []any{
			"arn:",
			AWS_PARTITION,
			":apigateway:",
			AWS_REGION,
			":lambda:path/2015-03-31/functions/",
			ExampleLambdaFunction.Arn,
			"/invocations",
		},
	},
}

var ExampleRestApiMethod = apigateway.Method{
	RestApiId:         ExampleRestApi,
	ResourceId:        ExampleRestApiResource,
	HttpMethod:        "POST",
	AuthorizationType: "NONE",
	ApiKeyRequired:    true,
	Integration:       ExampleLambdaIntegration,
}

// ExampleRestApiMethodPermission lets the deployed stage invoke the function.
// No test-invoke permission is granted.
var ExampleRestApiMethodPermission = lambda.Permission{
	Action:       "lambda:InvokeFunction",
	FunctionName: ExampleLambdaFunction.Arn,
	Principal:    "apigateway.amazonaws.com",
	SourceArn: Sub{
		String: "arn:${AWS::Partition}:execute-api:${AWS::Region}:${AWS::AccountId}:${ExampleRestApi}/${ExampleRestApiStage}/POST/example-resource",
	},
}

// ----------------------------------------------------------------------------
// Deployment
// ----------------------------------------------------------------------------

// ExampleRestApiDeployment must wait for the method, otherwise the
// deployment snapshot is empty.
var ExampleRestApiDeployment = apigateway.Deployment{
	RestApiId: ExampleRestApi,
	DependsOn: []any{ExampleRestApiMethod},
}

var ExampleRestApiStage = apigateway.Stage{
	RestApiId:    ExampleRestApi,
	DeploymentId: ExampleRestApiDeployment,
	StageName:    "prod",
}

// ----------------------------------------------------------------------------
// API key and usage plan
// ----------------------------------------------------------------------------

// ExampleRestApiKeyStage binds the key to the deployed stage.
var ExampleRestApiKeyStage = apigateway.ApiKey_StageKey{
	RestApiId: ExampleRestApi,
	StageName: ExampleRestApiStage,
}

var ExampleRestApiKey = apigateway.ApiKey{
	Name:        "example-rest-api-key",
	Description: "Description for Example Rest API",
	Enabled:     true,
	StageKeys:   []any{ExampleRestApiKeyStage},
}

// ExampleRestApiUsagePlanStage binds the plan to the stage that was deployed.
var ExampleRestApiUsagePlanStage = apigateway.UsagePlan_ApiStage{
	ApiId: ExampleRestApi,
	Stage: ExampleRestApiStage,
}

var ExampleRestApiUsagePlan = apigateway.UsagePlan{
	UsagePlanName: "example-rest-api-key-usage-plan",
	Description:   "Usage plan for Example Rest API Key",
	ApiStages:     []any{ExampleRestApiUsagePlanStage},
}

var ExampleRestApiUsagePlanKey = apigateway.UsagePlanKey{
	KeyId:       ExampleRestApiKey,
	KeyType:     "API_KEY",
	UsagePlanId: ExampleRestApiUsagePlan,
}

// ----------------------------------------------------------------------------
// Outputs
// ----------------------------------------------------------------------------

var RestApiEndpointOutput = Output{
	Description: "Invoke URL of the prod stage",
	Value:       Sub{String: "https://${ExampleRestApi}.execute-api.${AWS::Region}.${AWS::URLSuffix}/${ExampleRestApiStage}/"},
}

var FunctionArnOutput = Output{
	Description: "ARN of the example function",
	Value:       ExampleLambdaFunction.Arn,
}
