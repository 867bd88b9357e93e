package restapi

import (
	"github.com/VPPATEL-SPS/aws-cdk-examples/resources/apigateway"
)

var ExampleRestApi = apigateway.RestApi{
	Name: "Example-Rest-Api",
}

// The API is declared as ExampleRestApi but wired below as Api.
var ExampleRestApiResource = apigateway.Resource{
	RestApiId: Api,
	ParentId:  Api.RootResourceId,
	PathPart:  "example-resource",
}

var ExampleRestApiMethod = apigateway.Method{
	RestApiId:  Api,
	ResourceId: ExampleRestApiResource,
	HttpMethod: "POST",
}

var ExampleRestApiDeployment = apigateway.Deployment{
	RestApiId: Api,
	DependsOn: []any{ExampleRestApiMethod},
}
