// Package apigateway provides typed declarations for AWS::ApiGateway resources.
package apigateway

import (
	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// RestApi represents AWS::ApiGateway::RestApi.
type RestApi struct {
	Name                      any   `json:"Name,omitempty"`
	Description               any   `json:"Description,omitempty"`
	EndpointConfiguration     any   `json:"EndpointConfiguration,omitempty"`
	DisableExecuteApiEndpoint bool  `json:"DisableExecuteApiEndpoint,omitempty"`
	DependsOn                 []any `json:"DependsOn,omitempty"`

	// RootResourceId is the id of the "/" resource.
	RootResourceId cdk.AttrRef `json:"-"`
	// RestApiId is the API identifier.
	RestApiId cdk.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r RestApi) ResourceType() string { return "AWS::ApiGateway::RestApi" }

// RestApi_EndpointConfiguration selects EDGE, REGIONAL or PRIVATE endpoints.
type RestApi_EndpointConfiguration struct {
	Types []any `json:"Types,omitempty"`
}

// Resource represents AWS::ApiGateway::Resource, one path segment.
type Resource struct {
	RestApiId any   `json:"RestApiId,omitempty"`
	ParentId  any   `json:"ParentId,omitempty"`
	PathPart  any   `json:"PathPart,omitempty"`
	DependsOn []any `json:"DependsOn,omitempty"`

	// ResourceId is the path resource identifier.
	ResourceId cdk.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r Resource) ResourceType() string { return "AWS::ApiGateway::Resource" }

// Method represents AWS::ApiGateway::Method.
type Method struct {
	RestApiId         any   `json:"RestApiId,omitempty"`
	ResourceId        any   `json:"ResourceId,omitempty"`
	HttpMethod        any   `json:"HttpMethod,omitempty"`
	AuthorizationType any   `json:"AuthorizationType,omitempty"`
	ApiKeyRequired    bool  `json:"ApiKeyRequired,omitempty"`
	Integration       any   `json:"Integration,omitempty"`
	DependsOn         []any `json:"DependsOn,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Method) ResourceType() string { return "AWS::ApiGateway::Method" }

// Method_Integration binds a method to its backend.
type Method_Integration struct {
	Type_                 any `json:"Type,omitempty"`
	IntegrationHttpMethod any `json:"IntegrationHttpMethod,omitempty"`
	Uri                   any `json:"Uri,omitempty"`
}
