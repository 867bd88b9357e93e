// Package apigatewayv2 provides typed declarations for AWS::ApiGatewayV2 resources.
package apigatewayv2

import (
	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// Api represents AWS::ApiGatewayV2::Api.
type Api struct {
	Name         any   `json:"Name,omitempty"`
	Description  any   `json:"Description,omitempty"`
	ProtocolType any   `json:"ProtocolType,omitempty"`
	DependsOn    []any `json:"DependsOn,omitempty"`

	// ApiEndpoint is the default endpoint URL.
	ApiEndpoint cdk.AttrRef `json:"-"`
	// ApiId is the API identifier.
	ApiId cdk.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r Api) ResourceType() string { return "AWS::ApiGatewayV2::Api" }

// Stage represents AWS::ApiGatewayV2::Stage.
type Stage struct {
	ApiId      any   `json:"ApiId,omitempty"`
	StageName  any   `json:"StageName,omitempty"`
	AutoDeploy bool  `json:"AutoDeploy,omitempty"`
	DependsOn  []any `json:"DependsOn,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Stage) ResourceType() string { return "AWS::ApiGatewayV2::Stage" }

// Integration represents AWS::ApiGatewayV2::Integration.
type Integration struct {
	ApiId                any   `json:"ApiId,omitempty"`
	IntegrationType      any   `json:"IntegrationType,omitempty"`
	IntegrationMethod    any   `json:"IntegrationMethod,omitempty"`
	IntegrationUri       any   `json:"IntegrationUri,omitempty"`
	PayloadFormatVersion any   `json:"PayloadFormatVersion,omitempty"`
	DependsOn            []any `json:"DependsOn,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Integration) ResourceType() string { return "AWS::ApiGatewayV2::Integration" }

// Route represents AWS::ApiGatewayV2::Route.
//
// RouteKey is "METHOD /path"; Target is "integrations/<integration id>".
type Route struct {
	ApiId             any   `json:"ApiId,omitempty"`
	RouteKey          any   `json:"RouteKey,omitempty"`
	Target            any   `json:"Target,omitempty"`
	AuthorizationType any   `json:"AuthorizationType,omitempty"`
	DependsOn         []any `json:"DependsOn,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Route) ResourceType() string { return "AWS::ApiGatewayV2::Route" }
