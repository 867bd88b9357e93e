package apigateway

import (
	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// Deployment represents AWS::ApiGateway::Deployment.
type Deployment struct {
	RestApiId   any   `json:"RestApiId,omitempty"`
	Description any   `json:"Description,omitempty"`
	DependsOn   []any `json:"DependsOn,omitempty"`

	// DeploymentId is the deployment identifier.
	DeploymentId cdk.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r Deployment) ResourceType() string { return "AWS::ApiGateway::Deployment" }

// Stage represents AWS::ApiGateway::Stage.
type Stage struct {
	RestApiId    any   `json:"RestApiId,omitempty"`
	DeploymentId any   `json:"DeploymentId,omitempty"`
	StageName    any   `json:"StageName,omitempty"`
	Description  any   `json:"Description,omitempty"`
	DependsOn    []any `json:"DependsOn,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Stage) ResourceType() string { return "AWS::ApiGateway::Stage" }
