package apigateway

import (
	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// ApiKey represents AWS::ApiGateway::ApiKey.
type ApiKey struct {
	Name        any   `json:"Name,omitempty"`
	Description any   `json:"Description,omitempty"`
	Enabled     bool  `json:"Enabled,omitempty"`
	StageKeys   []any `json:"StageKeys,omitempty"`
	DependsOn   []any `json:"DependsOn,omitempty"`

	// APIKeyId is the key identifier.
	APIKeyId cdk.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r ApiKey) ResourceType() string { return "AWS::ApiGateway::ApiKey" }

// ApiKey_StageKey binds an API key to a deployed stage.
type ApiKey_StageKey struct {
	RestApiId any `json:"RestApiId,omitempty"`
	StageName any `json:"StageName,omitempty"`
}

// UsagePlan represents AWS::ApiGateway::UsagePlan.
type UsagePlan struct {
	UsagePlanName any   `json:"UsagePlanName,omitempty"`
	Description   any   `json:"Description,omitempty"`
	ApiStages     []any `json:"ApiStages,omitempty"`
	DependsOn     []any `json:"DependsOn,omitempty"`

	// Id is the usage plan identifier.
	Id cdk.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r UsagePlan) ResourceType() string { return "AWS::ApiGateway::UsagePlan" }

// UsagePlan_ApiStage binds a usage plan to a deployed API stage.
type UsagePlan_ApiStage struct {
	ApiId any `json:"ApiId,omitempty"`
	Stage any `json:"Stage,omitempty"`
}

// UsagePlanKey represents AWS::ApiGateway::UsagePlanKey.
type UsagePlanKey struct {
	KeyId       any   `json:"KeyId,omitempty"`
	KeyType     any   `json:"KeyType,omitempty"`
	UsagePlanId any   `json:"UsagePlanId,omitempty"`
	DependsOn   []any `json:"DependsOn,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r UsagePlanKey) ResourceType() string { return "AWS::ApiGateway::UsagePlanKey" }
