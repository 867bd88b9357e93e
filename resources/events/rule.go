// Package events provides typed declarations for AWS::Events resources.
package events

import (
	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// Rule represents AWS::Events::Rule.
// A rule carries an EventPattern or a ScheduleExpression, never both.
type Rule struct {
	Name               any   `json:"Name,omitempty"`
	Description        any   `json:"Description,omitempty"`
	EventBusName       any   `json:"EventBusName,omitempty"`
	EventPattern       any   `json:"EventPattern,omitempty"`
	ScheduleExpression any   `json:"ScheduleExpression,omitempty"`
	State              any   `json:"State,omitempty"`
	Targets            []any `json:"Targets,omitempty"`
	DependsOn          []any `json:"DependsOn,omitempty"`

	// Arn is the rule ARN.
	Arn cdk.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r Rule) ResourceType() string { return "AWS::Events::Rule" }

// Rule_Target is a target invoked when the rule matches.
type Rule_Target struct {
	Id    any `json:"Id,omitempty"`
	Arn   any `json:"Arn,omitempty"`
	Input any `json:"Input,omitempty"`
}
