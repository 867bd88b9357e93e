// Package iam provides typed declarations for AWS::IAM resources.
package iam

import (
	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// Role represents AWS::IAM::Role.
type Role struct {
	RoleName                 any           `json:"RoleName,omitempty"`
	Description              any           `json:"Description,omitempty"`
	Path                     any           `json:"Path,omitempty"`
	AssumeRolePolicyDocument any           `json:"AssumeRolePolicyDocument,omitempty"`
	ManagedPolicyArns        []any         `json:"ManagedPolicyArns,omitempty"`
	Policies                 []Role_Policy `json:"Policies,omitempty"`
	MaxSessionDuration       int           `json:"MaxSessionDuration,omitempty"`
	DependsOn                []any         `json:"DependsOn,omitempty"`

	// Arn is the role ARN.
	Arn cdk.AttrRef `json:"-"`
	// RoleId is the stable role identifier.
	RoleId cdk.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r Role) ResourceType() string { return "AWS::IAM::Role" }

// Role_Policy is an inline policy embedded in a Role.
type Role_Policy struct {
	PolicyName     any `json:"PolicyName,omitempty"`
	PolicyDocument any `json:"PolicyDocument,omitempty"`
}
