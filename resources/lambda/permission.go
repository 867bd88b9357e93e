package lambda

// Permission represents AWS::Lambda::Permission.
//
// Grants a service principal the right to invoke a function, scoped by SourceArn.
type Permission struct {
	Action        any   `json:"Action,omitempty"`
	FunctionName  any   `json:"FunctionName,omitempty"`
	Principal     any   `json:"Principal,omitempty"`
	SourceArn     any   `json:"SourceArn,omitempty"`
	SourceAccount any   `json:"SourceAccount,omitempty"`
	DependsOn     []any `json:"DependsOn,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Permission) ResourceType() string { return "AWS::Lambda::Permission" }
