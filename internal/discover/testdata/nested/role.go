package nested

import "github.com/VPPATEL-SPS/aws-cdk-examples/resources/iam"

var OuterRole = iam.Role{}
