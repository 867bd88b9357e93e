// Package awsclient wraps the AWS APIs stackctl calls: caller identity,
// asset upload and read-only inspection of deployed functions. Nothing here
// creates or updates stacks.
package awsclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// STSAPI is the subset of the STS client used here.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// S3API is the subset of the S3 client used here.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// LambdaAPI is the subset of the Lambda client used here.
type LambdaAPI interface {
	GetFunctionConfiguration(ctx context.Context, params *lambda.GetFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionConfigurationOutput, error)
}

// IAMAPI is the subset of the IAM client used here.
type IAMAPI interface {
	ListRolePolicies(ctx context.Context, params *iam.ListRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListRolePoliciesOutput, error)
}

// Client bundles the service clients of one account and region.
type Client struct {
	Region string
	STS    STSAPI
	S3     S3API
	Lambda LambdaAPI
	IAM    IAMAPI
}

// Options selects credentials.
type Options struct {
	Profile string
	Region  string
}

// New loads the shared AWS configuration and creates the service clients.
func New(ctx context.Context, opts Options) (*Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewFromConfig(cfg), nil
}

// NewFromConfig creates the service clients from an aws.Config.
func NewFromConfig(cfg aws.Config) *Client {
	return &Client{
		Region: cfg.Region,
		STS:    sts.NewFromConfig(cfg),
		S3:     s3.NewFromConfig(cfg),
		Lambda: lambda.NewFromConfig(cfg),
		IAM:    iam.NewFromConfig(cfg),
	}
}

// Identity is the caller the credentials resolve to.
type Identity struct {
	Account string `json:"account"`
	Arn     string `json:"arn"`
}

// CallerIdentity returns the account and principal of the credentials.
func (c *Client) CallerIdentity(ctx context.Context) (Identity, error) {
	out, err := c.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, fmt.Errorf("GetCallerIdentity: %w", err)
	}
	id := Identity{Account: aws.ToString(out.Account), Arn: aws.ToString(out.Arn)}
	if id.Account == "" {
		return Identity{}, errors.New("GetCallerIdentity returned no account")
	}
	return id, nil
}
