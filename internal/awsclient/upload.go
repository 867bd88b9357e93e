package awsclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/asset"
)

// Upload is the outcome of publishing an asset.
type Upload struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	// Skipped is true when the object already existed
	Skipped bool `json:"skipped"`
}

// URI returns the s3:// location of the upload.
func (u Upload) URI() string {
	return "s3://" + u.Bucket + "/" + u.Key
}

// UploadAsset puts the asset under its content-addressed key. Existing
// objects are left alone.
func (c *Client) UploadAsset(ctx context.Context, bucket string, a *asset.Asset) (Upload, error) {
	if bucket == "" {
		return Upload{}, errors.New("no asset bucket configured")
	}
	up := Upload{Bucket: bucket, Key: a.Key}

	_, err := c.S3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(a.Key),
	})
	switch {
	case err == nil:
		up.Skipped = true
		return up, nil
	case !isNotFound(err):
		return Upload{}, fmt.Errorf("HeadObject %s: %w", up.URI(), err)
	}

	_, err = c.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(a.Key),
		Body:        bytes.NewReader(a.Data),
		ContentType: aws.String("application/zip"),
		Metadata:    map[string]string{"sha256": a.SHA256},
	})
	if err != nil {
		return Upload{}, fmt.Errorf("PutObject %s: %w", up.URI(), err)
	}
	return up, nil
}

func isNotFound(err error) bool {
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
