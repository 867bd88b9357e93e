package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newPublishCmd(a *app) *cobra.Command {
	var (
		outputFormat string
		sourceDir    string
		bucket       string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the function package to S3",
		Long: `Publish packages the function source and uploads it to the asset bucket under
its content-addressed key. An object that already exists is not uploaded again.

Credentials come from the default AWS chain, using aws.profile and aws.region
from the config. Publish creates no stacks.

Examples:
    stackctl publish --bucket my-artifacts
    STACKCTL_ASSETS_BUCKET=my-artifacts stackctl publish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bucket == "" {
				bucket = a.cfg.Assets.Bucket
			}
			return a.runPublish(cmd, sourceDir, bucket, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVar(&sourceDir, "source", "", "Function source directory (default: assets.source_dir)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Asset bucket (default: assets.bucket)")

	return cmd
}

func (a *app) runPublish(cmd *cobra.Command, sourceDir, bucket, format string) error {
	if err := checkOutputFormat(format); err != nil {
		return err
	}
	if bucket == "" {
		return fmt.Errorf("no asset bucket: pass --bucket or set assets.bucket")
	}
	w := cmd.OutOrStdout()
	ctx := cmd.Context()

	pkg, err := a.buildAsset(sourceDir)
	if err != nil {
		return err
	}

	client, err := a.awsClient(ctx)
	if err != nil {
		return err
	}
	id, err := client.CallerIdentity(ctx)
	if err != nil {
		return err
	}
	a.log.Info("publishing", "account", id.Account, "region", client.Region, "bucket", bucket)

	up, err := client.UploadAsset(ctx, bucket, pkg)
	if err != nil {
		return err
	}

	if format == "json" {
		return a.printJSON(w, packageResult{
			Key: pkg.Key, SHA256: pkg.SHA256, Size: pkg.Size, Files: pkg.Files,
			URI: up.URI(), Exists: up.Skipped,
		})
	}
	return a.printUpload(w, up.URI(), up.Skipped, bucket, up.Key)
}

func (a *app) printUpload(w io.Writer, uri string, skipped bool, bucket, key string) error {
	if skipped {
		a.log.PrintYellow(w, "= "+uri+" already published")
	} else {
		a.log.PrintGreen(w, "✓ uploaded "+uri)
	}
	_, err := fmt.Fprintf(w, "  LambdaCodeBucket=%s LambdaCodeKey=%s\n", bucket, key)
	return err
}
