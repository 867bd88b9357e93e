package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/asset"
)

func newPackageCmd(a *app) *cobra.Command {
	var (
		outputFormat string
		sourceDir    string
	)

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Zip the function source",
		Long: `Package zips the function source directory (assets.source_dir, default lambda/)
into <output>/assets/<sha256>.zip.

The archive is deterministic, so its key only changes when the sources do.
Pass the key as the LambdaCodeKey parameter when deploying a template.

Examples:
    stackctl package
    stackctl package --source ./lambda --format json`,
		Annotations: map[string]string{bindConfigFlags: "output"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.runPackage(cmd.OutOrStdout(), sourceDir, outputFormat)
			return err
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output directory (default: output_dir from config, cdk.out)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVar(&sourceDir, "source", "", "Function source directory (default: assets.source_dir)")

	return cmd
}

// packageResult is the JSON output of package and publish.
type packageResult struct {
	Key    string   `json:"key"`
	SHA256 string   `json:"sha256"`
	Size   int      `json:"size"`
	Files  []string `json:"files"`
	Path   string   `json:"path,omitempty"`
	URI    string   `json:"uri,omitempty"`
	Exists bool     `json:"exists,omitempty"`
}

func (a *app) buildAsset(sourceDir string) (*asset.Asset, error) {
	if sourceDir == "" {
		sourceDir = a.cfg.Assets.SourceDir
	}
	a.log.Info("packaging", "source", sourceDir)
	return asset.Package(sourceDir, a.cfg.Assets.Prefix)
}

func (a *app) runPackage(w io.Writer, sourceDir, format string) (*asset.Asset, error) {
	if err := checkOutputFormat(format); err != nil {
		return nil, err
	}

	pkg, err := a.buildAsset(sourceDir)
	if err != nil {
		return nil, err
	}
	path, err := pkg.Write(filepath.Join(a.cfg.OutputDir, "assets"))
	if err != nil {
		return nil, err
	}

	if format == "json" {
		return pkg, a.printJSON(w, packageResult{
			Key: pkg.Key, SHA256: pkg.SHA256, Size: pkg.Size, Files: pkg.Files, Path: path,
		})
	}

	a.log.PrintGreen(w, fmt.Sprintf("✓ packaged %d files (%d bytes) -> %s", len(pkg.Files), pkg.Size, path))
	fmt.Fprintf(w, "  LambdaCodeKey=%s\n", pkg.Key)
	return pkg, nil
}
