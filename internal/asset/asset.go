// Package asset packages the function source directory into the zip the
// stacks' Code parameters point at.
//
// Archives are deterministic: entries are sorted, timestamps fixed and
// permissions normalized, so the same sources always hash to the same key.
package asset

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// epoch is the modification time stamped on every entry.
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Asset is a packaged source directory.
type Asset struct {
	// SHA256 is the hex digest of Data
	SHA256 string `json:"sha256"`
	// Key is the object key: prefix + digest + ".zip"
	Key string `json:"key"`
	// Files lists the archived paths in archive order
	Files []string `json:"files"`
	// Size is len(Data)
	Size int `json:"size"`

	Data []byte `json:"-"`
}

// Package zips every regular file under dir. Hidden files and directories
// and Python bytecode caches are skipped.
func Package(dir, prefix string) (*Asset, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("asset source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset source %s is not a directory", dir)
	}
	return PackageFS(os.DirFS(dir), prefix)
}

// PackageFS zips every regular file of fsys.
func PackageFS(fsys fs.FS, prefix string) (*Asset, error) {
	files, err := collect(fsys)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("asset source has no files")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range files {
		if err := addFile(zw, fsys, name); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	digest := hex.EncodeToString(sum[:])
	return &Asset{
		SHA256: digest,
		Key:    prefix + digest + ".zip",
		Files:  files,
		Size:   buf.Len(),
		Data:   buf.Bytes(),
	}, nil
}

// Write stores the archive as dir/<digest>.zip and returns its path.
func (a *Asset) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating asset directory: %w", err)
	}
	p := filepath.Join(dir, a.SHA256+".zip")
	if err := os.WriteFile(p, a.Data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", p, err)
	}
	return p, nil
}

func collect(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if p != "." && (strings.HasPrefix(name, ".") || name == "__pycache__") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && !strings.HasSuffix(name, ".pyc") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking asset source: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func addFile(zw *zip.Writer, fsys fs.FS, name string) error {
	header := &zip.FileHeader{
		Name:     path.Clean(name),
		Method:   zip.Deflate,
		Modified: epoch,
	}
	header.SetMode(0644)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	f, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("archiving %s: %w", name, err)
	}
	return nil
}
