package lint

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	corelint "github.com/lex00/wetwire-core-go/lint"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/registry"
)

type (
	// Issue is an alias for corelint.Issue.
	Issue = corelint.Issue
	// Severity is an alias for corelint.Severity.
	Severity = corelint.Severity
	// Rule is an alias for corelint.Rule.
	Rule = corelint.Rule
)

const (
	SeverityError   = corelint.SeverityError
	SeverityWarning = corelint.SeverityWarning
	SeverityInfo    = corelint.SeverityInfo
)

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []Issue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
	// Rules to skip. Applied after EnabledRules.
	DisabledRules []string
	// MaxResources for the FileTooLarge rule. Zero keeps the default.
	MaxResources int
}

// LintFile lints a single Go file.
func LintFile(path string, opts Options) (Result, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return Result{}, err
	}

	return lintFiles(fset, []*ast.File{file}, opts), nil
}

// LintPackage lints all Go files in a package directory. A trailing /...
// lints every package below the directory.
func LintPackage(pkgPath string, opts Options) (Result, error) {
	if strings.HasSuffix(pkgPath, "...") {
		root := strings.TrimSuffix(strings.TrimSuffix(pkgPath, "..."), "/")
		return lintRecursive(root, opts)
	}

	info, err := os.Stat(pkgPath)
	if err != nil {
		return Result{}, err
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("%s is not a directory", pkgPath)
	}

	return LintFS(os.DirFS(pkgPath), ".", pkgPath, opts)
}

// LintStack lints the embedded sources of a registered stack. Reported file
// names are relative to the repository root.
func LintStack(s registry.Stack, opts Options) (Result, error) {
	return LintFS(s.Sources, ".", s.Dir, opts)
}

// LintFS lints the package in dir of fsys. prefix is joined onto reported
// file names.
func LintFS(fsys fs.FS, dir, prefix string, opts Options) (Result, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return Result{}, err
	}

	fset := token.NewFileSet()
	var files []*ast.File
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return Result{}, err
		}
		file, err := parser.ParseFile(fset, filepath.Join(prefix, name), data, parser.ParseComments)
		if err != nil {
			return Result{}, err
		}
		files = append(files, file)
	}

	return lintFiles(fset, files, opts), nil
}

// lintFiles runs the rules over the files of one package.
func lintFiles(fset *token.FileSet, files []*ast.File, opts Options) Result {
	ctx := buildPackageContext(fset, files)
	var issues []Issue

	for _, file := range files {
		for _, rule := range getRules(opts) {
			if par, ok := rule.(PackageAwareRule); ok {
				issues = append(issues, par.CheckWithContext(file, fset, ctx)...)
			} else {
				issues = append(issues, rule.Check(file, fset)...)
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		return issues[i].Line < issues[j].Line
	})

	return Result{
		Success: len(issues) == 0,
		Issues:  issues,
	}
}

// buildPackageContext collects the resource declarations of every file.
func buildPackageContext(fset *token.FileSet, files []*ast.File) *PackageContext {
	ctx := &PackageContext{
		AllDefinedVars: make(map[string]bool),
		Resources:      make(map[string][]token.Position),
	}

	for _, file := range files {
		for _, spec := range varSpecs(file) {
			resource := isResourceDeclaration(spec)
			for _, name := range spec.Names {
				ctx.AllDefinedVars[name.Name] = true
				if resource && name.Name != "_" {
					ctx.Resources[name.Name] = append(ctx.Resources[name.Name], fset.Position(name.Pos()))
				}
			}
		}
	}

	for _, positions := range ctx.Resources {
		sort.Slice(positions, func(i, j int) bool {
			if positions[i].Filename != positions[j].Filename {
				return positions[i].Filename < positions[j].Filename
			}
			return positions[i].Line < positions[j].Line
		})
	}

	return ctx
}

// lintRecursive lints every package under root, one package per directory.
func lintRecursive(root string, opts Options) (Result, error) {
	if root == "" {
		root = "."
	}

	var allIssues []Issue
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		name := d.Name()
		if p != root && (name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			return filepath.SkipDir
		}

		result, err := LintFS(os.DirFS(p), ".", p, opts)
		if err != nil {
			// Unparseable packages are left to the compiler.
			return nil
		}
		allIssues = append(allIssues, result.Issues...)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Success: len(allIssues) == 0,
		Issues:  allIssues,
	}, nil
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	if opts.MaxResources > 0 {
		for i, r := range all {
			if ftl, ok := r.(FileTooLarge); ok {
				ftl.MaxResources = opts.MaxResources
				all[i] = ftl
			}
		}
	}

	enabled := make(map[string]bool)
	for _, id := range opts.EnabledRules {
		enabled[id] = true
	}
	disabled := make(map[string]bool)
	for _, id := range opts.DisabledRules {
		disabled[id] = true
	}

	var filtered []Rule
	for _, r := range all {
		if len(enabled) > 0 && !enabled[r.ID()] {
			continue
		}
		if disabled[r.ID()] {
			continue
		}
		filtered = append(filtered, r)
	}

	return filtered
}
