// Package discover provides AST-based discovery of stack declarations.
//
// It parses Go source files looking for package-level variable declarations
// of the form:
//
//	var ExampleLambdaFunction = lambda.Function{...}
//
// and extracts resource metadata including dependencies on other resources.
// Every declaration's value expression is kept so the template builder can
// resolve references from source.
package discover

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

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// knownResourcePackages maps package names under resources/ to CloudFormation
// service prefixes.
var knownResourcePackages = map[string]string{
	"apigateway":   "AWS::ApiGateway",
	"apigatewayv2": "AWS::ApiGatewayV2",
	"events":       "AWS::Events",
	"iam":          "AWS::IAM",
	"lambda":       "AWS::Lambda",
}

// Options configures the discovery process.
type Options struct {
	// Packages to scan (directories, optionally with a trailing /...)
	Packages []string
}

// Result contains all discovered declarations and any errors.
type Result struct {
	// Resources maps logical name to discovered resource
	Resources map[string]cdk.DiscoveredResource
	// Parameters maps logical name to discovered parameter
	Parameters map[string]cdk.DiscoveredParameter
	// Outputs maps logical name to discovered output
	Outputs map[string]cdk.DiscoveredOutput
	// AllVars tracks every package-level var and const name.
	// Used to avoid false positives when checking dependencies.
	AllVars map[string]bool
	// Decls maps every package-level var to its value expression
	Decls map[string]ast.Expr
	// Deps maps every package-level var to the upper-case names it references
	Deps map[string][]string
	// Files lists the parsed file names in sorted order
	Files []string
	// Errors encountered during parsing
	Errors []error

	positions map[string]string
}

func newResult() *Result {
	return &Result{
		Resources:  make(map[string]cdk.DiscoveredResource),
		Parameters: make(map[string]cdk.DiscoveredParameter),
		Outputs:    make(map[string]cdk.DiscoveredOutput),
		AllVars:    make(map[string]bool),
		Decls:      make(map[string]ast.Expr),
		Deps:       make(map[string][]string),
		positions:  make(map[string]string),
	}
}

// Discover scans Go packages on disk for stack declarations.
func Discover(opts Options) (*Result, error) {
	result := newResult()

	for _, pkg := range opts.Packages {
		if err := discoverPackage(pkg, result); err != nil {
			return nil, fmt.Errorf("discovering %s: %w", pkg, err)
		}
	}

	result.validate()
	return result, nil
}

// DiscoverFS scans the Go files at the root of fsys. Reported file names are
// prefixed with dir.
func DiscoverFS(fsys fs.FS, dir string) (*Result, error) {
	result := newResult()

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading sources: %w", err)
	}

	fset := token.NewFileSet()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isSourceFile(name) {
			continue
		}
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		filename := path.Join(dir, name)
		file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
		if err != nil {
			return nil, err
		}
		discoverFile(fset, filename, file, result)
	}

	result.validate()
	return result, nil
}

// validate flags references to names that are declared nowhere in the package.
func (r *Result) validate() {
	sort.Strings(r.Files)

	for _, name := range sortedKeys(r.Resources) {
		res := r.Resources[name]
		for _, dep := range res.Dependencies {
			if r.isDeclared(dep) {
				continue
			}
			r.Errors = append(r.Errors, fmt.Errorf(
				"%s:%d: %s references undefined resource %q",
				res.File, res.Line, name, dep,
			))
		}
	}

	for _, name := range sortedKeys(r.Outputs) {
		out := r.Outputs[name]
		for _, dep := range out.Dependencies {
			if r.isDeclared(dep) {
				continue
			}
			r.Errors = append(r.Errors, fmt.Errorf(
				"%s:%d: output %s references undefined resource %q",
				out.File, out.Line, name, dep,
			))
		}
	}

	// Property blocks are checked too: a dangling name inside a target or
	// policy var is just as fatal as one in the resource itself.
	for _, name := range sortedKeys(r.Deps) {
		if _, ok := r.Resources[name]; ok {
			continue
		}
		if _, ok := r.Outputs[name]; ok {
			continue
		}
		for _, dep := range r.Deps[name] {
			if r.isDeclared(dep) {
				continue
			}
			pos := r.declPosition(name)
			r.Errors = append(r.Errors, fmt.Errorf(
				"%s: %s references undefined resource %q",
				pos, name, dep,
			))
		}
	}
}

func (r *Result) isDeclared(name string) bool {
	if _, ok := r.Resources[name]; ok {
		return true
	}
	return r.AllVars[name]
}

func (r *Result) declPosition(name string) string {
	if pos, ok := r.positions[name]; ok {
		return pos
	}
	return name
}

// ResolveDependencies returns the resources a declaration depends on, following
// references through intermediate property vars (targets, policies, codes).
func (r *Result) ResolveDependencies(name string) []string {
	visited := map[string]bool{name: true}
	found := make(map[string]bool)

	var walk func(string)
	walk = func(n string) {
		for _, dep := range r.Deps[n] {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			if _, ok := r.Resources[dep]; ok {
				found[dep] = true
				continue
			}
			walk(dep)
		}
	}
	walk(name)

	deps := make([]string, 0, len(found))
	for dep := range found {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// ResolveAttrRefs returns every Resource.Attribute selector reachable from a
// declaration, following intermediate property vars.
func (r *Result) ResolveAttrRefs(name string) []cdk.AttrRefUsage {
	visited := make(map[string]bool)

	var usages []cdk.AttrRefUsage
	var walk func(n, prefix string)
	walk = func(n, prefix string) {
		if visited[n] {
			return
		}
		visited[n] = true
		expr, ok := r.Decls[n]
		if !ok {
			return
		}
		var refs []cdk.AttrRefUsage
		nested := make(map[string]string)
		collectRefs(expr, prefix, &refs, nested)
		usages = append(usages, refs...)
		for fieldPath, varName := range nested {
			if _, isResource := r.Resources[varName]; isResource {
				continue
			}
			walk(varName, fieldPath)
		}
	}
	walk(name, "")

	sort.Slice(usages, func(i, j int) bool {
		if usages[i].FieldPath != usages[j].FieldPath {
			return usages[i].FieldPath < usages[j].FieldPath
		}
		return usages[i].ResourceName < usages[j].ResourceName
	})
	return usages
}

func discoverPackage(pattern string, result *Result) error {
	recursive := strings.HasSuffix(pattern, "...")
	if recursive {
		pattern = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
		if pattern == "" {
			pattern = "."
		}
	}

	absPath, err := filepath.Abs(pattern)
	if err != nil {
		return err
	}

	if recursive {
		return filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if info.Name() == "testdata" {
					return filepath.SkipDir
				}
				return discoverDir(path, result)
			}
			return nil
		})
	}

	return discoverDir(absPath, result)
}

func discoverDir(dir string, result *Result) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	fset := token.NewFileSet()
	for _, entry := range entries {
		if entry.IsDir() || !isSourceFile(entry.Name()) {
			continue
		}
		filename := filepath.Join(dir, entry.Name())
		file, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
		if err != nil {
			return err
		}
		discoverFile(fset, filename, file, result)
	}

	return nil
}

func isSourceFile(name string) bool {
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}

func discoverFile(fset *token.FileSet, filename string, file *ast.File, result *Result) {
	result.Files = append(result.Files, filename)

	// Build import map: alias -> package path
	imports := make(map[string]string)
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		var name string
		if imp.Name != nil {
			name = imp.Name.Name
		} else {
			parts := strings.Split(importPath, "/")
			name = parts[len(parts)-1]
		}
		imports[name] = importPath
	}

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}

		if genDecl.Tok == token.CONST {
			for _, spec := range genDecl.Specs {
				if valueSpec, ok := spec.(*ast.ValueSpec); ok {
					for _, n := range valueSpec.Names {
						result.AllVars[n.Name] = true
					}
				}
			}
			continue
		}
		if genDecl.Tok != token.VAR {
			continue
		}

		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok || len(valueSpec.Names) != 1 || len(valueSpec.Values) != 1 {
				continue
			}

			name := valueSpec.Names[0].Name
			value := valueSpec.Values[0]

			if name == "_" {
				continue
			}

			result.AllVars[name] = true
			result.Decls[name] = value

			pos := fset.Position(valueSpec.Pos())
			result.positions[name] = fmt.Sprintf("%s:%d", filename, pos.Line)

			deps, attrRefs := extractDependencies(value, imports)
			result.Deps[name] = deps

			compLit, ok := value.(*ast.CompositeLit)
			if !ok {
				continue
			}

			typeName, pkgName := extractTypeName(compLit.Type)
			if typeName == "" {
				continue
			}

			if isIntrinsicPackage(pkgName, imports) {
				switch typeName {
				case "Parameter":
					result.Parameters[name] = cdk.DiscoveredParameter{
						Name: name,
						File: filename,
						Line: pos.Line,
					}
				case "Output":
					result.Outputs[name] = cdk.DiscoveredOutput{
						Name:          name,
						File:          filename,
						Line:          pos.Line,
						Dependencies:  deps,
						AttrRefUsages: attrRefs,
					}
				}
				continue
			}

			if !isResourcePackage(pkgName, imports) {
				continue
			}

			// Property types (Function_Code, Rule_Target) are nested blocks,
			// not CloudFormation resources.
			if strings.Contains(typeName, "_") {
				continue
			}

			result.Resources[name] = cdk.DiscoveredResource{
				Name:          name,
				Type:          fmt.Sprintf("%s.%s", pkgName, typeName),
				Package:       file.Name.Name,
				File:          filename,
				Line:          pos.Line,
				Dependencies:  deps,
				AttrRefUsages: attrRefs,
			}
		}
	}
}

// isIntrinsicPackage checks if the package is the intrinsics package.
func isIntrinsicPackage(pkgName string, imports map[string]string) bool {
	if pkgName == "" {
		// Unqualified type: only intrinsics is dot-imported by stacks
		for alias, importPath := range imports {
			if alias == "." && strings.HasSuffix(importPath, "/intrinsics") {
				return true
			}
		}
		return false
	}
	if importPath, ok := imports[pkgName]; ok {
		return strings.HasSuffix(importPath, "/intrinsics")
	}
	return pkgName == "intrinsics"
}

func isResourcePackage(pkgName string, imports map[string]string) bool {
	if _, known := knownResourcePackages[pkgName]; !known {
		return false
	}
	importPath, ok := imports[pkgName]
	if !ok {
		return false
	}
	return strings.Contains(importPath, "/resources/")
}

// ServicePrefix returns the CloudFormation service prefix for a resource
// package, or "" when the package is not a resource package.
func ServicePrefix(pkgName string) string {
	return knownResourcePackages[pkgName]
}

// extractTypeName extracts the type name and package from a type expression.
// For lambda.Function, returns ("Function", "lambda").
func extractTypeName(expr ast.Expr) (typeName, pkgName string) {
	switch t := expr.(type) {
	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return t.Sel.Name, ident.Name
		}
	case *ast.Ident:
		return t.Name, ""
	}
	return "", ""
}

// extractDependencies finds references to other declarations in a value.
// It looks for patterns like:
//   - OtherResource (identifier reference)
//   - OtherResource.Arn (selector for AttrRef)
func extractDependencies(expr ast.Expr, imports map[string]string) ([]string, []cdk.AttrRefUsage) {
	var deps []string
	var attrRefs []cdk.AttrRefUsage
	seen := make(map[string]bool)

	findDeps(expr, &deps, &attrRefs, seen, imports, "")

	return deps, attrRefs
}

func findDeps(expr ast.Expr, deps *[]string, attrRefs *[]cdk.AttrRefUsage, seen map[string]bool, imports map[string]string, fieldPath string) {
	addDep := func(name string) {
		if !seen[name] {
			*deps = append(*deps, name)
			seen[name] = true
		}
	}

	switch v := expr.(type) {
	case *ast.Ident:
		name := v.Name
		if _, isImport := imports[name]; isImport {
			return
		}
		if isCommonIdent(name) {
			return
		}
		// Heuristic: upper case means a declaration in the stack package
		if isExported(name) {
			addDep(name)
		}

	case *ast.SelectorExpr:
		ident, ok := v.X.(*ast.Ident)
		if !ok {
			return
		}
		name := ident.Name
		if _, isImport := imports[name]; isImport {
			return
		}
		if isExported(name) {
			addDep(name)
			*attrRefs = append(*attrRefs, cdk.AttrRefUsage{
				ResourceName: name,
				Attribute:    v.Sel.Name,
				FieldPath:    fieldPath,
			})
		}

	case *ast.CompositeLit:
		for _, elt := range v.Elts {
			kv, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				findDeps(elt, deps, attrRefs, seen, imports, fieldPath)
				continue
			}
			nestedPath := fieldPath
			if key := keyName(kv.Key); key != "" {
				nestedPath = joinPath(fieldPath, key)
			}
			findDeps(kv.Value, deps, attrRefs, seen, imports, nestedPath)
		}

	case *ast.UnaryExpr:
		findDeps(v.X, deps, attrRefs, seen, imports, fieldPath)

	case *ast.CallExpr:
		for _, arg := range v.Args {
			findDeps(arg, deps, attrRefs, seen, imports, fieldPath)
		}

	case *ast.BinaryExpr:
		findDeps(v.X, deps, attrRefs, seen, imports, fieldPath)
		findDeps(v.Y, deps, attrRefs, seen, imports, fieldPath)

	case *ast.ParenExpr:
		findDeps(v.X, deps, attrRefs, seen, imports, fieldPath)
	}
}

// collectRefs gathers AttrRef usages of a single declaration and the property
// vars it embeds, keyed by field path.
func collectRefs(expr ast.Expr, fieldPath string, refs *[]cdk.AttrRefUsage, nested map[string]string) {
	switch v := expr.(type) {
	case *ast.Ident:
		if isExported(v.Name) && !isCommonIdent(v.Name) && fieldPath != "" {
			nested[fieldPath] = v.Name
		}
	case *ast.SelectorExpr:
		if ident, ok := v.X.(*ast.Ident); ok && isExported(ident.Name) {
			*refs = append(*refs, cdk.AttrRefUsage{
				ResourceName: ident.Name,
				Attribute:    v.Sel.Name,
				FieldPath:    fieldPath,
			})
		}
	case *ast.CompositeLit:
		for i, elt := range v.Elts {
			if kv, ok := elt.(*ast.KeyValueExpr); ok {
				collectRefs(kv.Value, joinPath(fieldPath, keyName(kv.Key)), refs, nested)
				continue
			}
			collectRefs(elt, joinPath(fieldPath, fmt.Sprint(i)), refs, nested)
		}
	case *ast.UnaryExpr:
		collectRefs(v.X, fieldPath, refs, nested)
	case *ast.CallExpr:
		for i, arg := range v.Args {
			collectRefs(arg, joinPath(fieldPath, fmt.Sprint(i)), refs, nested)
		}
	}
}

func keyName(key ast.Expr) string {
	switch k := key.(type) {
	case *ast.Ident:
		return k.Name
	case *ast.BasicLit:
		return strings.Trim(k.Value, "\"`")
	}
	return ""
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}

func isExported(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

// isCommonIdent returns true for identifiers that are not declarations.
func isCommonIdent(name string) bool {
	common := map[string]bool{
		// Go built-ins
		"true": true, "false": true, "nil": true,

		// Intrinsic function types (dot-imported from intrinsics)
		"Ref": true, "Sub": true, "Join": true, "GetAtt": true,
		"Select": true, "Split": true, "ImportValue": true,
		"Json": true, "Parameter": true, "Output": true,
		"PolicyDocument": true, "PolicyStatement": true,
		"ServicePrincipal": true, "AWSPrincipal": true,
		"List": true, "Any": true, "Param": true, "Tag": true,

		// Pseudo-parameter variables and condition operators
		"AWS_ACCOUNT_ID": true, "AWS_PARTITION": true,
		"AWS_REGION": true, "AWS_STACK_NAME": true,
		"AWS_URL_SUFFIX": true,
		"StringEquals":   true, "StringLike": true,
		"ArnEquals": true, "ArnLike": true,
	}
	return common[name]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
