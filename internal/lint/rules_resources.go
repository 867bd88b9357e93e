package lint

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"strings"
)

const defaultMaxResources = 15

// WildcardAction detects IAM statement actions containing "*".
//
//	// Bad
//	Action: []any{"logs:*"},
//
//	// Good
//	Action: []any{"logs:CreateLogStream", "logs:PutLogEvents"},
type WildcardAction struct{}

func (r WildcardAction) ID() string { return "STK005" }
func (r WildcardAction) Description() string {
	return "IAM statements must not grant wildcard actions"
}

func (r WildcardAction) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue

	ast.Inspect(file, func(n ast.Node) bool {
		kv, ok := n.(*ast.KeyValueExpr)
		if !ok {
			return true
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok || key.Name != "Action" {
			return true
		}

		for _, lit := range actionLiterals(kv.Value) {
			action, _ := stringLit(lit)
			if !strings.Contains(action, "*") {
				continue
			}
			pos := fset.Position(lit.Pos())
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Message:    fmt.Sprintf("Wildcard action %q - list the actions the function needs", action),
				Suggestion: "Replace " + action + " with explicit actions",
				File:       pos.Filename,
				Line:       pos.Line,
				Column:     pos.Column,
				Severity:   SeverityError,
			})
		}
		return true
	})

	return issues
}

// actionLiterals returns the string literals of an Action value, which is
// either a single string or a slice literal.
func actionLiterals(expr ast.Expr) []*ast.BasicLit {
	switch v := expr.(type) {
	case *ast.BasicLit:
		if _, ok := stringLit(v); ok {
			return []*ast.BasicLit{v}
		}
	case *ast.CompositeLit:
		var lits []*ast.BasicLit
		for _, elt := range v.Elts {
			if lit, ok := elt.(*ast.BasicLit); ok {
				if _, ok := stringLit(lit); ok {
					lits = append(lits, lit)
				}
			}
		}
		return lits
	}
	return nil
}

// DuplicateResource detects resource variables declared more than once in a
// stack. Discovery keys resources by variable name, so a duplicate silently
// replaces the earlier declaration.
type DuplicateResource struct{}

func (r DuplicateResource) ID() string { return "STK006" }
func (r DuplicateResource) Description() string {
	return "Resource names must be unique across the stack's files"
}

func (r DuplicateResource) Check(file *ast.File, fset *token.FileSet) []Issue {
	ctx := buildPackageContext(fset, []*ast.File{file})
	return r.CheckWithContext(file, fset, ctx)
}

func (r DuplicateResource) CheckWithContext(file *ast.File, fset *token.FileSet, ctx *PackageContext) []Issue {
	var issues []Issue
	filename := fset.Position(file.Pos()).Filename

	for _, spec := range varSpecs(file) {
		if !isResourceDeclaration(spec) {
			continue
		}
		for _, name := range spec.Names {
			locations := ctx.Resources[name.Name]
			if len(locations) < 2 {
				continue
			}
			pos := fset.Position(name.Pos())
			first := locations[0]
			if first == pos {
				continue
			}

			where := fmt.Sprintf("line %d", first.Line)
			if first.Filename != filename {
				where = fmt.Sprintf("%s:%d", filepath.Base(first.Filename), first.Line)
			}
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Message:    fmt.Sprintf("Duplicate resource %s (first declared at %s)", name.Name, where),
				Suggestion: "Rename or remove one of the declarations",
				File:       pos.Filename,
				Line:       pos.Line,
				Column:     pos.Column,
				Severity:   SeverityError,
			})
		}
	}

	return issues
}

// FileTooLarge detects files with too many resources.
type FileTooLarge struct {
	MaxResources int
}

func (r FileTooLarge) ID() string { return "STK007" }
func (r FileTooLarge) Description() string {
	return "Split files with too many resources"
}

func (r FileTooLarge) Check(file *ast.File, fset *token.FileSet) []Issue {
	maxResources := r.MaxResources
	if maxResources == 0 {
		maxResources = defaultMaxResources
	}

	count := 0
	for _, spec := range varSpecs(file) {
		if isResourceDeclaration(spec) {
			count += len(spec.Names)
		}
	}
	if count <= maxResources {
		return nil
	}

	pos := fset.Position(file.Pos())
	return []Issue{{
		Rule:       r.ID(),
		Message:    fmt.Sprintf("File has %d resources (max %d). Split by concern: security.go, compute.go, api.go", count, maxResources),
		Suggestion: fmt.Sprintf("// Split %d resources into multiple files", count),
		File:       pos.Filename,
		Line:       1,
		Column:     0,
		Severity:   SeverityWarning,
	}}
}

// MapShouldBeIntrinsic detects single-key maps spelling an intrinsic.
//
//	// Bad
//	Role: map[string]any{"Fn::GetAtt": []any{"ExampleLambdaRole", "Arn"}},
type MapShouldBeIntrinsic struct{}

func (r MapShouldBeIntrinsic) ID() string { return "STK008" }
func (r MapShouldBeIntrinsic) Description() string {
	return "Use intrinsic types instead of raw map[string]any"
}

var intrinsicKeys = map[string]string{
	"Ref":             "Ref",
	"Fn::Sub":         "Sub",
	"Fn::Join":        "Join",
	"Fn::Select":      "Select",
	"Fn::GetAtt":      "GetAtt",
	"Fn::If":          "If",
	"Fn::Equals":      "Equals",
	"Fn::Base64":      "Base64",
	"Fn::Split":       "Split",
	"Fn::ImportValue": "ImportValue",
}

func (r MapShouldBeIntrinsic) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue

	ast.Inspect(file, func(n ast.Node) bool {
		comp, ok := n.(*ast.CompositeLit)
		if !ok || !isMapStringAny(comp.Type) || len(comp.Elts) != 1 {
			return true
		}
		kv, ok := comp.Elts[0].(*ast.KeyValueExpr)
		if !ok {
			return true
		}
		key, ok := stringLit(kv.Key)
		if !ok {
			return true
		}

		if typeName, found := intrinsicKeys[key]; found {
			pos := fset.Position(comp.Pos())
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Message:    fmt.Sprintf("Use %s{...} instead of map[string]any{%q: ...}", typeName, key),
				Suggestion: typeName + "{...}",
				File:       pos.Filename,
				Line:       pos.Line,
				Column:     pos.Column,
				Severity:   SeverityWarning,
			})
		}
		return true
	})

	return issues
}

// isMapStringAny checks if an expression is map[string]any.
func isMapStringAny(expr ast.Expr) bool {
	mapType, ok := expr.(*ast.MapType)
	if !ok {
		return false
	}
	keyIdent, ok := mapType.Key.(*ast.Ident)
	if !ok || keyIdent.Name != "string" {
		return false
	}
	switch v := mapType.Value.(type) {
	case *ast.Ident:
		return v.Name == "any"
	case *ast.InterfaceType:
		return len(v.Methods.List) == 0
	}
	return false
}
