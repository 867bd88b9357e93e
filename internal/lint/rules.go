// Package lint checks stack declaration sources for patterns that discovery
// cannot see through or that produce unreviewable templates.
//
// Rules:
//
//	STK001: Use pseudo-parameter variables instead of hardcoded strings
//	STK002: Avoid explicit Ref{} - reference the declaration directly
//	STK003: Avoid explicit GetAtt{} - use resource.Attr field access
//	STK004: Avoid pointer declarations (&Type{}) - use value types
//	STK005: IAM statements must not grant wildcard actions
//	STK006: Resource names must be unique across the stack's files
//	STK007: Split files with too many resources
//	STK008: Use intrinsic types instead of raw map[string]any
package lint

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/discover"
	"github.com/VPPATEL-SPS/aws-cdk-examples/intrinsics"
)

// PackageContext holds information about all files in a package.
type PackageContext struct {
	// AllDefinedVars contains all package-level variable names across all files
	AllDefinedVars map[string]bool
	// Resources maps each resource variable to its declarations, sorted by position
	Resources map[string][]token.Position
}

// PackageAwareRule is an optional interface for rules that need cross-file
// visibility.
type PackageAwareRule interface {
	Rule
	CheckWithContext(file *ast.File, fset *token.FileSet, ctx *PackageContext) []Issue
}

// AllRules returns every rule with its defaults.
func AllRules() []Rule {
	return []Rule{
		HardcodedPseudoParameter{},
		AvoidExplicitRef{},
		AvoidExplicitGetAtt{},
		AvoidPointerAssignment{},
		WildcardAction{},
		DuplicateResource{},
		FileTooLarge{MaxResources: defaultMaxResources},
		MapShouldBeIntrinsic{},
	}
}

// HardcodedPseudoParameter detects pseudo-parameter names written as plain
// strings, which synthesize to a literal instead of a Ref.
type HardcodedPseudoParameter struct{}

func (r HardcodedPseudoParameter) ID() string { return "STK001" }
func (r HardcodedPseudoParameter) Description() string {
	return "Use pseudo-parameter variables instead of hardcoded strings"
}

var pseudoParamVars = map[string]string{
	"AWS::AccountId": "AWS_ACCOUNT_ID",
	"AWS::Partition": "AWS_PARTITION",
	"AWS::Region":    "AWS_REGION",
	"AWS::StackName": "AWS_STACK_NAME",
	"AWS::URLSuffix": "AWS_URL_SUFFIX",
}

func (r HardcodedPseudoParameter) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue

	ast.Inspect(file, func(n ast.Node) bool {
		value, ok := stringLit(n)
		if !ok || !intrinsics.PseudoParameters[value] {
			return true
		}

		suggestion := fmt.Sprintf(`Ref{%q}`, value)
		if name, found := pseudoParamVars[value]; found {
			suggestion = name
		}
		pos := fset.Position(n.Pos())
		issues = append(issues, Issue{
			Rule:       r.ID(),
			Message:    fmt.Sprintf("Use %s instead of %q", suggestion, value),
			Suggestion: suggestion,
			File:       pos.Filename,
			Line:       pos.Line,
			Column:     pos.Column,
			Severity:   SeverityWarning,
		})
		return true
	})

	return issues
}

// AvoidExplicitRef detects Ref{} literals naming a declaration of the same
// package. Direct references let discovery order and check the dependency.
//
//	// Bad
//	ApiId: Ref{"ExampleHttpApi"},
//
//	// Good
//	ApiId: ExampleHttpApi,
type AvoidExplicitRef struct{}

func (r AvoidExplicitRef) ID() string { return "STK002" }
func (r AvoidExplicitRef) Description() string {
	return "Avoid explicit Ref{} - reference the declaration directly"
}

func (r AvoidExplicitRef) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue

	ast.Inspect(file, func(n ast.Node) bool {
		comp, ok := n.(*ast.CompositeLit)
		if !ok || !isIntrinsicType(comp.Type, "Ref") {
			return true
		}

		target := ""
		if len(comp.Elts) > 0 {
			target, _ = stringLit(elementValue(comp.Elts[0]))
		}
		// Pseudo parameters have no declaration to reference.
		if intrinsics.PseudoParameters[target] {
			return true
		}

		suggestion := "Reference the resource or parameter variable directly"
		if target != "" {
			suggestion = "Use " + target + " directly"
		}
		pos := fset.Position(comp.Pos())
		issues = append(issues, Issue{
			Rule:       r.ID(),
			Message:    "Avoid Ref{} - discovery cannot see the dependency",
			Suggestion: suggestion,
			File:       pos.Filename,
			Line:       pos.Line,
			Column:     pos.Column,
			Severity:   SeverityWarning,
		})
		return true
	})

	return issues
}

// AvoidExplicitGetAtt detects GetAtt{} literals.
//
//	// Bad
//	Role: GetAtt{"ExampleLambdaRole", "Arn"},
//
//	// Good
//	Role: ExampleLambdaRole.Arn,
type AvoidExplicitGetAtt struct{}

func (r AvoidExplicitGetAtt) ID() string { return "STK003" }
func (r AvoidExplicitGetAtt) Description() string {
	return "Avoid explicit GetAtt{} - use resource.Attr field access"
}

func (r AvoidExplicitGetAtt) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue

	ast.Inspect(file, func(n ast.Node) bool {
		comp, ok := n.(*ast.CompositeLit)
		if !ok || !isIntrinsicType(comp.Type, "GetAtt") {
			return true
		}

		suggestion := "Use Resource.Attr field access instead"
		if len(comp.Elts) >= 2 {
			resource, ok1 := stringLit(elementValue(comp.Elts[0]))
			attr, ok2 := stringLit(elementValue(comp.Elts[1]))
			if ok1 && ok2 {
				suggestion = fmt.Sprintf("Use %s.%s instead", resource, attr)
			}
		}
		pos := fset.Position(comp.Pos())
		issues = append(issues, Issue{
			Rule:       r.ID(),
			Message:    "Avoid GetAtt{} - use resource.Attr field access",
			Suggestion: suggestion,
			File:       pos.Filename,
			Line:       pos.Line,
			Column:     pos.Column,
			Severity:   SeverityWarning,
		})
		return true
	})

	return issues
}

// AvoidPointerAssignment detects pointer declarations. Discovery reads
// composite literals; &Type{} values are not synthesized.
type AvoidPointerAssignment struct{}

func (r AvoidPointerAssignment) ID() string { return "STK004" }
func (r AvoidPointerAssignment) Description() string {
	return "Avoid pointer declarations (&Type{}) - use value types"
}

func (r AvoidPointerAssignment) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue

	for _, spec := range varSpecs(file) {
		for i, value := range spec.Values {
			unary, ok := value.(*ast.UnaryExpr)
			if !ok || unary.Op != token.AND {
				continue
			}
			comp, ok := unary.X.(*ast.CompositeLit)
			if !ok {
				continue
			}

			typeName := "struct"
			switch t := comp.Type.(type) {
			case *ast.SelectorExpr:
				typeName = t.Sel.Name
			case *ast.Ident:
				typeName = t.Name
			}
			varName := "_"
			if i < len(spec.Names) {
				varName = spec.Names[i].Name
			}

			pos := fset.Position(unary.Pos())
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Message:    fmt.Sprintf("Avoid pointer declaration for %s - use value type instead of &%s{}", varName, typeName),
				Suggestion: fmt.Sprintf("var %s = %s{...} (remove &)", varName, typeName),
				File:       pos.Filename,
				Line:       pos.Line,
				Column:     pos.Column,
				Severity:   SeverityError,
			})
		}
	}

	return issues
}

// stringLit returns the unquoted value of a string literal node.
func stringLit(n ast.Node) (string, bool) {
	lit, ok := n.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	value, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return value, true
}

// elementValue unwraps keyed composite elements.
func elementValue(expr ast.Expr) ast.Expr {
	if kv, ok := expr.(*ast.KeyValueExpr); ok {
		return kv.Value
	}
	return expr
}

// isIntrinsicType reports whether expr names the intrinsic type name, either
// dot-imported or qualified as intrinsics.Name.
func isIntrinsicType(expr ast.Expr, name string) bool {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name == name
	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		return ok && pkg.Name == "intrinsics" && t.Sel.Name == name
	}
	return false
}

func varSpecs(file *ast.File) []*ast.ValueSpec {
	var specs []*ast.ValueSpec
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.VAR {
			continue
		}
		for _, spec := range genDecl.Specs {
			if valueSpec, ok := spec.(*ast.ValueSpec); ok {
				specs = append(specs, valueSpec)
			}
		}
	}
	return specs
}

// isResourceDeclaration reports whether a var is initialized with a resource
// type such as lambda.Function{}. Property types like iam.Role_Policy are not
// resources.
func isResourceDeclaration(spec *ast.ValueSpec) bool {
	for _, value := range spec.Values {
		comp, ok := value.(*ast.CompositeLit)
		if !ok {
			continue
		}
		sel, ok := comp.Type.(*ast.SelectorExpr)
		if !ok {
			continue
		}
		pkgIdent, ok := sel.X.(*ast.Ident)
		if !ok {
			continue
		}
		if isResourceModule(pkgIdent.Name) && !strings.Contains(sel.Sel.Name, "_") {
			return true
		}
	}
	return false
}

func isResourceModule(name string) bool {
	return discover.ServicePrefix(name) != ""
}
