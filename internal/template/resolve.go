package template

import (
	"go/ast"
	"strings"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/discover"
)

// intrinsicTypes are serialized by their own MarshalJSON and are not descended
// field by field. Join and SubWithMap carry nested values and are handled apart.
var intrinsicTypes = map[string]bool{
	"Ref":              true,
	"GetAtt":           true,
	"Sub":              true,
	"Select":           true,
	"Split":            true,
	"ImportValue":      true,
	"ServicePrincipal": true,
	"AWSPrincipal":     true,
}

// resolver rewrites serialized values using the declaration that produced them.
//
// A value serialized at runtime cannot tell that a field holds another
// declaration: a resource embedded by value marshals as its own properties, an
// AttrRef marshals empty. Walking the declaration's expression in step with
// the JSON recovers that:
//
//	ApiId: ExampleHttpApi         -> {"Ref": "ExampleHttpApi"}
//	Role:  ExampleLambdaRole.Arn  -> {"Fn::GetAtt": ["ExampleLambdaRole", "Arn"]}
//	S3Key: LambdaCodeKey          -> {"Ref": "LambdaCodeKey"}
//	Code:  ExampleLambdaCode      -> walk ExampleLambdaCode's own declaration
type resolver struct {
	result *discover.Result
	active map[string]bool // declarations on the current path
}

func (r *resolver) resolve(expr ast.Expr, value any) any {
	switch e := expr.(type) {
	case *ast.Ident:
		return r.resolveIdent(e.Name, value)

	case *ast.SelectorExpr:
		if ident, ok := e.X.(*ast.Ident); ok {
			if _, isResource := r.result.Resources[ident.Name]; isResource {
				return map[string]any{"Fn::GetAtt": []any{ident.Name, e.Sel.Name}}
			}
		}
		return value

	case *ast.CompositeLit:
		return r.resolveComposite(e, value)

	case *ast.UnaryExpr:
		return r.resolve(e.X, value)

	case *ast.ParenExpr:
		return r.resolve(e.X, value)

	case *ast.CallExpr:
		// List(...) and Any(...) helpers build slices from their arguments
		if items, ok := value.([]any); ok {
			for i, arg := range e.Args {
				if i >= len(items) {
					break
				}
				items[i] = r.resolve(arg, items[i])
			}
			return items
		}
		return value
	}

	return value
}

func (r *resolver) resolveIdent(name string, value any) any {
	if _, ok := r.result.Resources[name]; ok {
		return map[string]any{"Ref": name}
	}
	if _, ok := r.result.Parameters[name]; ok {
		return map[string]any{"Ref": name}
	}

	// A property var: its declaration describes this value
	decl, ok := r.result.Decls[name]
	if !ok || r.active[name] {
		return value
	}
	r.active[name] = true
	defer delete(r.active, name)

	return r.resolve(decl, value)
}

func (r *resolver) resolveComposite(lit *ast.CompositeLit, value any) any {
	typeName := compositeTypeName(lit.Type)

	switch v := value.(type) {
	case map[string]any:
		switch {
		case typeName == "Join":
			r.resolveIntrinsicArg(lit, v, "Fn::Join", "Values", 1)
			return v
		case typeName == "SubWithMap":
			r.resolveIntrinsicArg(lit, v, "Fn::Sub", "Variables", 1)
			return v
		case intrinsicTypes[typeName]:
			return v
		}

		for _, elt := range lit.Elts {
			kv, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				continue
			}
			key := jsonKey(kv.Key)
			if field, ok := v[key]; ok {
				v[key] = r.resolve(kv.Value, field)
			}
		}
		return v

	case []any:
		for i, elt := range lit.Elts {
			if i >= len(v) {
				break
			}
			if _, ok := elt.(*ast.KeyValueExpr); ok {
				continue
			}
			v[i] = r.resolve(elt, v[i])
		}
		return v
	}

	return value
}

// resolveIntrinsicArg resolves one argument of an intrinsic serialized as
// {"Fn::X": [arg0, arg1, ...]} against the Go field that produced it.
func (r *resolver) resolveIntrinsicArg(lit *ast.CompositeLit, v map[string]any, fn, field string, index int) {
	args, ok := v[fn].([]any)
	if !ok || index >= len(args) {
		return
	}

	for i, elt := range lit.Elts {
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			if jsonKey(kv.Key) == field {
				args[index] = r.resolve(kv.Value, args[index])
			}
			continue
		}
		if i == index {
			args[index] = r.resolve(elt, args[index])
		}
	}
}

// compositeTypeName returns the bare type name of a composite literal.
func compositeTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return t.Sel.Name
	}
	return ""
}

// jsonKey maps a struct field or map key to its JSON key. Fields that clash
// with Go keywords or methods carry a trailing underscore (Type_).
func jsonKey(key ast.Expr) string {
	switch k := key.(type) {
	case *ast.Ident:
		return strings.TrimSuffix(k.Name, "_")
	case *ast.BasicLit:
		return strings.Trim(k.Value, "\"`")
	}
	return ""
}
