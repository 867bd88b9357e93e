package checks

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/notdodo/arner"

	cdk "github.com/VPPATEL-SPS/aws-cdk-examples"
)

// Document is a template decoded to generic JSON for querying.
type Document struct {
	Kind      string
	root      map[string]any
	resources map[string]resource
	queries   map[string]*gojq.Query
}

type resource struct {
	Name  string
	Type  string
	Props map[string]any
}

// NewDocument decodes a template. kind is the registry stack kind and may be
// empty for templates that did not come from a registered stack.
func NewDocument(t *cdk.Template, kind string) (*Document, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return newDocument(root, kind), nil
}

func newDocument(root map[string]any, kind string) *Document {
	doc := &Document{
		Kind:      kind,
		root:      root,
		resources: make(map[string]resource),
		queries:   make(map[string]*gojq.Query),
	}
	resources, _ := root["Resources"].(map[string]any)
	for name, raw := range resources {
		def, _ := raw.(map[string]any)
		typ, _ := def["Type"].(string)
		props, _ := def["Properties"].(map[string]any)
		doc.resources[name] = resource{Name: name, Type: typ, Props: props}
	}
	return doc
}

// Query runs a jq program against the template and returns every result.
func (d *Document) Query(src string) ([]any, error) {
	query, ok := d.queries[src]
	if !ok {
		var err error
		query, err = gojq.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parsing query %q: %w", src, err)
		}
		d.queries[src] = query
	}

	var results []any
	iter := query.Run(d.root)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}

// ofType returns the resources of a CloudFormation type sorted by name.
func (d *Document) ofType(typ string) []resource {
	var out []resource
	for _, res := range d.resources {
		if res.Type == typ {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (d *Document) isType(name, typ string) bool {
	res, ok := d.resources[name]
	return ok && res.Type == typ
}

func (d *Document) hasParameter(name string) bool {
	params, _ := d.root["Parameters"].(map[string]any)
	_, ok := params[name]
	return ok
}

// refTarget returns X for {"Ref": X}.
func refTarget(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	name, ok := m["Ref"].(string)
	return name, ok
}

// getAttTarget returns X, Attr for {"Fn::GetAtt": [X, Attr]}.
func getAttTarget(v any) (string, string, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", "", false
	}
	args, ok := m["Fn::GetAtt"].([]any)
	if !ok || len(args) != 2 {
		return "", "", false
	}
	name, ok1 := args[0].(string)
	attr, ok2 := args[1].(string)
	return name, attr, ok1 && ok2
}

// stringValue returns the text of a literal or an Fn::Sub template.
func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case map[string]any:
		if sub, ok := t["Fn::Sub"].(string); ok {
			return sub, true
		}
		if args, ok := t["Fn::Sub"].([]any); ok && len(args) > 0 {
			s, ok := args[0].(string)
			return s, ok
		}
	}
	return "", false
}

// listOf normalizes IAM's "single value or list" fields.
func listOf(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	}
	return []any{v}
}

func stringsOf(v any) []string {
	var out []string
	for _, item := range listOf(v) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// statements returns the IAM statements of a policy document.
func statements(doc any) []map[string]any {
	m, _ := doc.(map[string]any)
	var out []map[string]any
	for _, raw := range listOf(m["Statement"]) {
		if stmt, ok := raw.(map[string]any); ok {
			out = append(out, stmt)
		}
	}
	return out
}

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// substitutions returns the names referenced by ${...} in a Sub template.
// Literal ${!...} escapes are skipped.
func substitutions(s string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(s, -1) {
		if strings.HasPrefix(m[1], "!") {
			continue
		}
		names = append(names, m[1])
	}
	return names
}

// arnParts holds the fields of an ARN that may contain ${} placeholders.
type arnParts struct {
	Service  string
	Region   string
	Account  string
	Resource string
}

var arnSamples = map[string]string{
	"AWS::Partition": "aws",
	"AWS::Region":    "us-east-1",
	"AWS::AccountId": "123456789012",
	"AWS::URLSuffix": "amazonaws.com",
}

// parseARN parses an ARN template. Fields keep their placeholders; the
// flattened form with sample values is what arner validates.
func parseARN(s string) (arnParts, error) {
	fields := splitARN(s)
	if len(fields) < 6 || fields[0] != "arn" {
		return arnParts{}, fmt.Errorf("%q is not an ARN", s)
	}
	flat := placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := m[2 : len(m)-1]
		if sample, ok := arnSamples[name]; ok {
			return sample
		}
		return strings.ReplaceAll(name, "::", "-")
	})
	parsed, err := arner.ParseARN(flat)
	if err != nil {
		return arnParts{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	if parsed.Resource == "" {
		return arnParts{}, fmt.Errorf("%q has no resource", s)
	}
	return arnParts{Service: fields[2], Region: fields[3], Account: fields[4], Resource: fields[5]}, nil
}

// splitARN splits an ARN template into at most six fields. Colons inside
// ${...} placeholders do not separate fields.
func splitARN(s string) []string {
	var fields []string
	depth, start := 0, 0
	for i := 0; i < len(s) && len(fields) < 5; i++ {
		switch s[i] {
		case '{':
			if i > 0 && s[i-1] == '$' {
				depth++
			}
		case '}':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				fields = append(fields, s[start:i])
				start = i + 1
			}
		}
	}
	return append(fields, s[start:])
}
