// Package graph renders a stack's resource dependencies as DOT or Mermaid.
package graph

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/discover"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// ParseFormat validates a format name. Empty selects DOT.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatDOT:
		return FormatDOT, nil
	case FormatMermaid:
		return FormatMermaid, nil
	}
	return "", fmt.Errorf("unknown graph format %q (want dot or mermaid)", s)
}

// Generator creates dependency graphs from discovered declarations.
type Generator struct {
	// IncludeParameters adds template parameters and their edges.
	IncludeParameters bool

	// IncludeOutputs adds outputs and the resources they read.
	IncludeOutputs bool

	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByType groups resources by AWS service.
	ClusterByType bool
}

// Generate creates a dependency graph and writes it to w.
func (g *Generator) Generate(result *discover.Result, w io.Writer) error {
	graph := g.buildGraph(result)

	var output string
	if g.Format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := io.WriteString(w, output)
	return err
}

// GenerateString returns the graph as a string.
func (g *Generator) GenerateString(result *discover.Result) (string, error) {
	var sb strings.Builder
	if err := g.Generate(result, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(result *discover.Result) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	names := sortedKeys(result.Resources)
	nodes := make(map[string]dot.Node)

	if g.ClusterByType {
		byService := make(map[string][]string)
		for _, name := range names {
			service := serviceOf(result.Resources[name].Type)
			byService[service] = append(byService[service], name)
		}
		for _, service := range sortedKeys(byService) {
			members := byService[service]
			parent := graph
			if len(members) > 1 {
				parent = graph.Subgraph("cluster_"+service, dot.ClusterOption{})
				parent.Attr("label", service)
				parent.Attr("style", "rounded")
				parent.Attr("bgcolor", "lightyellow")
			}
			for _, name := range members {
				nodes[name] = resourceNode(parent, name, result.Resources[name].Type)
			}
		}
	} else {
		for _, name := range names {
			nodes[name] = resourceNode(graph, name, result.Resources[name].Type)
		}
	}

	if g.IncludeParameters {
		for _, name := range sortedKeys(result.Parameters) {
			n := graph.Node(name)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(name)
			nodes[name] = n
		}
	}

	for _, name := range names {
		g.addEdges(graph, result, name, nodes)
	}

	if g.IncludeOutputs {
		for _, name := range sortedKeys(result.Outputs) {
			n := graph.Node(name)
			n.Attr("shape", "note")
			n.Label(name)
			nodes[name] = n
			g.addEdges(graph, result, name, nodes)
		}
	}

	return graph
}

// addEdges links a declaration to the resources, and optionally the
// parameters, it depends on. Attribute references are drawn blue.
func (g *Generator) addEdges(graph *dot.Graph, result *discover.Result, name string, nodes map[string]dot.Node) {
	attrTargets := make(map[string]bool)
	for _, usage := range result.ResolveAttrRefs(name) {
		attrTargets[usage.ResourceName] = true
	}

	from := nodes[name]
	for _, dep := range result.ResolveDependencies(name) {
		e := graph.Edge(from, nodes[dep])
		if attrTargets[dep] {
			e.Attr("color", "blue")
		}
	}

	if g.IncludeParameters {
		for _, param := range parameterDeps(result, name) {
			e := graph.Edge(from, nodes[param])
			e.Attr("style", "dashed")
		}
	}
}

// parameterDeps returns the parameters a declaration reads, following
// property vars but not other resources.
func parameterDeps(result *discover.Result, name string) []string {
	visited := map[string]bool{name: true}
	var params []string

	var walk func(string)
	walk = func(n string) {
		for _, dep := range result.Deps[n] {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			if _, ok := result.Parameters[dep]; ok {
				params = append(params, dep)
				continue
			}
			if _, ok := result.Resources[dep]; ok {
				continue
			}
			walk(dep)
		}
	}
	walk(name)

	sort.Strings(params)
	return params
}

func resourceNode(graph *dot.Graph, name, goType string) dot.Node {
	n := graph.Node(name)
	n.Label(name + "\\n[" + cfnType(goType) + "]")
	return n
}

// serviceOf maps lambda.Function to AWS::Lambda.
func serviceOf(goType string) string {
	pkg, _, _ := strings.Cut(goType, ".")
	if prefix := discover.ServicePrefix(pkg); prefix != "" {
		return prefix
	}
	return "Other"
}

// cfnType maps lambda.Function to AWS::Lambda::Function.
func cfnType(goType string) string {
	pkg, name, ok := strings.Cut(goType, ".")
	if prefix := discover.ServicePrefix(pkg); ok && prefix != "" {
		return prefix + "::" + name
	}
	return goType
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
