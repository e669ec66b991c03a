package reporters

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/monphare/monphare/internal/domain/entities"
)

// GraphFormat is the closed set of `graph` subcommand output formats.
type GraphFormat string

const (
	GraphFormatDOT     GraphFormat = "dot"
	GraphFormatJSON    GraphFormat = "json"
	GraphFormatMermaid GraphFormat = "mermaid"
)

// RenderGraph writes g to w in the given format, after filter has already
// narrowed g down to the nodes/edges the `--modules-only`, `--providers-only`,
// and `--filter` flags select.
func RenderGraph(w io.Writer, g entities.Graph, format GraphFormat) error {
	switch format {
	case GraphFormatDOT, "":
		return renderGraphDOT(w, g)
	case GraphFormatJSON:
		return renderGraphJSON(w, g)
	case GraphFormatMermaid:
		return renderGraphMermaid(w, g)
	default:
		return &entities.InputError{Message: fmt.Sprintf("unknown graph format %q", format)}
	}
}

func nodeID(n entities.GraphNode) string {
	prefix := "module"
	if n.Kind == entities.NodeProvider {
		prefix = "provider"
	}
	return fmt.Sprintf("%s_%s", prefix, sanitizeID(n.CanonicalSource))
}

func sanitizeID(s string) string {
	replacer := strings.NewReplacer("/", "_", ".", "_", ":", "_", "-", "_", " ", "_")
	return replacer.Replace(s)
}

func renderGraphDOT(w io.Writer, g entities.Graph) error {
	fmt.Fprintln(w, "digraph monphare {")
	for _, n := range g.Nodes {
		shape := "box"
		if n.Kind == entities.NodeProvider {
			shape = "ellipse"
		}
		fmt.Fprintf(w, "  %s [label=%q shape=%s];\n", nodeID(n), n.CanonicalSource, shape)
	}
	for _, e := range g.Edges {
		style := "solid"
		if e.Kind == entities.EdgeRequiresProvider {
			style = "dashed"
		}
		fmt.Fprintf(w, "  %s -> %s [label=%q style=%s];\n", nodeID(e.From), nodeID(e.To), e.Kind, style)
	}
	fmt.Fprintln(w, "}")
	return nil
}

func renderGraphJSON(w io.Writer, g entities.Graph) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(g)
}

func renderGraphMermaid(w io.Writer, g entities.Graph) error {
	fmt.Fprintln(w, "graph LR")
	for _, n := range g.Nodes {
		open, close := "[", "]"
		if n.Kind == entities.NodeProvider {
			open, close = "((", "))"
		}
		fmt.Fprintf(w, "  %s%s%q%s\n", nodeID(n), open, n.CanonicalSource, close)
	}
	for _, e := range g.Edges {
		arrow := "-->"
		if e.Kind == entities.EdgeRequiresProvider {
			arrow = "-.->"
		}
		fmt.Fprintf(w, "  %s %s|%s| %s\n", nodeID(e.From), arrow, e.Kind, nodeID(e.To))
	}
	return nil
}
