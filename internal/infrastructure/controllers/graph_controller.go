package controllers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/graph"
	"github.com/monphare/monphare/internal/domain/hclextract"
	"github.com/monphare/monphare/internal/infrastructure/reporters"
)

// GraphController handles the "graph" subcommand: build and export the
// module/provider dependency graph for a set of local working trees.
type GraphController struct{}

// NewGraphController creates a new GraphController.
func NewGraphController() *GraphController {
	return &GraphController{}
}

// GetBind returns the Cobra command metadata for the graph controller.
func (c *GraphController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "graph <paths...>",
		Short: "Export the module/provider dependency graph",
		Long: `Extract the module and provider declarations under one or more local
paths and export the resulting dependency graph as DOT, JSON, or Mermaid.`,
	}
}

func bindGraphFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "dot", "Graph format: dot, json, or mermaid")
	cmd.Flags().String("output", "", "Write the graph to this file instead of standard output")
	cmd.Flags().Bool("modules-only", false, "Only include module nodes and edges")
	cmd.Flags().Bool("providers-only", false, "Only include provider nodes and edges")
	cmd.Flags().String("filter", "", "Only include nodes whose canonical source contains this substring")
}

// Execute builds the combined graph across every given path and renders it.
func (c *GraphController) Execute(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &entities.InputError{Message: "graph requires at least one path"}
	}

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	modulesOnly, _ := cmd.Flags().GetBool("modules-only")
	providersOnly, _ := cmd.Flags().GetBool("providers-only")
	filter, _ := cmd.Flags().GetString("filter")

	if modulesOnly && providersOnly {
		return &entities.InputError{Message: "--modules-only and --providers-only are mutually exclusive"}
	}

	combined := entities.Graph{}
	for _, path := range args {
		repo := entities.Repository{Label: path, Root: path}
		refs, err := hclextract.Extract(repo, hclextract.Options{})
		if err != nil {
			return fmt.Errorf("extracting %s: %w", path, err)
		}
		built := graph.Build(refs)
		combined.Nodes = append(combined.Nodes, built.Nodes...)
		combined.Edges = append(combined.Edges, built.Edges...)
	}

	filtered := filterGraph(combined, modulesOnly, providersOnly, filter)

	out, closeOut, err := openOutput(output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()

	return reporters.RenderGraph(out, filtered, reporters.GraphFormat(format))
}

func filterGraph(g entities.Graph, modulesOnly, providersOnly bool, filter string) entities.Graph {
	kept := map[entities.NodeKind]bool{entities.NodeModule: true, entities.NodeProvider: true}
	if modulesOnly {
		kept[entities.NodeProvider] = false
	}
	if providersOnly {
		kept[entities.NodeModule] = false
	}

	nodeAllowed := func(n entities.GraphNode) bool {
		if !kept[n.Kind] {
			return false
		}
		return filter == "" || strings.Contains(n.CanonicalSource, filter)
	}

	var out entities.Graph
	for _, n := range g.Nodes {
		if nodeAllowed(n) {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if nodeAllowed(e.From) && nodeAllowed(e.To) {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}
