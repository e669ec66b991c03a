// Package graph builds the dependency graph of modules and providers
// discovered by the extractor.
//
// Grounded on the module/provider dependency-edge shape described in
// other_examples/MatthewJohn-terrareg's graph service naming conventions
// (a node keyed by canonical source and kind, an edge carrying a closed kind
// enum), adapted to MonPhare's own DependsOn/RequiresProvider edge kinds.
package graph

import (
	"fmt"
	"sort"

	"github.com/monphare/monphare/internal/domain/entities"
)

// Build constructs a Graph from one repository's extraction result. For
// every ModuleRef and ProviderRef a node is added, keyed by (kind,
// canonical source); refs that share a canonical source collapse onto one
// node and accumulate locations. RequiresProvider edges are inferred only
// for registry-sourced modules whose implied provider ("hashicorp/<name>")
// was itself pre-declared as a provider node — inference never creates a
// provider node that wasn't already declared. DependsOn edges are added
// only from explicit depends_on markers recorded by the extractor, scoped
// to modules declared in the same file.
func Build(refs entities.ExtractResult) entities.Graph {
	b := &builder{
		moduleNodes:   map[string]*entities.GraphNode{},
		providerNodes: map[string]*entities.GraphNode{},
	}

	for _, ref := range refs.Modules {
		b.addModuleNode(ref)
	}
	for _, ref := range refs.Providers {
		b.addProviderNode(ref)
	}

	b.addRequiresProviderEdges(refs.Modules)
	b.addDependsOnEdges(refs.Modules)

	return b.build()
}

type builder struct {
	moduleOrder   []string
	moduleNodes   map[string]*entities.GraphNode
	providerOrder []string
	providerNodes map[string]*entities.GraphNode
	edges         []entities.GraphEdge
}

func (b *builder) addModuleNode(ref entities.ModuleRef) {
	key := ref.Source.Canonical()
	node, exists := b.moduleNodes[key]
	if !exists {
		node = &entities.GraphNode{Kind: entities.NodeModule, CanonicalSource: key}
		b.moduleNodes[key] = node
		b.moduleOrder = append(b.moduleOrder, key)
	}
	node.Locations = append(node.Locations, ref.Location)
}

func (b *builder) addProviderNode(ref entities.ProviderRef) {
	key := ref.CanonicalSource
	node, exists := b.providerNodes[key]
	if !exists {
		node = &entities.GraphNode{Kind: entities.NodeProvider, CanonicalSource: key}
		b.providerNodes[key] = node
		b.providerOrder = append(b.providerOrder, key)
	}
	node.Locations = append(node.Locations, ref.Location)
}

// addRequiresProviderEdges links a registry-sourced module to the provider
// node "hashicorp/<provider>" implied by its source triplet, but only when
// that provider was already declared via required_providers.
func (b *builder) addRequiresProviderEdges(modules []entities.ModuleRef) {
	for _, ref := range modules {
		if ref.Source.Kind != entities.SourceRegistry {
			continue
		}

		implied := fmt.Sprintf("hashicorp/%s", ref.Source.Provider)
		providerNode, ok := b.providerNodes[implied]
		if !ok {
			continue
		}

		moduleNode := b.moduleNodes[ref.Source.Canonical()]
		b.edges = append(b.edges, entities.GraphEdge{
			From: *moduleNode,
			To:   *providerNode,
			Kind: entities.EdgeRequiresProvider,
		})
	}
}

// addDependsOnEdges connects a module to the modules it names in an
// explicit depends_on, restricted to modules declared in the same file,
// matching by local block name.
func (b *builder) addDependsOnEdges(modules []entities.ModuleRef) {
	byFileAndName := map[string]map[string]entities.ModuleRef{}
	for _, ref := range modules {
		path := ref.Location.Path
		if byFileAndName[path] == nil {
			byFileAndName[path] = map[string]entities.ModuleRef{}
		}
		byFileAndName[path][ref.Name] = ref
	}

	for _, ref := range modules {
		siblings := byFileAndName[ref.Location.Path]
		for _, dependencyName := range ref.DependsOn {
			target, ok := siblings[dependencyName]
			if !ok {
				continue
			}

			fromNode := b.moduleNodes[ref.Source.Canonical()]
			toNode := b.moduleNodes[target.Source.Canonical()]
			if fromNode == nil || toNode == nil {
				continue
			}

			b.edges = append(b.edges, entities.GraphEdge{
				From: *fromNode,
				To:   *toNode,
				Kind: entities.EdgeDependsOn,
			})
		}
	}
}

func (b *builder) build() entities.Graph {
	sort.Strings(b.moduleOrder)
	sort.Strings(b.providerOrder)

	var nodes []entities.GraphNode
	for _, key := range b.moduleOrder {
		nodes = append(nodes, *b.moduleNodes[key])
	}
	for _, key := range b.providerOrder {
		nodes = append(nodes, *b.providerNodes[key])
	}

	return entities.Graph{Nodes: nodes, Edges: b.edges}
}
