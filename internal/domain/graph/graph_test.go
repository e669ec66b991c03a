package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/graph"
)

func TestBuild_Nodes(t *testing.T) {
	t.Parallel()

	t.Run("should collapse refs with the same canonical source onto one node", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				{Name: "a", Source: entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "consul", Provider: "aws"}, Location: entities.Location{Path: "a.tf", Line: 1}},
				{Name: "b", Source: entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "consul", Provider: "aws"}, Location: entities.Location{Path: "b.tf", Line: 3}},
			},
		}

		// when
		g := graph.Build(refs)

		// then
		require.Len(t, g.Nodes, 1)
		assert.Equal(t, "hashicorp/consul/aws", g.Nodes[0].CanonicalSource)
		assert.Len(t, g.Nodes[0].Locations, 2)
	})
}

func TestBuild_RequiresProviderEdges(t *testing.T) {
	t.Parallel()

	t.Run("should link a registry module to a pre-declared provider", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				{Name: "net", Source: entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "vpc", Provider: "aws"}, Location: entities.Location{Path: "a.tf", Line: 1}},
			},
			Providers: []entities.ProviderRef{
				{Alias: "aws", CanonicalSource: "hashicorp/aws", Location: entities.Location{Path: "versions.tf", Line: 1}},
			},
		}

		// when
		g := graph.Build(refs)

		// then
		require.Len(t, g.Edges, 1)
		assert.Equal(t, entities.EdgeRequiresProvider, g.Edges[0].Kind)
		assert.Equal(t, "hashicorp/aws", g.Edges[0].To.CanonicalSource)
	})

	t.Run("should not create a provider node from inference alone", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				{Name: "net", Source: entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "vpc", Provider: "aws"}, Location: entities.Location{Path: "a.tf", Line: 1}},
			},
		}

		// when
		g := graph.Build(refs)

		// then
		assert.Empty(t, g.Edges)
		assert.Empty(t, g.Providers())
	})
}

func TestBuild_DependsOnEdges(t *testing.T) {
	t.Parallel()

	t.Run("should link modules sharing an explicit depends_on in the same file", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				{
					Name:      "network",
					Source:    entities.ModuleSource{Kind: entities.SourceLocal, LocalPath: "modules/network"},
					Location:  entities.Location{Path: "main.tf", Line: 1},
				},
				{
					Name:      "compute",
					Source:    entities.ModuleSource{Kind: entities.SourceLocal, LocalPath: "modules/compute"},
					DependsOn: []string{"network"},
					Location:  entities.Location{Path: "main.tf", Line: 6},
				},
			},
		}

		// when
		g := graph.Build(refs)

		// then
		require.Len(t, g.Edges, 1)
		assert.Equal(t, entities.EdgeDependsOn, g.Edges[0].Kind)
		assert.Equal(t, "modules/compute", g.Edges[0].From.CanonicalSource)
		assert.Equal(t, "modules/network", g.Edges[0].To.CanonicalSource)
	})

	t.Run("should not link depends_on across different files", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				{Name: "network", Source: entities.ModuleSource{Kind: entities.SourceLocal, LocalPath: "modules/network"}, Location: entities.Location{Path: "a.tf", Line: 1}},
				{Name: "compute", Source: entities.ModuleSource{Kind: entities.SourceLocal, LocalPath: "modules/compute"}, DependsOn: []string{"network"}, Location: entities.Location{Path: "b.tf", Line: 1}},
			},
		}

		// when
		g := graph.Build(refs)

		// then
		assert.Empty(t, g.Edges)
	})
}

func TestGraph_Filters(t *testing.T) {
	t.Parallel()

	t.Run("should separate modules-only and providers-only views", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules:   []entities.ModuleRef{{Name: "a", Source: entities.ModuleSource{Kind: entities.SourceLocal, LocalPath: "./a"}, Location: entities.Location{Path: "a.tf", Line: 1}}},
			Providers: []entities.ProviderRef{{Alias: "aws", CanonicalSource: "hashicorp/aws", Location: entities.Location{Path: "a.tf", Line: 1}}},
		}

		// when
		g := graph.Build(refs)

		// then
		require.Len(t, g.Modules(), 1)
		require.Len(t, g.Providers(), 1)
		assert.Equal(t, entities.NodeModule, g.Modules()[0].Kind)
		assert.Equal(t, entities.NodeProvider, g.Providers()[0].Kind)
	})
}
