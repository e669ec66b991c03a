package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monphare/monphare/internal/domain/analyzer"
	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/version"
)

func mustConstraint(t *testing.T, raw string) *entities.Constraint {
	t.Helper()
	c, err := version.Parse(raw)
	require.NoError(t, err)
	return c
}

func moduleRef(source entities.ModuleSource, c *entities.Constraint) entities.ModuleRef {
	return entities.ModuleRef{
		Name:       "example",
		Source:     source,
		Constraint: c,
		Location:   entities.Location{Path: "main.tf", Line: 1},
	}
}

func findingCodes(findings []entities.Finding) []entities.Code {
	codes := make([]entities.Code, 0, len(findings))
	for _, f := range findings {
		codes = append(codes, f.Code)
	}
	return codes
}

func TestAnalyze_MissingVersion(t *testing.T) {
	t.Parallel()

	t.Run("should report an error when no constraint was declared and the policy requires one", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "consul", Provider: "aws"}, nil),
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		require.Len(t, findings, 1)
		assert.Equal(t, entities.CodeMissingVersion, findings[0].Code)
		assert.Equal(t, entities.SeverityError, findings[0].Severity)
	})

	t.Run("should demote missing-version to a warning when the policy does not require a constraint", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "consul", Provider: "aws"}, nil),
			},
		}
		policies := entities.DefaultPolicies()
		policies.RequireVersionConstraint = false

		// when
		findings := analyzer.Analyze(refs, policies, entities.EmptyDeprecationTable())

		// then
		require.Len(t, findings, 1)
		assert.Equal(t, entities.SeverityWarning, findings[0].Severity)
	})

	t.Run("should exempt local module sources from every version check", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(entities.ModuleSource{Kind: entities.SourceLocal, LocalPath: "./modules/vpc"}, nil),
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		assert.Empty(t, findings)
	})
}

func TestAnalyze_ConstraintChecks(t *testing.T) {
	t.Parallel()

	registrySource := entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "consul", Provider: "aws"}

	t.Run("should report unparseable-constraint and stop the remaining checks", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(registrySource, &entities.Constraint{Raw: "<interpolated>"}),
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		require.Len(t, findings, 1)
		assert.Equal(t, entities.CodeUnparseableConstraint, findings[0].Code)
	})

	t.Run("should report wildcard-constraint for a bare star", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(registrySource, mustConstraint(t, "*")),
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		assert.Contains(t, findingCodes(findings), entities.CodeWildcardConstraint)
	})

	t.Run("should report exactly broad-constraint for an explicit >= 0.0.0 lower bound", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(registrySource, mustConstraint(t, ">= 0.0.0")),
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		assert.Equal(t, []entities.Code{entities.CodeBroadConstraint}, findingCodes(findings))
	})

	t.Run("should report neither broad-constraint nor no-upper-bound once the range is capped", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(registrySource, mustConstraint(t, ">= 0.0.0, < 1.0")),
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		assert.NotContains(t, findingCodes(findings), entities.CodeBroadConstraint)
		assert.NotContains(t, findingCodes(findings), entities.CodeNoUpperBound)
	})

	t.Run("should report no-upper-bound as a warning by default", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(registrySource, mustConstraint(t, ">= 1.0.0")),
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		require.Contains(t, findingCodes(findings), entities.CodeNoUpperBound)
		for _, f := range findings {
			if f.Code == entities.CodeNoUpperBound {
				assert.Equal(t, entities.SeverityWarning, f.Severity)
			}
		}
	})

	t.Run("should promote no-upper-bound to an error when the policy requires an upper bound", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(registrySource, mustConstraint(t, ">= 1.0.0")),
			},
		}
		policies := entities.DefaultPolicies()
		policies.RequireUpperBound = true

		// when
		findings := analyzer.Analyze(refs, policies, entities.EmptyDeprecationTable())

		// then
		for _, f := range findings {
			if f.Code == entities.CodeNoUpperBound {
				assert.Equal(t, entities.SeverityError, f.Severity)
			}
		}
	})

	t.Run("should not report no-upper-bound for a single pessimistic predicate", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(registrySource, mustConstraint(t, "~> 1.2")),
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		assert.NotContains(t, findingCodes(findings), entities.CodeNoUpperBound)
	})

	t.Run("should report exact-version for a bare equality pin", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(registrySource, mustConstraint(t, "1.2.3")),
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		assert.Contains(t, findingCodes(findings), entities.CodeExactVersion)
	})

	t.Run("should report prerelease-version for a pre-release pin", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(registrySource, mustConstraint(t, "1.2.3-beta1")),
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		assert.Contains(t, findingCodes(findings), entities.CodePrereleaseVersion)
	})
}

func TestAnalyze_Policies(t *testing.T) {
	t.Parallel()

	t.Run("should report disallowed-provider when the provider is not in the allow-list", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Providers: []entities.ProviderRef{
				{Alias: "aws", CanonicalSource: "hashicorp/aws", Constraint: mustConstraint(t, ">= 5.0, < 6.0"), Location: entities.Location{Path: "versions.tf", Line: 2}},
			},
		}
		policies := entities.DefaultPolicies()
		policies.AllowedProviders = []string{"hashicorp/azurerm"}

		// when
		findings := analyzer.Analyze(refs, policies, entities.EmptyDeprecationTable())

		// then
		assert.Contains(t, findingCodes(findings), entities.CodeDisallowedProvider)
	})

	t.Run("should not report disallowed-provider when the allow-list is empty", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Providers: []entities.ProviderRef{
				{Alias: "aws", CanonicalSource: "hashicorp/aws", Constraint: mustConstraint(t, ">= 5.0, < 6.0"), Location: entities.Location{Path: "versions.tf", Line: 2}},
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		assert.NotContains(t, findingCodes(findings), entities.CodeDisallowedProvider)
	})

	t.Run("should report blocked-module when the source matches a blocked glob", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(entities.ModuleSource{Kind: entities.SourceGit, GitURL: "git::https://example.com/legacy/module.git"}, mustConstraint(t, ">= 1.0, < 2.0")),
			},
		}
		policies := entities.DefaultPolicies()
		policies.BlockedModules = []string{"git::https://example.com/legacy/**"}

		// when
		findings := analyzer.Analyze(refs, policies, entities.EmptyDeprecationTable())

		// then
		assert.Contains(t, findingCodes(findings), entities.CodeBlockedModule)
	})
}

func TestAnalyze_Deprecations(t *testing.T) {
	t.Parallel()

	t.Run("should report deprecated-module when the declared lower bound falls in the deprecated range", func(t *testing.T) {
		t.Parallel()

		// given
		source := entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "consul", Provider: "aws"}
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(source, mustConstraint(t, ">= 1.0.0, < 2.0.0")),
			},
		}
		deprecations := entities.EmptyDeprecationTable()
		deprecations.Modules[source.Canonical()] = []entities.DeprecationRule{
			{
				MatchKind:   entities.MatchConstraint,
				MatchRange:  entities.Range{Upper: entities.Bound{Kind: entities.BoundExclusive, Value: entities.ParseVersion("2.0.0")}},
				Reason:      "superseded by hashicorp/consul/aws v2",
				Replacement: "hashicorp/consul/aws",
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), deprecations)

		// then
		require.Contains(t, findingCodes(findings), entities.CodeDeprecatedModule)
	})

	t.Run("should not report deprecated-module when the declared lower bound falls outside the deprecated range", func(t *testing.T) {
		t.Parallel()

		// given
		source := entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "consul", Provider: "aws"}
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(source, mustConstraint(t, ">= 3.0.0, < 4.0.0")),
			},
		}
		deprecations := entities.EmptyDeprecationTable()
		deprecations.Modules[source.Canonical()] = []entities.DeprecationRule{
			{
				MatchKind:  entities.MatchConstraint,
				MatchRange: entities.Range{Upper: entities.Bound{Kind: entities.BoundExclusive, Value: entities.ParseVersion("2.0.0")}},
				Reason:     "superseded",
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), deprecations)

		// then
		assert.NotContains(t, findingCodes(findings), entities.CodeDeprecatedModule)
	})

	t.Run("should match a git-sourced deprecation rule by exact ref", func(t *testing.T) {
		t.Parallel()

		// given
		source := entities.ModuleSource{Kind: entities.SourceGit, GitURL: "git::https://example.com/org/module.git", GitRef: "v1.0.0"}
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(source, nil),
			},
		}
		policies := entities.DefaultPolicies()
		policies.RequireVersionConstraint = false
		deprecations := entities.EmptyDeprecationTable()
		deprecations.Modules[source.Canonical()] = []entities.DeprecationRule{
			{MatchKind: entities.MatchGitRef, MatchRefs: []string{"v1.0.0"}, Reason: "pinned to a yanked tag"},
		}

		// when
		findings := analyzer.Analyze(refs, policies, deprecations)

		// then
		assert.Contains(t, findingCodes(findings), entities.CodeDeprecatedModule)
	})
}

func TestAnalyze_SeverityOverrides(t *testing.T) {
	t.Parallel()

	t.Run("should apply a configured severity override over the built-in default", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				moduleRef(entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "consul", Provider: "aws"}, mustConstraint(t, "*")),
			},
		}
		policies := entities.DefaultPolicies()
		policies.SeverityOverrides[entities.CodeWildcardConstraint] = entities.SeverityCritical

		// when
		findings := analyzer.Analyze(refs, policies, entities.EmptyDeprecationTable())

		// then
		require.Contains(t, findingCodes(findings), entities.CodeWildcardConstraint)
		for _, f := range findings {
			if f.Code == entities.CodeWildcardConstraint {
				assert.Equal(t, entities.SeverityCritical, f.Severity)
			}
		}
	})
}

func TestAnalyze_Ordering(t *testing.T) {
	t.Parallel()

	t.Run("should order findings by path then line then code", func(t *testing.T) {
		t.Parallel()

		// given
		refs := entities.ExtractResult{
			Modules: []entities.ModuleRef{
				{
					Name:     "second",
					Source:   entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "vpc", Provider: "aws"},
					Location: entities.Location{Path: "b.tf", Line: 1},
				},
				{
					Name:     "first",
					Source:   entities.ModuleSource{Kind: entities.SourceRegistry, Namespace: "hashicorp", Name: "consul", Provider: "aws"},
					Location: entities.Location{Path: "a.tf", Line: 5},
				},
			},
		}

		// when
		findings := analyzer.Analyze(refs, entities.DefaultPolicies(), entities.EmptyDeprecationTable())

		// then
		require.Len(t, findings, 2)
		assert.Equal(t, "a.tf", findings[0].Location.Path)
		assert.Equal(t, "b.tf", findings[1].Location.Path)
	})
}
