package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/infrastructure/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "monphare.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

//nolint:tparallel // subtests use t.Setenv, incompatible with t.Parallel on the parent
func TestLoad(t *testing.T) {
	t.Run("should parse a minimal config file", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
scan:
  max_depth: 5
  continue_on_error: true
policies:
  require_upper_bound: true
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Scan.MaxDepth)
		assert.True(t, cfg.Scan.ContinueOnError)
		assert.True(t, cfg.Policies.RequireUpperBound)
	})

	t.Run("should expand ${VAR} references in string fields", func(t *testing.T) {
		t.Setenv("MONPHARE_TEST_TOKEN", "secret-token")

		// given
		path := writeConfig(t, `
git:
  github_token: "${MONPHARE_TEST_TOKEN}"
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "secret-token", cfg.Git.GithubToken)
	})

	t.Run("should leave unset variable references unexpanded", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
git:
  github_token: "${MONPHARE_DEFINITELY_UNSET}"
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "${MONPHARE_DEFINITELY_UNSET}", cfg.Git.GithubToken)
	})

	t.Run("should reject an unknown severity in severity_overrides", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
policies:
  severity_overrides:
    wildcard-constraint: not-a-severity
`)

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		var configErr *entities.ConfigError
		require.ErrorAs(t, err, &configErr)
	})

	t.Run("should reject an unknown finding code in severity_overrides", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
policies:
  severity_overrides:
    totally-made-up-code: error
`)

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		var configErr *entities.ConfigError
		require.ErrorAs(t, err, &configErr)
	})

	t.Run("should reject a deprecation rule with neither range nor refs", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
deprecations:
  modules:
    hashicorp/consul/aws:
      - reason: "missing both range and refs"
`)

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
	})
}

func TestBuildDeprecationTable(t *testing.T) {
	t.Parallel()

	t.Run("should parse a range rule into a Constraint-kind DeprecationRule", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.DeprecationsConfig{
			Modules: map[string][]config.DeprecationRuleConfig{
				"hashicorp/consul/aws": {
					{Range: "< 2.0.0", Reason: "superseded by v2", Replacement: "hashicorp/consul/aws"},
				},
			},
		}

		// when
		table, err := config.BuildDeprecationTable(cfg)

		// then
		require.NoError(t, err)
		require.Len(t, table.Modules["hashicorp/consul/aws"], 1)
		assert.Equal(t, entities.MatchConstraint, table.Modules["hashicorp/consul/aws"][0].MatchKind)
	})

	t.Run("should parse a refs rule into a GitRef-kind DeprecationRule", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.DeprecationsConfig{
			Modules: map[string][]config.DeprecationRuleConfig{
				"git::https://example.com/org/module.git": {
					{Refs: []string{"v1.0.0"}, Reason: "yanked tag"},
				},
			},
		}

		// when
		table, err := config.BuildDeprecationTable(cfg)

		// then
		require.NoError(t, err)
		rules := table.Modules["git::https://example.com/org/module.git"]
		require.Len(t, rules, 1)
		assert.Equal(t, entities.MatchGitRef, rules[0].MatchKind)
		assert.Equal(t, []string{"v1.0.0"}, rules[0].MatchRefs)
	})
}
