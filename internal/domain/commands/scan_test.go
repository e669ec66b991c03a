package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monphare/monphare/internal/domain/commands"
	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/hclextract"
)

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestScanCommand_Execute(t *testing.T) {
	t.Parallel()

	t.Run("should report clean when every module pins a bounded version", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, root, "main.tf", `
module "vpc" {
  source  = "terraform-aws-modules/vpc/aws"
  version = "~> 5.0"
}
`)
		cmd := commands.NewScanCommand()

		// when
		res, err := cmd.Execute(context.Background(), commands.ScanRequest{
			Repositories: []entities.Repository{{Label: "infra", Root: root}},
			Policies:     entities.DefaultPolicies(),
			Deprecations: entities.EmptyDeprecationTable(),
		})

		// then
		require.NoError(t, err)
		assert.True(t, res.Status.Pass)
		assert.Equal(t, entities.ExitClean, res.Status.ExitCode)
	})

	t.Run("should surface a missing-version error", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, root, "main.tf", `
module "vpc" {
  source = "terraform-aws-modules/vpc/aws"
}
`)
		cmd := commands.NewScanCommand()

		// when
		res, err := cmd.Execute(context.Background(), commands.ScanRequest{
			Repositories: []entities.Repository{{Label: "infra", Root: root}},
			Policies:     entities.DefaultPolicies(),
			Deprecations: entities.EmptyDeprecationTable(),
		})

		// then
		require.NoError(t, err)
		assert.False(t, res.Status.Pass)
		assert.Equal(t, entities.ExitErrors, res.Status.ExitCode)
		require.Len(t, res.Findings, 1)
		require.Len(t, res.Findings[0].Files, 1)
		assert.Equal(t, entities.CodeMissingVersion, res.Findings[0].Files[0].Findings[0].Code)
	})

	t.Run("should record an unparseable file as a parse-issue warning", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, root, "garbage.tf", `{{{ not hcl at all ///`)
		cmd := commands.NewScanCommand()

		// when
		res, err := cmd.Execute(context.Background(), commands.ScanRequest{
			Repositories:   []entities.Repository{{Label: "infra", Root: root}},
			ExtractOptions: hclextract.Options{ContinueOnError: true},
			Policies:       entities.DefaultPolicies(),
			Deprecations:   entities.EmptyDeprecationTable(),
		})

		// then
		require.NoError(t, err)
		require.Len(t, res.Findings, 1)
		require.Len(t, res.Findings[0].Files, 1)
		assert.Equal(t, entities.CodeParseIssue, res.Findings[0].Files[0].Findings[0].Code)
	})

	t.Run("should scan multiple repositories concurrently and sort them by label", func(t *testing.T) {
		t.Parallel()

		// given
		rootZ := t.TempDir()
		writeFile(t, rootZ, "main.tf", `module "a" { source = "./a" }`)
		rootA := t.TempDir()
		writeFile(t, rootA, "main.tf", `module "a" { source = "./a" }`)

		cmd := commands.NewScanCommand()

		// when
		res, err := cmd.Execute(context.Background(), commands.ScanRequest{
			Repositories: []entities.Repository{
				{Label: "zeta", Root: rootZ},
				{Label: "alpha", Root: rootA},
			},
			Policies:     entities.DefaultPolicies(),
			Deprecations: entities.EmptyDeprecationTable(),
		})

		// then
		require.NoError(t, err)
		require.Len(t, res.Findings, 2)
		assert.Equal(t, "alpha", res.Findings[0].Repository)
		assert.Equal(t, "zeta", res.Findings[1].Repository)
	})

	t.Run("should skip a repository that fails to extract when continue-on-error is set", func(t *testing.T) {
		t.Parallel()

		// given
		cmd := commands.NewScanCommand()

		// when
		res, err := cmd.Execute(context.Background(), commands.ScanRequest{
			Repositories: []entities.Repository{
				{Label: "missing", Root: filepath.Join(t.TempDir(), "does-not-exist")},
			},
			ExtractOptions: hclextract.Options{ContinueOnError: true},
			Policies:       entities.DefaultPolicies(),
			Deprecations:   entities.EmptyDeprecationTable(),
		})

		// then
		require.NoError(t, err)
		assert.Empty(t, res.Findings)
	})
}
