package controllers

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/monphare/monphare/internal/domain/commands"
	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/hclextract"
	"github.com/monphare/monphare/internal/infrastructure/reporters"
	"github.com/monphare/monphare/internal/infrastructure/vcs"
)

// toolVersion is overridden at build time via -ldflags; "dev" otherwise.
var toolVersion = "dev"

// ScanController handles the "scan" subcommand: discover repositories,
// extract and analyze their Terraform/OpenTofu sources, and render the
// combined report.
type ScanController struct{}

// NewScanController creates a new ScanController.
func NewScanController() *ScanController {
	return &ScanController{}
}

// GetBind returns the Cobra command metadata for the scan controller.
func (c *ScanController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "scan [paths...]",
		Short: "Audit Terraform/OpenTofu module and provider version pinning",
		Long: `Discover one or more repositories, extract their module, provider, and
runtime version declarations, and report any missing or unsafe version
constraints against the configured policies and deprecation tables.

Repositories are selected by local paths, explicit --repo URLs, or a single
--github/--gitlab/--ado/--bitbucket organization flag.`,
	}
}

func bindScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("repo", nil, "Remote repository URL (repeatable)")
	cmd.Flags().String("github", "", "GitHub organization to scan")
	cmd.Flags().String("gitlab", "", "GitLab group to scan")
	cmd.Flags().String("ado", "", "Azure DevOps organization[/project] to scan")
	cmd.Flags().String("bitbucket", "", "Bitbucket workspace to scan")
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt before cloning a discovered organization")
	cmd.Flags().String("format", "text", "Report format: text, json, or html")
	cmd.Flags().String("output", "", "Write the report to this file instead of standard output")
	cmd.Flags().Bool("strict", false, "Exit non-zero when any warning is found, not only errors")
	cmd.Flags().Bool("continue-on-error", false, "Skip a repository or file that fails to extract instead of aborting")
	cmd.Flags().Int("max-depth", 0, "Maximum directory depth to walk (0 means unlimited)")
	cmd.Flags().StringSlice("exclude", nil, "Glob pattern of files to skip (repeatable)")
	cmd.Flags().String("branch", "", "Branch to check out, overriding each repository's default branch")
	cmd.Flags().String("git-token", "", "Auth token for the selected Git provider")
	cmd.Flags().String("config", "", "Path to a configuration file (default: auto-detect)")
}

// Execute runs a full scan and prints its report, returning an
// *entities.ExitError carrying the report's exit code when the scan
// completed with a non-clean exit code (errors, or warnings under --strict).
func (c *ScanController) Execute(cmd *cobra.Command, args []string) error {
	flags, err := parseScanFlags(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}

	registry := vcs.NewProviderRegistry()
	repoCache, err := buildCache(cfg)
	if err != nil {
		return err
	}
	discover := commands.NewDiscoverCommand(registry, repoCache)

	discoverReq := commands.DiscoverRequest{
		Paths:              flags.paths,
		RepoURLs:           flags.repoURLs,
		GitHubOrg:          flags.githubOrg,
		GitLabGroup:        flags.gitlabGroup,
		AzureDevOpsOrg:     flags.adoOrg,
		BitbucketWorkspace: flags.bitbucketWorkspace,
		Branch:             flags.branch,
		Tokens:             resolveTokens(flags.gitToken, gitConfigOf(cfg)),
	}

	if flags.isRemoteOrgMode() && !flags.yes {
		prompt := fmt.Sprintf("About to discover and clone every repository in %q.", flags.orgTarget())
		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
			return nil
		}
	}

	repos, err := discover.Execute(cmd.Context(), discoverReq)
	if err != nil {
		return err
	}

	policies := buildPolicies(cfg)
	deprecations, err := buildDeprecations(cfg)
	if err != nil {
		return err
	}

	scan := commands.NewScanCommand()
	res, err := scan.Execute(cmd.Context(), commands.ScanRequest{
		Repositories: repos,
		ExtractOptions: hclextract.Options{
			ExcludePatterns: mergeExcludes(cfg, flags.exclude),
			MaxDepth:        maxDepthOf(cfg, flags.maxDepth),
			ContinueOnError: flags.continueOnError || (cfg != nil && cfg.Scan.ContinueOnError),
		},
		Policies:     policies,
		Deprecations: deprecations,
		Strict:       flags.strict,
		Meta: entities.Meta{
			ToolName:  "monphare",
			Version:   toolVersion,
			Timestamp: time.Now(),
		},
	})
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(flags.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()

	colored := cfg == nil || cfg.Output.Colored
	if renderErr := reporters.Render(out, res, reporters.Format(flags.format), colored); renderErr != nil {
		return renderErr
	}

	if res.Status.ExitCode != entities.ExitClean {
		return &entities.ExitError{Code: res.Status.ExitCode}
	}
	return nil
}

// openOutput returns fallback unless path is set, in which case it creates
// (or truncates) the file at path. The returned closer is always safe to
// call.
func openOutput(path string, fallback io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return fallback, func() {}, nil
	}
	file, err := os.Create(path) //nolint:gosec // output path is an explicit user-provided CLI flag
	if err != nil {
		return nil, nil, &entities.InputError{Message: fmt.Sprintf("cannot write report to %q: %v", path, err)}
	}
	return file, func() { _ = file.Close() }, nil
}
