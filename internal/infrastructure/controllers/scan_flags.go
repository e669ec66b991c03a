package controllers

import (
	"github.com/spf13/cobra"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/infrastructure/config"
)

// scanFlags is the parsed, validated form of the scan subcommand's flags
// and positional arguments.
type scanFlags struct {
	paths              []string
	repoURLs           []string
	githubOrg          string
	gitlabGroup        string
	adoOrg             string
	bitbucketWorkspace string
	yes                bool
	format             string
	output             string
	strict             bool
	continueOnError    bool
	maxDepth           int
	exclude            []string
	branch             string
	gitToken           string
	configPath         string
}

// isRemoteOrgMode reports whether the request targets a whole organization
// rather than an explicit set of paths or repo URLs.
func (f scanFlags) isRemoteOrgMode() bool {
	return f.githubOrg != "" || f.gitlabGroup != "" || f.adoOrg != "" || f.bitbucketWorkspace != ""
}

func (f scanFlags) orgTarget() string {
	switch {
	case f.githubOrg != "":
		return f.githubOrg
	case f.gitlabGroup != "":
		return f.gitlabGroup
	case f.adoOrg != "":
		return f.adoOrg
	default:
		return f.bitbucketWorkspace
	}
}

// parseScanFlags reads the scan subcommand's flags and enforces spec.md
// §6's mutual exclusivity rule: org flags may not be combined with
// positional paths or --repo URLs, and at most one org flag may be set.
func parseScanFlags(cmd *cobra.Command, args []string) (scanFlags, error) {
	f := scanFlags{paths: args}

	f.repoURLs, _ = cmd.Flags().GetStringSlice("repo")
	f.githubOrg, _ = cmd.Flags().GetString("github")
	f.gitlabGroup, _ = cmd.Flags().GetString("gitlab")
	f.adoOrg, _ = cmd.Flags().GetString("ado")
	f.bitbucketWorkspace, _ = cmd.Flags().GetString("bitbucket")
	f.yes, _ = cmd.Flags().GetBool("yes")
	f.format, _ = cmd.Flags().GetString("format")
	f.output, _ = cmd.Flags().GetString("output")
	f.strict, _ = cmd.Flags().GetBool("strict")
	f.continueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	f.maxDepth, _ = cmd.Flags().GetInt("max-depth")
	f.exclude, _ = cmd.Flags().GetStringSlice("exclude")
	f.branch, _ = cmd.Flags().GetString("branch")
	f.gitToken, _ = cmd.Flags().GetString("git-token")
	f.configPath, _ = cmd.Flags().GetString("config")

	orgFlagCount := 0
	for _, v := range []string{f.githubOrg, f.gitlabGroup, f.adoOrg, f.bitbucketWorkspace} {
		if v != "" {
			orgFlagCount++
		}
	}

	switch {
	case orgFlagCount > 1:
		return f, &entities.InputError{Message: "only one of --github, --gitlab, --ado, --bitbucket may be set"}
	case orgFlagCount == 1 && (len(f.paths) > 0 || len(f.repoURLs) > 0):
		return f, &entities.InputError{Message: "an organization flag cannot be combined with paths or --repo"}
	}

	return f, nil
}

func gitConfigOf(cfg *config.Config) config.GitConfig {
	if cfg == nil {
		return config.GitConfig{}
	}
	return cfg.Git
}

func mergeExcludes(cfg *config.Config, flagExcludes []string) []string {
	if cfg == nil {
		return flagExcludes
	}
	merged := make([]string, 0, len(cfg.Scan.ExcludePatterns)+len(flagExcludes))
	merged = append(merged, cfg.Scan.ExcludePatterns...)
	merged = append(merged, flagExcludes...)
	return merged
}

func maxDepthOf(cfg *config.Config, flagMaxDepth int) int {
	if flagMaxDepth > 0 {
		return flagMaxDepth
	}
	if cfg != nil {
		return cfg.Scan.MaxDepth
	}
	return 0
}
