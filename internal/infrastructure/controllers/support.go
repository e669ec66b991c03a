package controllers

import (
	"os"
	"path/filepath"
	"time"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/infrastructure/cache"
	"github.com/monphare/monphare/internal/infrastructure/config"
)

// platformEnvVars maps each provider name to the platform-specific
// environment variable ResolveToken checks first, per spec.md §6's token
// precedence.
var platformEnvVars = map[string]string{
	"github":      "MONPHARE_GITHUB_TOKEN",
	"gitlab":      "MONPHARE_GITLAB_TOKEN",
	"azuredevops": "MONPHARE_AZUREDEVOPS_TOKEN",
	"bitbucket":   "MONPHARE_BITBUCKET_TOKEN",
}

// loadConfig best-effort discovers and loads a configuration file: an
// explicit path always must exist, but silent auto-discovery failure just
// means "no config file", not an error, since every section has a sane
// built-in default.
func loadConfig(explicitPath string) (*config.Config, error) {
	path := explicitPath
	if path == "" {
		found, err := config.FindConfigFile()
		if err != nil {
			return nil, nil //nolint:nilnil // no config file found is not an error; callers fall back to defaults
		}
		path = found
	}
	return config.Load(path)
}

// resolveTokens builds the provider-name -> token map commands.Discover
// needs, applying spec.md §6's precedence per platform: platform env var,
// generic env var, CLI flag, config file.
func resolveTokens(flagToken string, git config.GitConfig) map[string]string {
	configTokens := map[string]string{
		"github":      git.GithubToken,
		"gitlab":      git.GitlabToken,
		"azuredevops": git.AzuredevopsToken,
		"bitbucket":   git.BitbucketToken,
	}

	tokens := make(map[string]string, len(platformEnvVars))
	for name, envVar := range platformEnvVars {
		tokens[name] = config.ResolveToken(envVar, flagToken, configTokens[name])
	}
	return tokens
}

// buildPolicies converts the configuration file's policy section into the
// analyzer's entities.Policies, falling back to entities.DefaultPolicies()
// when cfg is nil (no configuration file was found or specified).
func buildPolicies(cfg *config.Config) entities.Policies {
	if cfg == nil {
		return entities.DefaultPolicies()
	}

	overrides := make(map[entities.Code]entities.Severity, len(cfg.Policies.SeverityOverrides))
	for code, sev := range cfg.Policies.SeverityOverrides {
		overrides[entities.Code(code)] = entities.Severity(sev)
	}

	return entities.Policies{
		RequireVersionConstraint: cfg.Policies.RequireVersionConstraint,
		RequireUpperBound:        cfg.Policies.RequireUpperBound,
		AllowedProviders:         cfg.Policies.AllowedProviders,
		BlockedModules:           cfg.Policies.BlockedModules,
		SeverityOverrides:        overrides,
	}
}

// buildDeprecations converts the configuration file's deprecation section,
// falling back to an empty table when cfg is nil.
func buildDeprecations(cfg *config.Config) (entities.DeprecationTable, error) {
	if cfg == nil {
		return entities.EmptyDeprecationTable(), nil
	}
	return config.BuildDeprecationTable(cfg.Deprecations)
}

// buildCache constructs the repository cache from the configuration file's
// cache section, falling back to defaultCacheDir with a one-hour freshness
// window when cfg is nil or leaves those fields unset. cache.enabled is not
// read; the cache is always used for remote repositories.
func buildCache(cfg *config.Config) (*cache.Cache, error) {
	opts := cache.Options{
		Directory:      defaultCacheDir(),
		TTL:            24 * time.Hour,
		FreshThreshold: time.Hour,
	}

	if cfg != nil && cfg.Cache.Directory != "" {
		opts.Directory = cfg.Cache.Directory
	}
	if cfg != nil && cfg.Cache.FreshThresholdMinutes > 0 {
		opts.FreshThreshold = time.Duration(cfg.Cache.FreshThresholdMinutes) * time.Minute
	}
	if cfg != nil && cfg.Cache.TTLHours > 0 {
		opts.TTL = time.Duration(cfg.Cache.TTLHours) * time.Hour
	}

	return cache.New(opts)
}

// defaultCacheDir is $CACHE_HOME/monphare, per spec.md §6's persisted-state
// note, falling back to a relative directory when the platform has no
// discoverable cache home.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = ".cache"
	}
	return filepath.Join(base, "monphare")
}
