// Package config loads MonPhare's YAML configuration file.
//
// Directly adapted from config/config.go's Load/resolveToken/FindConfigFile
// trio: the same ${VAR}/$VAR expansion, the same search-path convention, and
// the same validate-at-load-time philosophy, generalized from a provider
// token list to the full scan/analysis/output/git/cache/policies/
// deprecations settings tree of spec.md §6.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/monphare/monphare/internal/domain/entities"
)

// Config is the top-level configuration file schema.
type Config struct {
	Scan         ScanConfig                             `yaml:"scan"`
	Analysis     AnalysisConfig                          `yaml:"analysis"`
	Output       OutputConfig                             `yaml:"output"`
	Git          GitConfig                                `yaml:"git"`
	Cache        CacheConfig                              `yaml:"cache"`
	Policies     PoliciesConfig                           `yaml:"policies"`
	Deprecations DeprecationsConfig                       `yaml:"deprecations"`
}

type ScanConfig struct {
	ExcludePatterns  []string `yaml:"exclude_patterns"`
	ContinueOnError  bool     `yaml:"continue_on_error"`
	MaxDepth         int      `yaml:"max_depth"`
}

type AnalysisConfig struct {
	CheckExactVersions bool `yaml:"check_exact_versions"`
	CheckPrerelease    bool `yaml:"check_prerelease"`
	CheckUpperBound    bool `yaml:"check_upper_bound"`
	MaxAgeMonths       int  `yaml:"max_age_months"`
}

type OutputConfig struct {
	Colored bool `yaml:"colored"`
	Verbose bool `yaml:"verbose"`
	Pretty  bool `yaml:"pretty"`
}

type GitConfig struct {
	GithubToken      string   `yaml:"github_token"`
	GitlabToken      string   `yaml:"gitlab_token"`
	AzuredevopsToken string   `yaml:"azuredevops_token"`
	BitbucketToken   string   `yaml:"bitbucket_token"`
	Branch           string   `yaml:"branch"`
	IncludePatterns  []string `yaml:"include_patterns"`
	ExcludePatterns  []string `yaml:"exclude_patterns"`
}

type CacheConfig struct {
	Enabled               bool   `yaml:"enabled"`
	Directory             string `yaml:"directory"`
	TTLHours              int    `yaml:"ttl_hours"`
	FreshThresholdMinutes int    `yaml:"fresh_threshold_minutes"`
	MaxSizeMB             int    `yaml:"max_size_mb"`
}

type PoliciesConfig struct {
	RequireVersionConstraint bool              `yaml:"require_version_constraint"`
	RequireUpperBound        bool              `yaml:"require_upper_bound"`
	AllowedProviders         []string          `yaml:"allowed_providers"`
	BlockedModules           []string          `yaml:"blocked_modules"`
	SeverityOverrides        map[string]string `yaml:"severity_overrides"`
}

// DeprecationRuleConfig is one YAML deprecation entry. Exactly one of Range
// or Refs should be set: Range describes a Constraint-kind rule (parsed with
// internal/domain/version), Refs a GitRef-kind rule.
type DeprecationRuleConfig struct {
	Range       string   `yaml:"range"`
	Refs        []string `yaml:"refs"`
	Reason      string   `yaml:"reason"`
	Severity    string   `yaml:"severity"`
	Replacement string   `yaml:"replacement"`
}

type DeprecationsConfig struct {
	Runtime   map[string][]DeprecationRuleConfig `yaml:"runtime"`
	Modules   map[string][]DeprecationRuleConfig `yaml:"modules"`
	Providers map[string][]DeprecationRuleConfig `yaml:"providers"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}|\$(\w+)`)

// Load reads, parses, expands, and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &entities.ConfigError{Path: path, Message: "failed to read config file", Err: err}
	}

	expanded := expandEnv(string(data))

	var cfg Config
	if unmarshalErr := yaml.Unmarshal([]byte(expanded), &cfg); unmarshalErr != nil {
		return nil, &entities.ConfigError{Path: path, Message: "failed to parse YAML", Err: unmarshalErr}
	}

	if validateErr := validate(path, &cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches standard locations for a MonPhare config file,
// returning the first one found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{".", ".config", "configs"}
	if homeDir != "" {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	patterns := []string{".monphare.yaml", ".monphare.yml", "monphare.yaml", "monphare.yml"}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", &entities.ConfigError{Message: "config file not found in default locations"}
}

// expandEnv replaces ${VAR} and $VAR references throughout raw. Unset
// variables are left unchanged rather than replaced with an empty string,
// since the config syntax itself (e.g. a literal "$5" version string) can
// collide with the pattern; only variables that are actually set expand.
func expandEnv(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		name := strings.Trim(match, "${}")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		logger.Debugf("environment variable %q is not set, left unexpanded", name)
		return match
	})
}

func validate(path string, cfg *Config) error {
	for code, sev := range cfg.Policies.SeverityOverrides {
		if !entities.IsValidCode(entities.Code(code)) {
			return &entities.ConfigError{Path: path, Message: fmt.Sprintf("severity_overrides: unknown finding code %q", code)}
		}
		if !entities.Severity(sev).IsValid() {
			return &entities.ConfigError{Path: path, Message: fmt.Sprintf("severity_overrides[%s]: %q is not a valid severity", code, sev)}
		}
	}

	for kind, rules := range cfg.Deprecations.Runtime {
		if kind != "terraform" && kind != "opentofu" {
			return &entities.ConfigError{Path: path, Message: fmt.Sprintf("deprecations.runtime: unknown runtime kind %q", kind)}
		}
		if err := validateRules(path, "runtime."+kind, rules); err != nil {
			return err
		}
	}
	for source, rules := range cfg.Deprecations.Modules {
		if err := validateRules(path, "modules."+source, rules); err != nil {
			return err
		}
	}
	for source, rules := range cfg.Deprecations.Providers {
		if err := validateRules(path, "providers."+source, rules); err != nil {
			return err
		}
	}

	return nil
}

func validateRules(path, label string, rules []DeprecationRuleConfig) error {
	for i, rule := range rules {
		if rule.Range == "" && len(rule.Refs) == 0 {
			return &entities.ConfigError{Path: path, Message: fmt.Sprintf("deprecations.%s[%d]: must set either range or refs", label, i)}
		}
		if rule.Severity != "" && !entities.Severity(rule.Severity).IsValid() {
			return &entities.ConfigError{Path: path, Message: fmt.Sprintf("deprecations.%s[%d]: %q is not a valid severity", label, i, rule.Severity)}
		}
	}
	return nil
}

// ResolveToken returns the first non-empty candidate in precedence order:
// platform-specific env var, generic MONPHARE_GIT_TOKEN, the CLI flag value,
// then the config file value.
func ResolveToken(platformEnvVar, flagValue, configValue string) string {
	if v := os.Getenv(platformEnvVar); v != "" {
		return v
	}
	if v := os.Getenv("MONPHARE_GIT_TOKEN"); v != "" {
		return v
	}
	if flagValue != "" {
		return flagValue
	}
	return configValue
}
