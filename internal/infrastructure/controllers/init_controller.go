package controllers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/monphare/monphare/internal/domain/entities"
)

// InitController handles the "init" subcommand: scaffold a default
// configuration file in the current directory.
type InitController struct{}

// NewInitController creates a new InitController.
func NewInitController() *InitController {
	return &InitController{}
}

// GetBind returns the Cobra command metadata for the init controller.
func (c *InitController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "init",
		Short: "Scaffold a default monphare.yaml configuration file",
		Long:  `Write a commented default configuration file to the current directory.`,
	}
}

func bindInitFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("yes", false, "Overwrite an existing monphare.yaml without prompting")
}

// Execute writes the default configuration template, refusing to overwrite
// an existing file unless --yes is set.
func (c *InitController) Execute(cmd *cobra.Command, _ []string) error {
	const path = "monphare.yaml"

	yes, _ := cmd.Flags().GetBool("yes")
	if _, err := os.Stat(path); err == nil && !yes {
		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("%s already exists. Overwrite it?", path)) {
			return nil
		}
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil { //nolint:gosec // config file is not sensitive
		return &entities.InputError{Message: fmt.Sprintf("failed to write %s: %v", path, err)}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

const defaultConfigTemplate = `# monphare configuration. See https://github.com/monphare/monphare for the
# full schema. Every section is optional; an omitted section falls back to
# its default below.

scan:
  exclude_patterns: []   # doublestar globs, e.g. ["**/examples/**", "vendor/**"]
  continue_on_error: false
  max_depth: 0           # 0 means unlimited

analysis:
  check_exact_versions: true
  check_prerelease: true
  check_upper_bound: false
  max_age_months: 0      # 0 disables the age check

output:
  colored: true
  verbose: false
  pretty: true

git:
  github_token: "${MONPHARE_GITHUB_TOKEN}"
  gitlab_token: "${MONPHARE_GITLAB_TOKEN}"
  azuredevops_token: "${MONPHARE_AZUREDEVOPS_TOKEN}"
  bitbucket_token: "${MONPHARE_BITBUCKET_TOKEN}"
  branch: ""
  include_patterns: []
  exclude_patterns: []

cache:
  enabled: true
  directory: ""          # defaults to $CACHE_HOME/monphare
  ttl_hours: 24
  fresh_threshold_minutes: 60
  max_size_mb: 0          # 0 means unlimited

policies:
  require_version_constraint: true
  require_upper_bound: false
  allowed_providers: []
  blocked_modules: []
  severity_overrides: {}

deprecations:
  runtime: {}
  modules: {}
  providers: {}
`
