// Package vcs wires the concrete VCSProvider implementations into a
// repositories.ProviderRegistry, the same way
// internal/infrastructure/repositories/container.go's RegisterProviders
// wires the teacher's provider factories into its own registry.
package vcs

import (
	"github.com/monphare/monphare/internal/domain/repositories"
	"github.com/monphare/monphare/internal/infrastructure/vcs/azuredevops"
	"github.com/monphare/monphare/internal/infrastructure/vcs/bitbucket"
	"github.com/monphare/monphare/internal/infrastructure/vcs/github"
	"github.com/monphare/monphare/internal/infrastructure/vcs/gitlab"
)

// NewProviderRegistry returns a registry with every supported platform
// registered under its provider name; Azure DevOps is "azuredevops", which
// the CLI selects with the --ado flag.
func NewProviderRegistry() *repositories.ProviderRegistry {
	registry := repositories.NewProviderRegistry()
	registry.Register("github", github.New)
	registry.Register("gitlab", gitlab.New)
	registry.Register("azuredevops", azuredevops.New)
	registry.Register("bitbucket", bitbucket.New)
	return registry
}
