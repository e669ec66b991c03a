// Package repositories declares the collaborator interfaces MonPhare's
// domain layer depends on: a VCS provider abstraction and a local working
// tree cache, both implemented under internal/infrastructure.
//
// Grounded on internal/domain/repositories/provider_repository.go's
// ProviderRepository alias, generalized from a file-access-plus-PR-mutation
// interface into a read-only discover-and-clone interface, since MonPhare
// never writes back to source.
package repositories

import (
	"context"

	"github.com/monphare/monphare/internal/domain/entities"
)

// VCSProvider abstracts one Git hosting platform: GitHub, GitLab, Azure
// DevOps, or Bitbucket. Discover lists every repository in an organization
// (or project, for Azure DevOps, or workspace, for Bitbucket); CloneURL
// returns a clone URL with any auth credentials embedded.
type VCSProvider interface {
	Name() string
	MatchesURL(rawURL string) bool
	Discover(ctx context.Context, organization string) ([]entities.Repository, error)
	CloneURL(repo entities.Repository) string
}

// ProviderRegistry resolves a provider name to a configured VCSProvider
// instance. Adapted from infrastructure/provider/registry.go's factory-map
// pattern.
type ProviderRegistry struct {
	factories map[string]func(token string) VCSProvider
}

// NewProviderRegistry returns an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{factories: map[string]func(token string) VCSProvider{}}
}

// Register adds a provider factory under name, e.g. "github".
func (r *ProviderRegistry) Register(name string, factory func(token string) VCSProvider) {
	r.factories[name] = factory
}

// Get constructs a VCSProvider for name using token, or reports an
// InputError if name is not registered.
func (r *ProviderRegistry) Get(name, token string) (VCSProvider, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, &entities.InputError{Message: "unknown VCS provider: " + name}
	}
	return factory(token), nil
}

// ForURL returns a registered provider whose MatchesURL accepts rawURL
// (registrations are kept in a map, so when several accept it which one is
// returned is not defined), used when a --repo flag is given without an explicit --github/
// --gitlab/--ado selector.
func (r *ProviderRegistry) ForURL(rawURL, token string) (VCSProvider, bool) {
	for _, factory := range r.factories {
		p := factory(token)
		if p.MatchesURL(rawURL) {
			return p, true
		}
	}
	return nil, false
}

// RepoCache materializes a remote repository URL into a local working tree,
// reusing a prior clone when the cache already holds one.
type RepoCache interface {
	// Fetch returns the local working tree root for remoteURL, cloning or
	// fetching as needed. cloneURL carries any embedded auth credentials;
	// remoteURL (without credentials) is used as the cache key.
	Fetch(ctx context.Context, remoteURL, cloneURL, branch string) (entities.Repository, error)
}
