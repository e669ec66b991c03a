package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/repositories"
)

// DiscoverRequest selects repositories for a scan: either a fixed list of
// local paths, a fixed list of remote URLs, or exactly one organization
// selector, per spec.md §6's mutually-exclusive flag groups.
type DiscoverRequest struct {
	Paths              []string
	RepoURLs           []string
	GitHubOrg          string
	GitLabGroup        string
	AzureDevOpsOrg     string
	BitbucketWorkspace string
	Branch             string            // overrides each repository's default branch when set
	Tokens             map[string]string // provider name -> resolved auth token
}

// Discover is the interface for resolving a DiscoverRequest into local
// working trees ready for commands.Scan.
type Discover interface {
	Execute(ctx context.Context, req DiscoverRequest) ([]entities.Repository, error)
}

// DiscoverCommand resolves repositories via a VCSProvider registry and
// materializes them into local working trees through a RepoCache.
type DiscoverCommand struct {
	registry *repositories.ProviderRegistry
	cache    repositories.RepoCache
}

// NewDiscoverCommand creates a new DiscoverCommand.
func NewDiscoverCommand(registry *repositories.ProviderRegistry, cache repositories.RepoCache) *DiscoverCommand {
	return &DiscoverCommand{registry: registry, cache: cache}
}

// Execute returns one entities.Repository per resolved target, each with
// Root populated. Local paths pass through untouched, bypassing the cache
// entirely.
func (c *DiscoverCommand) Execute(ctx context.Context, req DiscoverRequest) ([]entities.Repository, error) {
	if len(req.Paths) > 0 {
		return localRepositories(req.Paths), nil
	}

	remote, err := c.listRemote(ctx, req)
	if err != nil {
		return nil, err
	}

	return c.materialize(ctx, remote, req.Branch, req.Tokens)
}

func localRepositories(paths []string) []entities.Repository {
	repos := make([]entities.Repository, len(paths))
	for i, p := range paths {
		repos[i] = entities.Repository{Label: filepath.Base(p), Root: p}
	}
	return repos
}

func (c *DiscoverCommand) listRemote(ctx context.Context, req DiscoverRequest) ([]entities.Repository, error) {
	switch {
	case req.GitHubOrg != "":
		return c.discoverFrom(ctx, "github", req.GitHubOrg, req.Tokens)
	case req.GitLabGroup != "":
		return c.discoverFrom(ctx, "gitlab", req.GitLabGroup, req.Tokens)
	case req.AzureDevOpsOrg != "":
		return c.discoverFrom(ctx, "azuredevops", req.AzureDevOpsOrg, req.Tokens)
	case req.BitbucketWorkspace != "":
		return c.discoverFrom(ctx, "bitbucket", req.BitbucketWorkspace, req.Tokens)
	default:
		return c.resolveURLs(req.RepoURLs)
	}
}

func (c *DiscoverCommand) discoverFrom(ctx context.Context, providerName, target string, tokens map[string]string) ([]entities.Repository, error) {
	provider, err := c.registry.Get(providerName, tokens[providerName])
	if err != nil {
		return nil, err
	}
	repos, err := provider.Discover(ctx, target)
	if err != nil {
		return nil, err
	}
	for i := range repos {
		if repos[i].ProviderName == "" {
			repos[i].ProviderName = providerName
		}
	}
	return repos, nil
}

// resolveURLs turns each --repo URL into a bare Repository carrying only
// enough information (RemoteURL, ProviderName) for materialize to clone it;
// the matching provider (and its token) is looked up again there.
func (c *DiscoverCommand) resolveURLs(urls []string) ([]entities.Repository, error) {
	repos := make([]entities.Repository, 0, len(urls))
	for _, rawURL := range urls {
		provider, ok := c.registry.ForURL(rawURL, "")
		if !ok {
			return nil, &entities.InputError{Message: fmt.Sprintf("no VCS provider recognizes URL %q", rawURL)}
		}
		repos = append(repos, entities.Repository{
			RemoteURL:    rawURL,
			Label:        filepath.Base(rawURL),
			ProviderName: provider.Name(),
		})
	}
	return repos, nil
}

func (c *DiscoverCommand) materialize(
	ctx context.Context, remote []entities.Repository, branchOverride string, tokens map[string]string,
) ([]entities.Repository, error) {
	resolved := make([]entities.Repository, len(remote))
	for i, repo := range remote {
		provider, err := c.registry.Get(repo.ProviderName, tokens[repo.ProviderName])
		if err != nil {
			return nil, err
		}

		branch := branchOverride
		if branch == "" {
			branch = repo.DefaultBranch
		}

		fetched, err := c.cache.Fetch(ctx, repo.RemoteURL, provider.CloneURL(repo), branch)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", repo.RemoteURL, err)
		}

		fetched.Label = repo.Label
		fetched.Organization = repo.Organization
		fetched.Project = repo.Project
		fetched.ProviderName = repo.ProviderName
		resolved[i] = fetched
	}
	return resolved, nil
}
