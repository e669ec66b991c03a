// Package github adapts github.com/google/go-github/v66 to
// repositories.VCSProvider.
//
// Adapted from internal/infrastructure/repositories/github/github_provider_repository.go:
// the organization/user discovery pagination loop is kept verbatim in
// spirit; every file-content, tree, tag, branch, and pull-request mutation
// call is dropped, since MonPhare only ever reads a repository's default
// branch through a local clone, never writes back to source.
package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/repositories"
)

const (
	providerName = "github"
	perPage      = 100
)

// Provider implements repositories.VCSProvider for GitHub.
type Provider struct {
	token  string
	client *gh.Client
}

// New constructs a GitHub provider authenticated with token.
func New(token string) repositories.VCSProvider {
	return &Provider{token: token, client: gh.NewClient(nil).WithAuthToken(token)}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) MatchesURL(rawURL string) bool {
	return strings.Contains(rawURL, "github.com")
}

// Discover lists every repository in a GitHub organization, falling back to
// listing a user's own repositories when org listing fails.
func (p *Provider) Discover(ctx context.Context, organization string) ([]entities.Repository, error) {
	var all []entities.Repository
	opts := &gh.RepositoryListByOrgOptions{ListOptions: gh.ListOptions{PerPage: perPage}}

	for {
		repos, resp, err := p.client.Repositories.ListByOrg(ctx, organization, opts)
		if err != nil {
			return p.discoverUserRepos(ctx, organization)
		}

		for _, r := range repos {
			all = append(all, toRepository(r, organization))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (p *Provider) discoverUserRepos(ctx context.Context, user string) ([]entities.Repository, error) {
	var all []entities.Repository
	opts := &gh.RepositoryListByUserOptions{ListOptions: gh.ListOptions{PerPage: perPage}, Type: "owner"}

	for {
		repos, resp, err := p.client.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories for %q: %w", user, err)
		}

		for _, r := range repos {
			all = append(all, toRepository(r, user))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func toRepository(r *gh.Repository, organization string) entities.Repository {
	defaultBranch := "main"
	if r.DefaultBranch != nil {
		defaultBranch = *r.DefaultBranch
	}
	return entities.Repository{
		Label:         r.GetName(),
		Organization:  organization,
		DefaultBranch: defaultBranch,
		RemoteURL:     r.GetCloneURL(),
		ProviderName:  providerName,
	}
}

// CloneURL embeds the auth token as an x-access-token credential, matching
// GitHub's token-over-HTTPS convention.
func (p *Provider) CloneURL(repo entities.Repository) string {
	remoteURL := repo.RemoteURL
	if remoteURL == "" {
		remoteURL = fmt.Sprintf("https://github.com/%s/%s.git", repo.Organization, repo.Label)
	}
	if p.token == "" {
		return remoteURL
	}
	return strings.Replace(remoteURL, "https://", "https://x-access-token:"+p.token+"@", 1)
}
