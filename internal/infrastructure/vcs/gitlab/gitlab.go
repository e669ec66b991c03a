// Package gitlab adapts gitlab.com/gitlab-org/api/client-go to
// repositories.VCSProvider.
//
// Adapted from internal/infrastructure/repositories/gitlab/gitlab_provider_repository.go
// the same way internal/infrastructure/vcs/github adapts its GitHub
// counterpart: discovery pagination kept, file/tree/tag/commit/merge-request
// calls dropped.
package gitlab

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/repositories"
)

const (
	providerName = "gitlab"
	perPage      = 100
)

var errClientNotInitialized = errors.New("gitlab client not initialized")

// Provider implements repositories.VCSProvider for GitLab.
type Provider struct {
	token  string
	client *gl.Client
}

// New constructs a GitLab provider authenticated with token. A
// construction failure is deferred to first use rather than panicking here.
func New(token string) repositories.VCSProvider {
	client, err := gl.NewClient(token)
	if err != nil {
		return &Provider{token: token, client: nil}
	}
	return &Provider{token: token, client: client}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) MatchesURL(rawURL string) bool {
	return strings.Contains(rawURL, "gitlab.com")
}

// Discover lists every project in a GitLab group, including subgroups,
// falling back to listing the caller's own projects when group listing
// fails.
func (p *Provider) Discover(ctx context.Context, group string) ([]entities.Repository, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	var all []entities.Repository
	opts := &gl.ListGroupProjectsOptions{
		ListOptions:      gl.ListOptions{PerPage: perPage},
		IncludeSubGroups: gl.Ptr(true),
	}

	for {
		projects, resp, err := p.client.Groups.ListGroupProjects(group, opts, gl.WithContext(ctx))
		if err != nil {
			return p.discoverUserProjects(ctx, group)
		}

		for _, proj := range projects {
			all = append(all, toRepository(proj, group))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (p *Provider) discoverUserProjects(ctx context.Context, user string) ([]entities.Repository, error) {
	var all []entities.Repository
	opts := &gl.ListProjectsOptions{ListOptions: gl.ListOptions{PerPage: perPage}, Owned: gl.Ptr(true)}

	for {
		projects, resp, err := p.client.Projects.ListProjects(opts, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list projects for %q: %w", user, err)
		}

		for _, proj := range projects {
			all = append(all, toRepository(proj, user))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func toRepository(proj *gl.Project, organization string) entities.Repository {
	defaultBranch := "main"
	if proj.DefaultBranch != "" {
		defaultBranch = proj.DefaultBranch
	}
	return entities.Repository{
		Label:         proj.Path,
		Organization:  organization,
		DefaultBranch: defaultBranch,
		RemoteURL:     proj.HTTPURLToRepo,
		ProviderName:  providerName,
	}
}

// CloneURL embeds the auth token as an oauth2 credential, matching GitLab's
// token-over-HTTPS convention.
func (p *Provider) CloneURL(repo entities.Repository) string {
	remoteURL := repo.RemoteURL
	if remoteURL == "" {
		remoteURL = fmt.Sprintf("https://gitlab.com/%s/%s.git", repo.Organization, repo.Label)
	}
	if p.token == "" {
		return remoteURL
	}
	return strings.Replace(remoteURL, "https://", "https://oauth2:"+p.token+"@", 1)
}
