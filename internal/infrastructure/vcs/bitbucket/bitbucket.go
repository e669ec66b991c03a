// Package bitbucket adapts the Bitbucket Cloud REST API (v2.0) to
// repositories.VCSProvider, the same way internal/infrastructure/vcs/azuredevops
// wraps a small net/http client over Azure DevOps' REST API — Bitbucket has
// no first-party or widely-adopted Go SDK in the pack either.
//
// Paging shape grounded on the Bitbucket Data Center connector's
// FetchRepositories/SearchRepositories (internal/scm/bitbucket/connector.go in
// the retrieved pack): decode one JSON page at a time, follow the page token
// the API hands back, stop when none remains. Bitbucket Cloud's pagination
// uses a "next" URL rather than Data Center's limit/start offsets, so that
// part is adapted rather than ported.
package bitbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	cleanhttp "github.com/hashicorp/go-cleanhttp"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/repositories"
)

const (
	providerName = "bitbucket"
	apiHost      = "https://api.bitbucket.org/2.0"
)

// Provider implements repositories.VCSProvider for Bitbucket Cloud,
// authenticating with an app password or access token over HTTP basic auth.
type Provider struct {
	token   string
	client  *http.Client
	apiHost string // overridable in tests; defaults to apiHost
}

// New constructs a Bitbucket provider authenticated with token.
func New(token string) repositories.VCSProvider {
	return &Provider{token: token, client: cleanhttp.DefaultClient(), apiHost: apiHost}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) MatchesURL(rawURL string) bool {
	return strings.Contains(rawURL, "bitbucket.org")
}

type repoPage struct {
	Next   string           `json:"next"`
	Values []bitbucketEntry `json:"values"`
}

type bitbucketEntry struct {
	Slug       string `json:"slug"`
	Mainbranch struct {
		Name string `json:"name"`
	} `json:"mainbranch"`
	Links struct {
		Clone []struct {
			Name string `json:"name"`
			Href string `json:"href"`
		} `json:"clone"`
	} `json:"links"`
}

// Discover lists every repository in a Bitbucket workspace, following the
// API's "next" pagination links until exhausted.
func (p *Provider) Discover(ctx context.Context, workspace string) ([]entities.Repository, error) {
	url := fmt.Sprintf("%s/repositories/%s", p.apiHost, workspace)

	var all []entities.Repository
	for url != "" {
		page, err := p.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}

		for _, r := range page.Values {
			all = append(all, toRepository(r, workspace))
		}

		url = page.Next
	}

	return all, nil
}

func (p *Provider) fetchPage(ctx context.Context, url string) (*repoPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth("x-token-auth", p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories at %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bitbucket returned status %d listing repositories at %q", resp.StatusCode, url)
	}

	var page repoPage
	if decodeErr := json.NewDecoder(resp.Body).Decode(&page); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode repository page: %w", decodeErr)
	}

	return &page, nil
}

func toRepository(r bitbucketEntry, workspace string) entities.Repository {
	defaultBranch := r.Mainbranch.Name
	if defaultBranch == "" {
		defaultBranch = "main"
	}

	remoteURL := ""
	for _, clone := range r.Links.Clone {
		if clone.Name == "https" {
			remoteURL = clone.Href
			break
		}
	}

	return entities.Repository{
		Label:         r.Slug,
		Organization:  workspace,
		DefaultBranch: defaultBranch,
		RemoteURL:     remoteURL,
		ProviderName:  providerName,
	}
}

// CloneURL embeds the token as an x-token-auth credential, matching
// Bitbucket Cloud's app-password-over-HTTPS convention. Bitbucket's own
// clone links often already carry a username (e.g. "https://user@bitbucket.org/..."),
// which is stripped before the token credential is substituted in.
func (p *Provider) CloneURL(repo entities.Repository) string {
	remoteURL := repo.RemoteURL
	if remoteURL == "" {
		remoteURL = fmt.Sprintf("https://bitbucket.org/%s/%s.git", repo.Organization, repo.Label)
	}
	remoteURL = stripUserinfo(remoteURL)
	if p.token == "" {
		return remoteURL
	}
	return strings.Replace(remoteURL, "https://", "https://x-token-auth:"+p.token+"@", 1)
}

func stripUserinfo(rawURL string) string {
	const scheme = "https://"
	if !strings.HasPrefix(rawURL, scheme) {
		return rawURL
	}
	rest := strings.TrimPrefix(rawURL, scheme)
	if idx := strings.Index(rest, "@"); idx != -1 {
		rest = rest[idx+1:]
	}
	return scheme + rest
}
