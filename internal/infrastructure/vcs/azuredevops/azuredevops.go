// Package azuredevops adapts Azure DevOps' REST API to
// repositories.VCSProvider with a small net/http client, since Azure DevOps
// has no first-party or widely-adopted Go SDK in the pack.
//
// Adapted from internal/azuredevops/client.go's project/repository listing
// calls and from infrastructure/provider/azuredevops's Name/MatchesURL/
// CloneURL/normalizeOrgURL/extractOrgName shape (that package's source was
// not present in the retrieved pack, only its tests; this rebuilds the
// behavior the tests specify), using github.com/hashicorp/go-cleanhttp for
// the underlying *http.Client the way internal/infrastructure/repositories
// favors a shared, pooled transport over http.DefaultClient.
package azuredevops

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
	providerName = "azuredevops"
	baseURL      = "https://dev.azure.com"
	apiVersion   = "7.1"
)

// Provider implements repositories.VCSProvider for Azure DevOps, authenticating
// with a personal access token over HTTP basic auth.
type Provider struct {
	token   string
	client  *http.Client
	apiHost string // overridable in tests; defaults to baseURL
}

// New constructs an Azure DevOps provider authenticated with a PAT.
func New(token string) repositories.VCSProvider {
	return &Provider{token: token, client: cleanhttp.DefaultClient(), apiHost: baseURL}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) AuthToken() string { return p.token }

func (p *Provider) MatchesURL(rawURL string) bool {
	return strings.Contains(rawURL, "dev.azure.com")
}

// azureRepoList is the subset of the Git repositories list response
// MonPhare reads.
type azureRepoList struct {
	Value []struct {
		Name          string `json:"name"`
		DefaultBranch string `json:"defaultBranch"`
		RemoteURL     string `json:"remoteUrl"`
		Project       struct {
			Name string `json:"name"`
		} `json:"project"`
	} `json:"value"`
}

// Discover lists every Git repository in an Azure DevOps organization (and
// its projects), or only those of one project when a project segment is
// given. organization may be a bare org name, "<org>/<project>", or a full
// https://dev.azure.com/<org>[/<project>] URL.
func (p *Provider) Discover(ctx context.Context, organization string) ([]entities.Repository, error) {
	orgURL := normalizeOrgURL(organization)
	org := extractOrgName(orgURL)
	scope := org
	if parts := strings.SplitN(strings.TrimPrefix(orgURL, baseURL+"/"), "/", 3); len(parts) > 1 && parts[1] != "" {
		scope = org + "/" + parts[1]
	}

	url := fmt.Sprintf("%s/%s/_apis/git/repositories?api-version=%s", p.apiHost, scope, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth("", p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories for org %q: %w", org, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure devops returned status %d listing repositories for org %q", resp.StatusCode, org)
	}

	var list azureRepoList
	if decodeErr := json.NewDecoder(resp.Body).Decode(&list); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode repository list: %w", decodeErr)
	}

	repos := make([]entities.Repository, 0, len(list.Value))
	for _, r := range list.Value {
		defaultBranch := strings.TrimPrefix(r.DefaultBranch, "refs/heads/")
		if defaultBranch == "" {
			defaultBranch = "main"
		}
		repos = append(repos, entities.Repository{
			Label:         r.Name,
			Organization:  org,
			Project:       r.Project.Name,
			DefaultBranch: defaultBranch,
			RemoteURL:     r.RemoteURL,
			ProviderName:  providerName,
		})
	}

	return repos, nil
}

// CloneURL embeds the PAT as basic-auth credentials, matching Azure DevOps'
// "pat:<token>@" convention.
func (p *Provider) CloneURL(repo entities.Repository) string {
	remoteURL := repo.RemoteURL
	if remoteURL == "" {
		remoteURL = fmt.Sprintf("%s/%s/%s/_git/%s", baseURL, repo.Organization, repo.Project, repo.Label)
	}

	remoteURL = stripUserinfo(remoteURL)

	return strings.Replace(remoteURL, "https://", "https://pat:"+p.token+"@", 1)
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

// normalizeOrgURL prefixes a bare organization name with the Azure DevOps
// base URL and strips a trailing slash.
func normalizeOrgURL(input string) string {
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return baseURL + "/" + input
	}
	return strings.TrimSuffix(input, "/")
}

// extractOrgName returns the first path segment following the Azure DevOps
// host, e.g. "MyOrg" from "https://dev.azure.com/MyOrg/extra/path".
func extractOrgName(orgURL string) string {
	trimmed := strings.TrimPrefix(orgURL, baseURL+"/")
	parts := strings.SplitN(trimmed, "/", 2)
	return parts[0]
}
