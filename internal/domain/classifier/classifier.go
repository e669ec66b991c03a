// Package classifier decides what kind of thing a raw Terraform/OpenTofu
// module "source" string points at: a public registry path, a Git URL, a
// local relative path, an S3 archive, or something unrecognized.
//
// Grounded on infrastructure/updater/terraform's isGitModule/extractVersion
// helpers from the teacher, generalized from a single boolean git-detector
// into the full ModuleSource decision table of spec.md §4.1.
package classifier

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/monphare/monphare/internal/domain/entities"
)

var (
	gitHosts = []string{
		"github.com", "gitlab.com", "bitbucket.org", "dev.azure.com", "ssh.dev.azure.com",
	}

	registryTriplet = regexp.MustCompile(`^[A-Za-z0-9_-]+/[A-Za-z0-9_-]+/[A-Za-z0-9_-]+$`)
)

// Classify implements the decision order of spec.md §4.1: first match wins.
func Classify(raw string) entities.ModuleSource {
	trimmed := strings.TrimSpace(raw)

	if isGit(trimmed) {
		gitURL, ref := splitGitRef(trimmed)
		return entities.ModuleSource{
			Kind:   entities.SourceGit,
			GitURL: canonicalGitURL(gitURL),
			GitRef: ref,
		}
	}

	if strings.HasPrefix(trimmed, "s3::") {
		return entities.ModuleSource{
			Kind:  entities.SourceS3,
			S3URL: strings.TrimPrefix(trimmed, "s3::"),
		}
	}

	if strings.HasPrefix(trimmed, ".") || strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "~") {
		return entities.ModuleSource{
			Kind:      entities.SourceLocal,
			LocalPath: canonicalLocalPath(trimmed),
		}
	}

	if registryTriplet.MatchString(trimmed) {
		parts := strings.SplitN(trimmed, "/", 3) //nolint:mnd // namespace/name/provider
		return entities.ModuleSource{
			Kind:      entities.SourceRegistry,
			Namespace: parts[0],
			Name:      parts[1],
			Provider:  parts[2],
		}
	}

	return entities.ModuleSource{Kind: entities.SourceUnknown, Raw: trimmed}
}

// isGit reports whether raw matches any of the Git detection rules: the
// "git::" getter prefix, a known Git-hosting host, or a ".git" suffix
// (ignoring any query string).
func isGit(raw string) bool {
	if strings.HasPrefix(raw, "git::") {
		return true
	}

	withoutQuery := raw
	if idx := strings.Index(raw, "?"); idx >= 0 {
		withoutQuery = raw[:idx]
	}
	if strings.HasSuffix(withoutQuery, ".git") {
		return true
	}

	for _, host := range gitHosts {
		if strings.Contains(raw, host) {
			return true
		}
	}

	return false
}

// splitGitRef pulls a "?ref=<value>" query parameter off the end of a Git
// source string, returning the URL without the ref and the ref value (which
// is empty when absent).
func splitGitRef(raw string) (string, string) {
	base := strings.TrimPrefix(raw, "git::")

	idx := strings.Index(base, "?")
	if idx < 0 {
		return base, ""
	}

	urlPart, query := base[:idx], base[idx+1:]
	values, err := url.ParseQuery(query)
	if err != nil {
		return urlPart, ""
	}

	return urlPart, values.Get("ref")
}

// canonicalGitURL lowercases the host and strips a trailing ".git" so that
// the same repository referenced with different casing or suffix collapses
// to one graph node.
func canonicalGitURL(raw string) string {
	cleaned := strings.TrimSuffix(raw, ".git")

	u, err := url.Parse(cleaned)
	if err != nil || u.Host == "" {
		return strings.ToLower(cleaned)
	}

	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	return u.String()
}

// canonicalLocalPath resolves a local module path to its absolute form for
// stable grouping across repositories that reference the same sibling
// directory with different relative prefixes. A leading "~" is expanded
// against the invoking user's home directory before resolution.
func canonicalLocalPath(raw string) string {
	expanded := raw
	if raw == "~" || strings.HasPrefix(raw, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = filepath.Join(home, strings.TrimPrefix(raw, "~"))
		}
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return filepath.Clean(expanded)
	}
	return abs
}
