// Package hclextract walks a Terraform/OpenTofu working tree and extracts
// module references, provider requirements, and runtime version pins.
//
// Grounded on infrastructure/updater/terraform/terraform.go's two-parser
// strategy (scanTerraformFile backed by hclparse, falling back to
// scanWithRegex on a structured-parse failure), generalized from
// module-source-only extraction to modules + required_providers +
// required_version, and enriched with the gohcl/PartialContent decoding
// style shown in other_examples' abcxyz-guardian terraform.go.
package hclextract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/monphare/monphare/internal/domain/entities"
)

// fileWorkers bounds how many files are parsed concurrently per repository;
// HCL parsing is CPU-bound, so the pool is capped at this fixed size rather
// than left unbounded.
const fileWorkers = 8

// fileOutcome is one file's parse result, computed by a pool worker and
// reassembled back into Extract's deterministic, path-ordered output.
type fileOutcome struct {
	refs  fileRefs
	issue *entities.ParseIssue
}

// Extract walks repo.Root and returns every ModuleRef, ProviderRef, and
// RuntimeRef found beneath it, plus any ParseIssues recorded for files
// neither parser could read. Every Location.Repository field is set to
// repo.Label and Location.Path is relative to repo.Root.
//
// Files are parsed concurrently over a fixed-size worker pool; when
// opts.ContinueOnError is false, the first file (in path order) that either
// fails to read or that both parsers reject aborts the whole walk and
// Extract returns a non-nil error.
func Extract(repo entities.Repository, opts Options) (entities.ExtractResult, error) {
	paths, err := discoverFiles(repo.Root, opts)
	if err != nil {
		return entities.ExtractResult{}, fmt.Errorf("walking %s: %w", repo.Root, err)
	}

	outcomes := make([]fileOutcome, len(paths))
	group := new(errgroup.Group)
	group.SetLimit(fileWorkers)

	for i, relPath := range paths {
		group.Go(func() error {
			outcomes[i] = parseFile(repo, relPath)
			return nil
		})
	}
	_ = group.Wait() // parseFile never returns an error; failures are recorded as issues

	var result entities.ExtractResult
	for i, relPath := range paths {
		outcome := outcomes[i]
		if outcome.issue != nil {
			if !opts.ContinueOnError {
				return entities.ExtractResult{}, fmt.Errorf("parsing %s: %s", relPath, outcome.issue.Message)
			}
			result.ParseIssues = append(result.ParseIssues, *outcome.issue)
			continue
		}

		result.Modules = append(result.Modules, outcome.refs.Modules...)
		result.Providers = append(result.Providers, outcome.refs.Providers...)
		result.Runtimes = append(result.Runtimes, outcome.refs.Runtimes...)
	}

	sortRefs(&result)

	return result, nil
}

// parseFile reads and parses one file, tagging every ref's Location and
// promoting ".tofu" files to OpenTofu. Never returns an error directly: a
// read or parse failure is reported as an issue, letting Extract decide
// (after every worker finishes) whether that aborts the walk.
func parseFile(repo entities.Repository, relPath string) fileOutcome {
	absPath := filepath.Join(repo.Root, filepath.FromSlash(relPath))

	content, readErr := os.ReadFile(absPath)
	if readErr != nil {
		return fileOutcome{issue: &entities.ParseIssue{Path: relPath, Message: readErr.Error()}}
	}

	refs, ok := parseStructured(content, relPath)
	if !ok {
		refs = parseFallback(string(content), relPath)
		if len(refs.Modules) == 0 && len(refs.Providers) == 0 && len(refs.Runtimes) == 0 {
			return fileOutcome{issue: &entities.ParseIssue{
				Path:    relPath,
				Message: "file could not be parsed by the structured or fallback parser",
			}}
		}
	}

	if strings.HasSuffix(relPath, ".tofu") {
		refs = promoteToOpenTofu(refs)
	}

	for i := range refs.Modules {
		refs.Modules[i].Location.Repository = repo.Label
		refs.Modules[i].Location.Path = relPath
	}
	for i := range refs.Providers {
		refs.Providers[i].Location.Repository = repo.Label
		refs.Providers[i].Location.Path = relPath
	}
	for i := range refs.Runtimes {
		refs.Runtimes[i].Location.Repository = repo.Label
		refs.Runtimes[i].Location.Path = relPath
	}

	return fileOutcome{refs: refs}
}

// promoteToOpenTofu marks every runtime ref found in a ".tofu" file as
// targeting OpenTofu, per the presence-based detection rule: a dedicated
// file extension counts as explicit OpenTofu presence even when the block
// keyword inside is still spelled "terraform".
func promoteToOpenTofu(refs fileRefs) fileRefs {
	for i := range refs.Runtimes {
		refs.Runtimes[i].Kind = entities.RuntimeOpenTofu
	}
	return refs
}

func sortRefs(result *entities.ExtractResult) {
	sort.SliceStable(result.Modules, func(i, j int) bool {
		return lessLocation(result.Modules[i].Location, result.Modules[j].Location)
	})
	sort.SliceStable(result.Providers, func(i, j int) bool {
		return lessLocation(result.Providers[i].Location, result.Providers[j].Location)
	})
	sort.SliceStable(result.Runtimes, func(i, j int) bool {
		return lessLocation(result.Runtimes[i].Location, result.Runtimes[j].Location)
	})
}

func lessLocation(a, b entities.Location) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Line < b.Line
}
