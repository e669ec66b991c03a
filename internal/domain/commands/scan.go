// Package commands holds the use-case orchestrators that tie the pure
// domain packages (hclextract, graph, analyzer, result) together into one
// engine run, the way internal/domain/commands/run_command.go ties the
// teacher's provider/updater registries into one update cycle.
package commands

import (
	"context"
	"fmt"
	"sort"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/monphare/monphare/internal/domain/analyzer"
	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/graph"
	"github.com/monphare/monphare/internal/domain/hclextract"
	"github.com/monphare/monphare/internal/domain/result"
)

// Scan is the interface for the scan command: extract, analyze, and
// assemble a report across every repository in a request.
type Scan interface {
	Execute(ctx context.Context, req ScanRequest) (entities.ScanResult, error)
}

// ScanRequest bundles everything one scan run needs. Repositories are
// expected to already carry a populated Root (a VCS collaborator's Fetch, or
// a local path passed straight through).
type ScanRequest struct {
	Repositories   []entities.Repository
	ExtractOptions hclextract.Options
	Policies       entities.Policies
	Deprecations   entities.DeprecationTable
	Strict         bool
	Meta           entities.Meta
}

// ScanCommand runs extraction, graph building, and analysis concurrently
// across repositories, then assembles the combined report.
type ScanCommand struct{}

// NewScanCommand creates a new ScanCommand.
func NewScanCommand() *ScanCommand {
	return &ScanCommand{}
}

// Execute fans the repository list out across an errgroup-bounded pool,
// mirroring the concurrency split: repositories run in parallel here; within
// each repository, hclextract.Extract runs its own fixed-size file-parse
// pool. A repository whose extraction fails degrades to a skipped-repository
// warning when req.ExtractOptions.ContinueOnError is set; otherwise the
// first such failure aborts the run.
func (c *ScanCommand) Execute(ctx context.Context, req ScanRequest) (entities.ScanResult, error) {
	repoRefs := make([]*result.RepositoryRefs, len(req.Repositories))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, repo := range req.Repositories {
		group.Go(func() error {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			default:
			}

			refs, err := hclextract.Extract(repo, req.ExtractOptions)
			if err != nil {
				if req.ExtractOptions.ContinueOnError {
					logger.Warnf("skipping repository %q: %v", repo.Label, err)
					return nil
				}
				return fmt.Errorf("extracting %s: %w", repo.Label, err)
			}

			findings := analyzer.Analyze(refs, req.Policies, req.Deprecations)
			findings = append(findings, parseIssueFindings(repo.Label, refs.ParseIssues)...)
			sortFindings(findings)

			repoRefs[i] = &result.RepositoryRefs{
				Repository: repo,
				Refs:       refs,
				Findings:   findings,
				Graph:      graph.Build(refs),
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return entities.ScanResult{}, err
	}

	scanned := make([]result.RepositoryRefs, 0, len(repoRefs))
	for _, r := range repoRefs {
		if r != nil {
			scanned = append(scanned, *r)
		}
	}

	return result.Assemble(req.Meta, scanned, req.Strict), nil
}

// parseIssueFindings turns a repository's unparseable-file issues into
// scan-level findings, per spec.md's "ParseIssue is recorded as a scan
// warning" propagation rule.
func parseIssueFindings(repoLabel string, issues []entities.ParseIssue) []entities.Finding {
	findings := make([]entities.Finding, 0, len(issues))
	for _, issue := range issues {
		findings = append(findings, entities.Finding{
			Code:     entities.CodeParseIssue,
			Severity: entities.DefaultSeverity(entities.CodeParseIssue),
			Message:  issue.Message,
			Location: entities.Location{Repository: repoLabel, Path: issue.Path},
		})
	}
	return findings
}

func sortFindings(findings []entities.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i].Location, findings[j].Location
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return findings[i].Code < findings[j].Code
	})
}
