// Package result assembles findings and the extracted inventory into the
// top-level, machine-readable ScanResult.
//
// Grounded on infrastructure/updater/terraform/terraform.go's final
// aggregation step (all per-repository scan outputs folded into one report
// before the CLI prints it), generalized from a flat update list into the
// repository → file → finding grouping spec.md §4.6 requires.
package result

import (
	"sort"

	"github.com/monphare/monphare/internal/domain/entities"
)

// RepositoryRefs pairs one repository's extraction output, analysis
// findings, and dependency graph for assembly into a ScanResult.
type RepositoryRefs struct {
	Repository entities.Repository
	Refs       entities.ExtractResult
	Findings   []entities.Finding
	Graph      entities.Graph
}

// Assemble groups every repository's findings by (repository, file),
// tallies the summary counters, determines the pass/fail status against
// strict mode, and returns the finished ScanResult. meta identifies the
// tool run; strict turns a warnings-only scan from ExitClean into
// ExitWarnings.
func Assemble(meta entities.Meta, repos []RepositoryRefs, strict bool) entities.ScanResult {
	var grouped []entities.RepositoryFindings
	var counts entities.SeverityCounts
	var moduleCount, providerCount int

	sorted := make([]RepositoryRefs, len(repos))
	copy(sorted, repos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Repository.Label < sorted[j].Repository.Label
	})

	for _, repo := range sorted {
		moduleCount += len(repo.Refs.Modules)
		providerCount += len(repo.Refs.Providers)

		for _, f := range repo.Findings {
			counts.Add(f.Severity)
		}

		grouped = append(grouped, entities.RepositoryFindings{
			Repository: repo.Repository.Label,
			Files:      groupByFile(repo.Findings),
		})
	}

	summary := entities.Summary{
		Severities:      counts,
		ModuleCount:     moduleCount,
		ProviderCount:   providerCount,
		RepositoryCount: len(repos),
		FindingCount:    counts.Total(),
	}

	return entities.ScanResult{
		Meta:      meta,
		Status:    status(counts, strict),
		Summary:   summary,
		Findings:  grouped,
		Inventory: inventory(sorted),
	}
}

// groupByFile partitions findings (already sorted by the analyzer into
// (path, line, code) order) into one FileFindings per distinct path,
// preserving that order within and across files.
func groupByFile(findings []entities.Finding) []entities.FileFindings {
	var files []entities.FileFindings
	var current *entities.FileFindings

	for _, f := range findings {
		if current == nil || current.Path != f.Location.Path {
			files = append(files, entities.FileFindings{Path: f.Location.Path})
			current = &files[len(files)-1]
		}
		current.Findings = append(current.Findings, f)
	}

	return files
}

// inventory concatenates every repository's refs and graph into the
// catalog section of the ScanResult. Per-repository graphs are merged by
// simple concatenation: node identity already carries no repository
// component, so two repositories sharing a canonical source keep separate
// nodes rather than silently collapsing across repository boundaries.
func inventory(repos []RepositoryRefs) entities.Inventory {
	var inv entities.Inventory

	for _, repo := range repos {
		inv.Modules = append(inv.Modules, repo.Refs.Modules...)
		inv.Providers = append(inv.Providers, repo.Refs.Providers...)
		inv.Runtimes = append(inv.Runtimes, repo.Refs.Runtimes...)
		inv.Graph.Nodes = append(inv.Graph.Nodes, repo.Graph.Nodes...)
		inv.Graph.Edges = append(inv.Graph.Edges, repo.Graph.Edges...)
	}

	return inv
}

// status derives the pass/fail Status from the severity tally, per the exit
// code table: 0 on a clean scan or warnings without --strict, 1 on warnings
// under --strict, 2 when any error or critical finding was reported.
func status(counts entities.SeverityCounts, strict bool) entities.Status {
	if counts.Error > 0 || counts.Critical > 0 {
		return entities.Status{Pass: false, ExitCode: entities.ExitErrors}
	}

	if counts.Warning > 0 {
		if strict {
			return entities.Status{Pass: false, ExitCode: entities.ExitWarnings}
		}
		return entities.Status{Pass: true, ExitCode: entities.ExitClean}
	}

	return entities.Status{Pass: true, ExitCode: entities.ExitClean}
}
