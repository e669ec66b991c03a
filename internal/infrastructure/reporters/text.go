package reporters

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/monphare/monphare/internal/domain/entities"
)

var plainStyle = lipgloss.NewStyle()

func coloredStyles() map[entities.Severity]lipgloss.Style {
	return map[entities.Severity]lipgloss.Style{
		entities.SeverityInfo:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		entities.SeverityWarning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		entities.SeverityError:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		entities.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

// renderText draws a status banner followed by a per-repository, per-file
// finding table. When colored is false every element renders through
// plainStyle instead, a no-op rendering that keeps the same layout code
// path for both cases rather than branching on colored throughout.
func renderText(w io.Writer, res entities.ScanResult, colored bool) error {
	repoHeading := lipgloss.NewStyle().Bold(true).Underline(true)
	fileHeading := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	severityText := coloredStyles()
	if !colored {
		repoHeading = plainStyle
		fileHeading = plainStyle
		severityText = map[entities.Severity]lipgloss.Style{}
	}

	banner := bannerStyle(res.Status, colored)
	fmt.Fprintln(w, banner.Render(bannerLabel(res.Status)))
	fmt.Fprintf(w, "repositories: %d  modules: %d  providers: %d  findings: %d\n",
		res.Summary.RepositoryCount, res.Summary.ModuleCount, res.Summary.ProviderCount, res.Summary.FindingCount)
	fmt.Fprintf(w, "  info: %d  warning: %d  error: %d  critical: %d\n\n",
		res.Summary.Severities.Info, res.Summary.Severities.Warning,
		res.Summary.Severities.Error, res.Summary.Severities.Critical)

	for _, repo := range res.Findings {
		fmt.Fprintln(w, repoHeading.Render(repo.Repository))
		for _, file := range repo.Files {
			fmt.Fprintln(w, fileHeading.Render("  "+file.Path))
			for _, finding := range file.Findings {
				style, ok := severityText[finding.Severity]
				if !ok {
					style = plainStyle
				}
				line := fmt.Sprintf("    [%s] %s:%d %s", finding.Severity, finding.Code, finding.Location.Line, finding.Message)
				fmt.Fprintln(w, style.Render(line))
			}
		}
	}

	return nil
}

func bannerStyle(status entities.Status, colored bool) lipgloss.Style {
	if !colored {
		return plainStyle
	}
	switch status.ExitCode {
	case entities.ExitErrors:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Padding(0, 1)
	case entities.ExitWarnings:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Padding(0, 1)
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Padding(0, 1)
	}
}

func bannerLabel(status entities.Status) string {
	switch status.ExitCode {
	case entities.ExitErrors:
		return "FAIL — errors found"
	case entities.ExitWarnings:
		return "WARN — warnings found"
	default:
		return "PASS"
	}
}
