// Package reporters renders an entities.ScanResult and an entities.Graph in
// the output formats spec.md §6 names for the scan and graph subcommands.
//
// Grounded on the teacher's lack of a dedicated reporting layer (it only
// ever logs through logrus) plus the colored-banner style lifted from
// _examples/gruntwork-io-terragrunt's catalog TUI (cli/commands/catalog/tui/view.go),
// which is the only lipgloss user anywhere in the pack.
package reporters

import (
	"fmt"
	"io"

	"github.com/monphare/monphare/internal/domain/entities"
)

// Format is the closed set of scan report output formats.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Render writes res to w in the given format. An unrecognized format
// reports an *entities.InputError, matching the CLI's flag-validation
// convention for everything else in the --format family.
func Render(w io.Writer, res entities.ScanResult, format Format, colored bool) error {
	switch format {
	case FormatText, "":
		return renderText(w, res, colored)
	case FormatJSON:
		return renderJSON(w, res)
	case FormatHTML:
		return renderHTML(w, res)
	default:
		return &entities.InputError{Message: fmt.Sprintf("unknown report format %q", format)}
	}
}
