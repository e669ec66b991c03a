package reporters

import (
	"encoding/json"
	"io"

	"github.com/monphare/monphare/internal/domain/entities"
)

// renderJSON writes res as a single indented JSON document, matching
// spec.md §7's "machine formats wrap everything in a single result document
// with a top-level status object".
func renderJSON(w io.Writer, res entities.ScanResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(res)
}
