package reporters

import (
	"html/template"
	"io"

	"github.com/monphare/monphare/internal/domain/entities"
)

const htmlReportTemplateSource = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Meta.ToolName}} scan report</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
.pass { color: #0a7d28; } .warnings { color: #a36a00; } .errors { color: #b30000; }
.repo { margin-top: 1.5rem; }
.file { margin-left: 1rem; color: #555; }
.finding { margin-left: 2rem; }
.severity-info { color: #0366d6; } .severity-warning { color: #a36a00; }
.severity-error { color: #b30000; } .severity-critical { color: #b30000; font-weight: bold; }
</style>
</head>
<body>
<h1 class="{{statusClass .Status}}">{{statusLabel .Status}}</h1>
<p>repositories: {{.Summary.RepositoryCount}} &middot; modules: {{.Summary.ModuleCount}} &middot;
providers: {{.Summary.ProviderCount}} &middot; findings: {{.Summary.FindingCount}}</p>
{{range .Findings}}
<div class="repo">
<h2>{{.Repository}}</h2>
{{range .Files}}
<div class="file">{{.Path}}
{{range .Findings}}
<div class="finding severity-{{.Severity}}">[{{.Severity}}] {{.Code}}:{{.Location.Line}} {{.Message}}</div>
{{end}}
</div>
{{end}}
</div>
{{end}}
</body>
</html>
`

var htmlReportTemplate = template.Must(
	template.New("report").Funcs(template.FuncMap{
		"statusClass": statusClass,
		"statusLabel": statusLabel,
	}).Parse(htmlReportTemplateSource),
)

// renderHTML writes res through html/template, the teacher's stack having
// no templating dependency of its own to reuse for this format.
func renderHTML(w io.Writer, res entities.ScanResult) error {
	return htmlReportTemplate.Execute(w, res)
}

func statusClass(status entities.Status) string {
	switch status.ExitCode {
	case entities.ExitErrors:
		return "errors"
	case entities.ExitWarnings:
		return "warnings"
	default:
		return "pass"
	}
}

func statusLabel(status entities.Status) string {
	switch status.ExitCode {
	case entities.ExitErrors:
		return "FAIL — errors found"
	case entities.ExitWarnings:
		return "WARN — warnings found"
	default:
		return "PASS"
	}
}
