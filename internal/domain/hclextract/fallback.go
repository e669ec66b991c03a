package hclextract

import (
	"regexp"
	"strings"

	"github.com/monphare/monphare/internal/domain/classifier"
	"github.com/monphare/monphare/internal/domain/entities"
)

// Grounded on infrastructure/updater/terraform/terraform.go's scanWithRegex:
// a line-based regex pass used when the structured parser rejects a file,
// generalized from module-source-only extraction to modules, provider
// requirements, and the runtime version pin.
var (
	moduleBlockPattern = regexp.MustCompile(
		`(?s)module\s+"([^"]+)"\s*\{([^}]*)\}`,
	)
	sourceAttrPattern     = regexp.MustCompile(`source\s*=\s*"([^"]*)"`)
	versionAttrPattern    = regexp.MustCompile(`version\s*=\s*"([^"]*)"`)
	requiredVersionPattern = regexp.MustCompile(`required_version\s*=\s*"([^"]*)"`)
	terraformBlockPattern  = regexp.MustCompile(`(?s)(terraform|tofu)\s*\{(.*)\}`)
	requiredProvidersBlock = regexp.MustCompile(`(?s)required_providers\s*\{([^}]*)\}`)
	providerEntryPattern   = regexp.MustCompile(`(\w+)\s*=\s*\{([^}]*)\}|(\w+)\s*=\s*"([^"]+)"`)
	dependsOnPattern       = regexp.MustCompile(`depends_on\s*=\s*\[([^\]]*)\]`)
	moduleRefPattern       = regexp.MustCompile(`module\.(\w+)`)
)

// parseFallback extracts the same three shapes as parseStructured using
// plain regexes, so a syntactically broken file still yields partial
// results. Line numbers are computed by counting newlines before the match.
func parseFallback(content, path string) fileRefs {
	var refs fileRefs

	for _, match := range moduleBlockPattern.FindAllStringSubmatchIndex(content, -1) {
		name := content[match[2]:match[3]]
		body := content[match[4]:match[5]]
		line := lineAt(content, match[0])

		sourceMatch := sourceAttrPattern.FindStringSubmatch(body)
		if sourceMatch == nil {
			continue
		}
		rawSource := sourceMatch[1]

		ref := entities.ModuleRef{
			Name:      name,
			RawSource: rawSource,
			Source:    classifier.Classify(rawSource),
			Location:  entities.Location{Path: path, Line: line},
		}

		if versionMatch := versionAttrPattern.FindStringSubmatch(body); versionMatch != nil {
			ref.Constraint = parseConstraintString(versionMatch[1])
		}

		if dependsOnMatch := dependsOnPattern.FindStringSubmatch(body); dependsOnMatch != nil {
			for _, m := range moduleRefPattern.FindAllStringSubmatch(dependsOnMatch[1], -1) {
				ref.DependsOn = append(ref.DependsOn, m[1])
			}
		}

		refs.Modules = append(refs.Modules, ref)
	}

	for _, tfMatch := range terraformBlockPattern.FindAllStringSubmatch(content, -1) {
		blockKeyword, body := tfMatch[1], tfMatch[2]
		kind := entities.RuntimeTerraform
		if blockKeyword == "tofu" {
			kind = entities.RuntimeOpenTofu
		}

		idx := strings.Index(content, tfMatch[0])
		line := lineAt(content, idx)

		if reqMatch := requiredVersionPattern.FindStringSubmatch(body); reqMatch != nil {
			refs.Runtimes = append(refs.Runtimes, entities.RuntimeRef{
				Kind:       kind,
				Constraint: parseConstraintString(reqMatch[1]),
				Location:   entities.Location{Path: path, Line: line},
			})
		}

		if providersMatch := requiredProvidersBlock.FindStringSubmatch(body); providersMatch != nil {
			providersBody := providersMatch[1]
			providersLine := lineAt(content, idx+strings.Index(body, providersMatch[0]))
			refs.Providers = append(refs.Providers, parseProviderEntries(providersBody, path, providersLine)...)
		}
	}

	return refs
}

func parseProviderEntries(body, path string, line int) []entities.ProviderRef {
	var refs []entities.ProviderRef

	for _, m := range providerEntryPattern.FindAllStringSubmatch(body, -1) {
		switch {
		case m[1] != "":
			alias, inner := m[1], m[2]
			ref := entities.ProviderRef{Alias: alias, Location: entities.Location{Path: path, Line: line}}
			if sourceMatch := sourceAttrPattern.FindStringSubmatch(inner); sourceMatch != nil {
				ref.CanonicalSource = sourceMatch[1]
			}
			if versionMatch := versionAttrPattern.FindStringSubmatch(inner); versionMatch != nil {
				ref.Constraint = parseConstraintString(versionMatch[1])
			}
			refs = append(refs, ref)
		case m[3] != "":
			refs = append(refs, entities.ProviderRef{
				Alias:           m[3],
				CanonicalSource: m[4],
				Location:        entities.Location{Path: path, Line: line},
			})
		}
	}

	return refs
}

func lineAt(content string, byteOffset int) int {
	if byteOffset < 0 || byteOffset > len(content) {
		return 1
	}
	return strings.Count(content[:byteOffset], "\n") + 1
}
