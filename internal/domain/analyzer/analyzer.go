// Package analyzer runs the fixed check sequence and deprecation matcher
// over extracted refs, producing findings.
//
// Grounded on the sdk.Finding{Rule, Message, File, Severity} shape used
// across other_examples/santosr2-TerraTidy's lint and policy engines, and on
// that example's Engine.Run(ctx, files) → []Finding pure-function design —
// adapted here to drop the context.Context parameter, since analysis never
// suspends, and to emit MonPhare's own closed Finding struct.
package analyzer

import (
	"sort"

	"github.com/gobwas/glob"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/version"
)

// Analyze runs the fixed check sequence against every module and provider
// ref, followed by the deprecation pass and policy application, and returns
// the findings in (path, line, code) order.
func Analyze(refs entities.ExtractResult, policies entities.Policies, deprecations entities.DeprecationTable) []entities.Finding {
	var findings []entities.Finding

	for _, ref := range refs.Modules {
		findings = append(findings, checkModule(ref, policies)...)
		findings = append(findings, matchDeprecations(ref.Source.Canonical(), ref.Constraint, ref.Source.GitRef, deprecations.Modules, entities.CodeDeprecatedModule, ref.Location)...)
	}

	for _, ref := range refs.Providers {
		findings = append(findings, checkProvider(ref, policies)...)
		findings = append(findings, matchDeprecations(ref.CanonicalSource, ref.Constraint, "", deprecations.Providers, entities.CodeDeprecatedProvider, ref.Location)...)
	}

	for _, ref := range refs.Runtimes {
		findings = append(findings, checkRuntimeConstraint(ref.Constraint, ref.Location)...)
		findings = append(findings, matchRuntimeDeprecations(ref, deprecations.Runtime)...)
	}

	applySeverityOverrides(findings, policies.SeverityOverrides)
	sortFindings(findings)

	return findings
}

// checkModule runs the shared constraint checks plus the module-specific
// policy checks (blocked_modules). Local module sources are exempt from
// every version-related check: a local path has no registry to pin against.
func checkModule(ref entities.ModuleRef, policies entities.Policies) []entities.Finding {
	var findings []entities.Finding

	if ref.Source.Kind != entities.SourceLocal {
		findings = append(findings, checkConstraint(ref.Constraint, policies, ref.Location)...)
	}

	if matchesAnyGlob(policies.BlockedModules, ref.Source.Canonical()) {
		findings = append(findings, entities.Finding{
			Code:     entities.CodeBlockedModule,
			Severity: entities.DefaultSeverity(entities.CodeBlockedModule),
			Message:  "module " + ref.Source.Canonical() + " is blocked by policy",
			Location: ref.Location,
		})
	}

	return findings
}

// checkProvider runs the shared constraint checks plus allowed_providers.
func checkProvider(ref entities.ProviderRef, policies entities.Policies) []entities.Finding {
	findings := checkConstraint(ref.Constraint, policies, ref.Location)

	if len(policies.AllowedProviders) > 0 && !matchesAnyGlob(policies.AllowedProviders, ref.CanonicalSource) {
		findings = append(findings, entities.Finding{
			Code:     entities.CodeDisallowedProvider,
			Severity: entities.DefaultSeverity(entities.CodeDisallowedProvider),
			Message:  "provider " + ref.CanonicalSource + " is not in the allowed_providers list",
			Location: ref.Location,
		})
	}

	return findings
}

// checkRuntimeConstraint runs the same check sequence checkModule/
// checkProvider use against a required_version declaration, minus the
// module/provider-only policies. This is deliberately wider than strictly
// necessary: missing-version can never fire here since a RuntimeRef only
// exists when required_version is present, but running the full sequence
// keeps runtime constraints held to the same broad/no-upper-bound/exact/
// prerelease bar as every other pinned version in the repository.
func checkRuntimeConstraint(c *entities.Constraint, loc entities.Location) []entities.Finding {
	return checkConstraint(c, entities.DefaultPolicies(), loc)
}

// checkConstraint implements the fixed, ordered check sequence of spec.md
// §4.5 for one ref's declared constraint. Checks 2-7 stop as soon as the
// constraint fails to parse; the remaining checks assume a parsed
// constraint.
func checkConstraint(c *entities.Constraint, policies entities.Policies, loc entities.Location) []entities.Finding {
	if c == nil {
		severity := entities.SeverityError
		if !policies.RequireVersionConstraint {
			severity = entities.SeverityWarning
		}
		return []entities.Finding{{
			Code:     entities.CodeMissingVersion,
			Severity: severity,
			Message:  "no version constraint declared",
			Location: loc,
		}}
	}

	if len(c.Predicates) == 0 {
		return []entities.Finding{{
			Code:     entities.CodeUnparseableConstraint,
			Severity: entities.DefaultSeverity(entities.CodeUnparseableConstraint),
			Message:  "version constraint " + quote(c.Raw) + " could not be parsed",
			Location: loc,
		}}
	}

	var findings []entities.Finding

	bounds := version.Bounds(*c)

	switch {
	case c.IsWildcardOnly():
		findings = append(findings, entities.Finding{
			Code:     entities.CodeWildcardConstraint,
			Severity: entities.DefaultSeverity(entities.CodeWildcardConstraint),
			Message:  "version constraint is an unrestricted wildcard",
			Location: loc,
		})
	case isBroadConstraint(*c, bounds):
		findings = append(findings, entities.Finding{
			Code:     entities.CodeBroadConstraint,
			Severity: entities.DefaultSeverity(entities.CodeBroadConstraint),
			Message:  "version constraint " + quote(c.Raw) + " admits every released version from 0.0.0",
			Location: loc,
		})
	case !version.HasUpperBound(bounds) && hasOpenLowerPredicate(*c) && !isSingleEqOrPessimistic(*c):
		severity := entities.SeverityWarning
		if policies.RequireUpperBound {
			severity = entities.SeverityError
		}
		findings = append(findings, entities.Finding{
			Code:     entities.CodeNoUpperBound,
			Severity: severity,
			Message:  "version constraint " + quote(c.Raw) + " has no upper bound",
			Location: loc,
		})
	}

	if isExactVersion(*c) {
		findings = append(findings, entities.Finding{
			Code:     entities.CodeExactVersion,
			Severity: entities.DefaultSeverity(entities.CodeExactVersion),
			Message:  "version constraint " + quote(c.Raw) + " pins an exact version",
			Location: loc,
		})
	}

	if hasPrereleasePredicate(*c) {
		findings = append(findings, entities.Finding{
			Code:     entities.CodePrereleaseVersion,
			Severity: entities.DefaultSeverity(entities.CodePrereleaseVersion),
			Message:  "version constraint " + quote(c.Raw) + " targets a pre-release version",
			Location: loc,
		})
	}

	return findings
}

func isBroadConstraint(c entities.Constraint, bounds entities.Range) bool {
	if version.HasUpperBound(bounds) {
		return false
	}
	if bounds.Lower.Kind != entities.BoundInclusive || !bounds.Lower.Value.IsZero() {
		return false
	}
	for _, p := range c.Predicates {
		if p.Op == entities.OpGe && p.Value.IsZero() {
			return true
		}
	}
	return false
}

func hasOpenLowerPredicate(c entities.Constraint) bool {
	for _, p := range c.Predicates {
		if p.Op == entities.OpGe || p.Op == entities.OpGt {
			return true
		}
	}
	return false
}

func isSingleEqOrPessimistic(c entities.Constraint) bool {
	if len(c.Predicates) != 1 {
		return false
	}
	return c.Predicates[0].Op == entities.OpEq || c.Predicates[0].Op == entities.OpPessimistic
}

func isExactVersion(c entities.Constraint) bool {
	return len(c.Predicates) == 1 && c.Predicates[0].Op == entities.OpEq
}

func hasPrereleasePredicate(c entities.Constraint) bool {
	for _, p := range c.Predicates {
		if p.Value.IsPrerelease() {
			return true
		}
	}
	return false
}

// matchDeprecations tests source against the rules registered for it in
// table, emitting one finding per matching rule. gitRef is the module's
// pinned Git ref, if its source is a Git URL; it is ignored by
// Constraint-kind rules.
func matchDeprecations(source string, c *entities.Constraint, gitRef string, table map[string][]entities.DeprecationRule, code entities.Code, loc entities.Location) []entities.Finding {
	if table == nil {
		return nil
	}

	rules, ok := table[source]
	if !ok {
		return nil
	}

	var findings []entities.Finding
	for _, rule := range rules {
		if ruleMatches(rule, c, gitRef) {
			findings = append(findings, findingFromRule(rule, code, loc))
		}
	}
	return findings
}

func matchRuntimeDeprecations(ref entities.RuntimeRef, table map[entities.RuntimeKind][]entities.DeprecationRule) []entities.Finding {
	if table == nil {
		return nil
	}

	rules, ok := table[ref.Kind]
	if !ok {
		return nil
	}

	var findings []entities.Finding
	for _, rule := range rules {
		if ruleMatches(rule, ref.Constraint, "") {
			findings = append(findings, findingFromRule(rule, entities.CodeDeprecatedRuntime, ref.Location))
		}
	}
	return findings
}

// ruleMatches implements the deprecation-matching semantics of spec.md
// §4.5: for a Constraint-kind rule, the ref's declared constraint's lower
// bound must fall within the rule's deprecated interval — "the declared
// version may be the rule's deprecated version" — not full containment. For
// a GitRef-kind rule, gitRef must equal one of the listed refs exactly.
func ruleMatches(rule entities.DeprecationRule, c *entities.Constraint, gitRef string) bool {
	switch rule.MatchKind {
	case entities.MatchGitRef:
		for _, candidate := range rule.MatchRefs {
			if candidate == gitRef {
				return true
			}
		}
		return false
	case entities.MatchConstraint:
		if c == nil || len(c.Predicates) == 0 {
			return false
		}
		bounds := version.Bounds(*c)
		if bounds.Lower.Kind == entities.BoundNone {
			return false
		}
		return version.Admits(rule.MatchRange, bounds.Lower.Value)
	default:
		return false
	}
}

func findingFromRule(rule entities.DeprecationRule, code entities.Code, loc entities.Location) entities.Finding {
	severity := rule.Severity
	if severity == "" {
		severity = entities.DefaultSeverity(code)
	}
	return entities.Finding{
		Code:        code,
		Severity:    severity,
		Message:     rule.Reason,
		Suggestion:  rule.Replacement,
		Location:    loc,
		Replacement: rule.Replacement,
	}
}

func applySeverityOverrides(findings []entities.Finding, overrides map[entities.Code]entities.Severity) {
	if len(overrides) == 0 {
		return
	}
	for i := range findings {
		if sev, ok := overrides[findings[i].Code]; ok {
			findings[i].Severity = sev
		}
	}
}

func sortFindings(findings []entities.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Location.Path != b.Location.Path {
			return a.Location.Path < b.Location.Path
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		return a.Code < b.Code
	})
}

func matchesAnyGlob(patterns []string, candidate string) bool {
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			continue
		}
		if g.Match(candidate) {
			return true
		}
	}
	return false
}

func quote(s string) string {
	return "\"" + s + "\""
}
