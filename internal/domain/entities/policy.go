package entities

// Policies refines analyzer behavior beyond the fixed check sequence's
// built-in defaults. Populated from configuration; immutable after load.
type Policies struct {
	RequireVersionConstraint bool // default true; promotes missing-version to error
	RequireUpperBound        bool // promotes no-upper-bound from warning to error
	AllowedProviders         []string // glob patterns; empty means "all allowed"
	BlockedModules           []string // glob patterns
	SeverityOverrides        map[Code]Severity
}

// DefaultPolicies returns the analyzer's defaults when no configuration
// overrides them.
func DefaultPolicies() Policies {
	return Policies{
		RequireVersionConstraint: true,
		RequireUpperBound:        false,
		AllowedProviders:         nil,
		BlockedModules:           nil,
		SeverityOverrides:        map[Code]Severity{},
	}
}

// MatchKind distinguishes whether a deprecation rule matches by version
// range or by a literal Git ref.
type MatchKind int

const (
	MatchConstraint MatchKind = iota
	MatchGitRef
)

// DeprecationRule is one entry in a deprecations table. When MatchKind is
// MatchConstraint, MatchRange is the deprecated interval tested against the
// ref's declared constraint's lower bound. When MatchGitRef, MatchRefs lists
// the literal tags/commits that trigger the rule.
type DeprecationRule struct {
	MatchKind   MatchKind
	MatchRange  Range
	MatchRefs   []string
	Reason      string
	Severity    Severity
	Replacement string
}

// DeprecationTable holds the three lookup tables described in spec.md §4.5,
// keyed by runtime kind, module canonical source, and provider canonical
// source respectively. Immutable after configuration load and shared
// read-only across concurrent repository scans.
type DeprecationTable struct {
	Runtime   map[RuntimeKind][]DeprecationRule
	Modules   map[string][]DeprecationRule
	Providers map[string][]DeprecationRule
}

// EmptyDeprecationTable returns a DeprecationTable with all three maps
// initialized but empty.
func EmptyDeprecationTable() DeprecationTable {
	return DeprecationTable{
		Runtime:   map[RuntimeKind][]DeprecationRule{},
		Modules:   map[string][]DeprecationRule{},
		Providers: map[string][]DeprecationRule{},
	}
}
