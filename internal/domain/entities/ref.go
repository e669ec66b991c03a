package entities

// ModuleRef is one `module` block extracted from a .tf file. Created by the
// extractor and immutable thereafter.
type ModuleRef struct {
	Name       string // local identifier: module "<name>" { ... }
	RawSource  string
	Source     ModuleSource
	Constraint *Constraint // nil means no version attribute was declared
	DependsOn  []string    // other local module names named in an explicit depends_on
	Location   Location
}

// ProviderRef is one entry in a `required_providers` block.
type ProviderRef struct {
	Alias          string // local name inside required_providers
	CanonicalSource string // "namespace/name", e.g. "hashicorp/aws"
	Constraint     *Constraint
	Location       Location
}

// RuntimeKind distinguishes a required_version declaration that targets
// Terraform from one that targets OpenTofu.
type RuntimeKind int

const (
	RuntimeTerraform RuntimeKind = iota
	RuntimeOpenTofu
)

func (k RuntimeKind) String() string {
	if k == RuntimeOpenTofu {
		return "opentofu"
	}
	return "terraform"
}

// RuntimeRef is one `required_version` declaration inside a terraform (or
// tofu) block.
type RuntimeRef struct {
	Kind       RuntimeKind
	Constraint *Constraint
	Location   Location
}

// ParseIssue records a file the extractor could not parse with either
// strategy. Under the ContinueOnError policy the file is skipped and
// recorded as a scan warning; without it, extraction aborts.
type ParseIssue struct {
	Path    string
	Message string
}

// ExtractResult is the full output of running the extractor over one
// repository's working tree.
type ExtractResult struct {
	Modules     []ModuleRef
	Providers   []ProviderRef
	Runtimes    []RuntimeRef
	ParseIssues []ParseIssue
}
