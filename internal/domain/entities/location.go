package entities

// Location pinpoints where a Ref or Finding came from.
type Location struct {
	Repository string // repository label, e.g. directory basename or remote name
	Path       string // file path, relative to the repository root
	Line       int    // 1-based line number of the opening of the declaring block
}

// Repository represents one working-tree root handed to the engine by the
// VCS collaborator (a shallow clone, or a local path in single-path mode).
type Repository struct {
	Label         string // short name used in reports; directory basename or remote name
	Root          string // absolute filesystem path to the working tree
	Organization  string
	Project       string // Azure DevOps only; empty for GitHub/GitLab
	DefaultBranch string
	RemoteURL     string
	ProviderName  string
}

// File is one entry discovered while walking a Repository's working tree.
type File struct {
	Path  string // relative to the repository root
	IsDir bool
}
