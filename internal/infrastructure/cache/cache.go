// Package cache implements the content-addressed repository cache of
// spec.md §6: $CACHE_HOME/repos/<hash(url)>, a shallow clone per entry,
// refreshed on access once it is older than FreshThreshold. Options.TTL is
// stored but not consulted when deciding whether to fetch.
//
// Grounded on internal/domain/commands/local_command.go's use of
// github.com/go-git/go-git/v5 for local git plumbing, generalized from a
// single local-path flow into a full clone-or-fetch-on-access cache; the
// per-entry lock file is new infrastructure, reusing github.com/gofrs/flock
// from the gruntwork-io-terragrunt example since the teacher itself has no
// file-locking dependency but a cache shared across concurrent repository
// scans needs one.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/gofrs/flock"
	logger "github.com/sirupsen/logrus"

	"github.com/monphare/monphare/internal/domain/entities"
)

// Options configures the cache's directory layout and refresh policy.
type Options struct {
	Directory             string
	TTL                   time.Duration
	FreshThreshold        time.Duration
	Token                 string // basic-auth password for an authenticated clone URL
}

// Cache implements repositories.RepoCache over a directory of shallow
// clones keyed by sha256(remoteURL).
type Cache struct {
	opts Options
}

// New returns a Cache rooted at opts.Directory, creating it if absent.
func New(opts Options) (*Cache, error) {
	if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %q: %w", opts.Directory, err)
	}
	return &Cache{opts: opts}, nil
}

// Fetch returns the local working tree root for remoteURL, cloning fresh or
// reusing (and optionally refreshing) a prior clone. The per-entry lock file
// serializes concurrent Fetch calls for the same URL across goroutines and
// processes sharing the cache directory.
func (c *Cache) Fetch(ctx context.Context, remoteURL, cloneURL, branch string) (entities.Repository, error) {
	entryDir := c.entryPath(remoteURL)

	lock := flock.New(entryDir + ".lock")
	if err := lock.Lock(); err != nil {
		return entities.Repository{}, fmt.Errorf("failed to lock cache entry for %q: %w", remoteURL, err)
	}
	defer lock.Unlock() //nolint:errcheck

	info, statErr := os.Stat(filepath.Join(entryDir, ".git"))
	switch {
	case statErr == nil:
		if time.Since(info.ModTime()) > c.opts.FreshThreshold {
			if err := c.update(ctx, entryDir, branch); err != nil {
				logger.Warnf("failed to refresh cache entry for %q, using stale clone: %v", remoteURL, err)
			}
		}
	default:
		if err := c.clone(ctx, entryDir, cloneURL, branch); err != nil {
			return entities.Repository{}, err
		}
	}

	return entities.Repository{
		Label:         filepath.Base(remoteURL),
		Root:          entryDir,
		RemoteURL:     remoteURL,
		DefaultBranch: branch,
	}, nil
}

func (c *Cache) clone(ctx context.Context, dir, cloneURL, branch string) error {
	opts := &git.CloneOptions{
		URL:          cloneURL,
		Depth:        1,
		SingleBranch: true,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}
	if c.opts.Token != "" {
		opts.Auth = &http.BasicAuth{Username: "x-access-token", Password: c.opts.Token}
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return fmt.Errorf("failed to clone %q: %w", cloneURL, err)
	}
	return nil
}

func (c *Cache) update(ctx context.Context, dir, branch string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open cached repository at %q: %w", dir, err)
	}

	fetchOpts := &git.FetchOptions{Depth: 1}
	if c.opts.Token != "" {
		fetchOpts.Auth = &http.BasicAuth{Username: "x-access-token", Password: c.opts.Token}
	}

	if err := repo.FetchContext(ctx, fetchOpts); err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to fetch updates: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	checkoutOpts := &git.CheckoutOptions{Force: true}
	if branch != "" {
		checkoutOpts.Branch = plumbing.NewRemoteReferenceName("origin", branch)
	}
	if err := worktree.Checkout(checkoutOpts); err != nil {
		return fmt.Errorf("failed to check out latest revision: %w", err)
	}

	now := time.Now()
	return os.Chtimes(filepath.Join(dir, ".git"), now, now)
}

func (c *Cache) entryPath(remoteURL string) string {
	sum := sha256.Sum256([]byte(remoteURL))
	return filepath.Join(c.opts.Directory, "repos", hex.EncodeToString(sum[:]))
}

// Evict removes cache entries whose directory exceeds maxSizeMB in total,
// oldest (by working-tree mtime) first.
func Evict(directory string, maxSizeMB int64) error {
	root := filepath.Join(directory, "repos")
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	type entryInfo struct {
		path    string
		size    int64
		modTime time.Time
	}

	var infos []entryInfo
	var total int64
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name())
		size := dirSize(path)
		info, statErr := e.Info()
		modTime := time.Now()
		if statErr == nil {
			modTime = info.ModTime()
		}
		infos = append(infos, entryInfo{path: path, size: size, modTime: modTime})
		total += size
	}

	limit := maxSizeMB * 1024 * 1024
	for total > limit && len(infos) > 0 {
		oldestIdx := 0
		for i, e := range infos {
			if e.modTime.Before(infos[oldestIdx].modTime) {
				oldestIdx = i
			}
		}
		oldest := infos[oldestIdx]
		if err := os.RemoveAll(oldest.path); err != nil {
			return fmt.Errorf("failed to evict cache entry %q: %w", oldest.path, err)
		}
		total -= oldest.size
		infos = append(infos[:oldestIdx], infos[oldestIdx+1:]...)
	}

	return nil
}

func dirSize(path string) int64 {
	var total int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total
}
