// Package sourceinfo reads git provenance for input files so generated
// headers can record which revision they were built from.
package sourceinfo

import (
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/teranos/sdkgen/errors"
)

// Info is the last commit that touched a file.
type Info struct {
	Hash string
	Time time.Time
}

// ShortHash returns the abbreviated commit hash.
func (i Info) ShortHash() string {
	if len(i.Hash) >= 7 {
		return i.Hash[:7]
	}
	return i.Hash
}

// Lookup finds the most recent commit touching path in the repository that
// contains it.
func Lookup(path string) (Info, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Info{}, errors.Wrapf(err, "resolve %s", path)
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Info{}, errors.Wrapf(err, "open repository for %s", path)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return Info{}, errors.Wrap(err, "open worktree")
	}

	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		root = wt.Filesystem.Root()
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return Info{}, errors.Wrapf(err, "%s is outside %s", path, root)
	}
	rel = filepath.ToSlash(rel)

	iter, err := repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return Info{}, errors.Wrapf(err, "read history of %s", rel)
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return Info{}, errors.Wrapf(err, "no commit touches %s", rel)
	}
	return Info{Hash: commit.Hash.String(), Time: commit.Committer.When.UTC()}, nil
}

// Stamp returns the provenance header lines for path, or nil when the file
// is not tracked.
func Stamp(path string) []string {
	info, err := Lookup(path)
	if err != nil {
		return nil
	}
	return []string{
		"Source last modified: " + info.Time.Format(time.RFC3339),
		"Source version: " + info.ShortHash(),
	}
}
