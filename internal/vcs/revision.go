// Package vcs stamps builds with the revision of the source tree.
package vcs

import (
	git "github.com/go-git/go-git/v6"
)

// Revision returns the abbreviated commit hash of the repository containing
// dir, searching upward for the .git directory. Returns an error when dir is
// not inside a repository; callers treat the stamp as best-effort.
func Revision(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	hash := head.Hash().String()
	if len(hash) > 12 {
		hash = hash[:12]
	}
	return hash, nil
}
