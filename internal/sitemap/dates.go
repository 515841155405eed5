package sitemap

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/lotbuilder/internal/config"
	"git.home.luguber.info/inful/lotbuilder/internal/logfields"
)

var errStop = errors.New("stop")

// Dates picks the lastmod for each sitemap entry according to the configured
// source. Git lookups fall back to the build date.
type Dates struct {
	source config.LastmodSource
	build  time.Time
	git    *GitHistory
}

// NewDates returns a resolver. For the git source, probe is any path inside
// the repository (usually the inventory root); when it is not inside a
// repository the build date is used everywhere.
func NewDates(source config.LastmodSource, build time.Time, probe string) *Dates {
	d := &Dates{source: source, build: build}
	if source == config.LastmodGit {
		h, err := OpenGitHistory(probe)
		if err != nil {
			slog.Debug("No git history for sitemap lastmod, using build date",
				logfields.Path(probe), logfields.Error(err))
		} else {
			d.git = h
		}
	}
	return d
}

// Page returns the lastmod for a template-backed page such as the homepage.
func (d *Dates) Page(templatePath string) time.Time {
	if d.source == config.LastmodGit {
		return d.fromGit(templatePath)
	}
	return d.build
}

// Detail returns the lastmod for a vehicle detail page. pageLastmod is the
// date recorded in the page's own metadata.
func (d *Dates) Detail(folderDir string, pageLastmod time.Time) time.Time {
	switch d.source {
	case config.LastmodBuild:
		return d.build
	case config.LastmodGit:
		return d.fromGit(folderDir)
	default:
		if pageLastmod.IsZero() {
			return d.build
		}
		return pageLastmod
	}
}

func (d *Dates) fromGit(path string) time.Time {
	if d.git == nil || path == "" {
		return d.build
	}
	if when, ok := d.git.LastCommit(path); ok {
		return when
	}
	return d.build
}

// GitHistory answers "when was this path last committed" for one worktree.
type GitHistory struct {
	repo  *git.Repository
	root  string
	cache map[string]time.Time
}

// OpenGitHistory opens the repository containing path.
func OpenGitHistory(path string) (*GitHistory, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return &GitHistory{repo: repo, root: root, cache: map[string]time.Time{}}, nil
}

// LastCommit returns the committer date of the newest commit touching path
// (a file, or any file below a directory).
func (h *GitHistory) LastCommit(path string) (time.Time, bool) {
	rel, ok := h.relative(path)
	if !ok {
		return time.Time{}, false
	}
	if when, hit := h.cache[rel]; hit {
		return when, !when.IsZero()
	}

	when := h.lookup(rel)
	h.cache[rel] = when
	return when, !when.IsZero()
}

func (h *GitHistory) relative(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(h.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (h *GitHistory) lookup(rel string) time.Time {
	ref, err := h.repo.Head()
	if err != nil {
		return time.Time{}
	}
	match := func(p string) bool {
		return rel == "." || p == rel || strings.HasPrefix(p, rel+"/")
	}
	iter, err := h.repo.Log(&git.LogOptions{From: ref.Hash(), PathFilter: match})
	if err != nil {
		return time.Time{}
	}
	defer iter.Close()

	var when time.Time
	err = iter.ForEach(func(c *object.Commit) error {
		when = c.Committer.When
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		slog.Debug("git log failed", logfields.Path(rel), logfields.Error(err))
		return time.Time{}
	}
	return when
}
