// Package discovery walks the workspace tree, classifies what it finds, and
// assembles immutable snapshots.
package discovery

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moby/patternmatcher"
	"github.com/openclaw/dashd/config"
	"github.com/openclaw/dashd/errors"
	"github.com/sirupsen/logrus"
)

// Observation is one filesystem entry seen during a scan.
type Observation struct {
	Path   string
	Name   string
	Parent string
	Dir    bool
	MTime  time.Time

	// Children holds the entry names inside a directory observation.
	Children []string

	// Excerpt holds the head of small README/config files, used for
	// descriptions and capability parsing. Nil for everything else.
	Excerpt []byte
}

// Scanner produces a finite sequence of observations from a workspace root.
// Each Scan re-walks from scratch; there is no incremental diffing.
type Scanner struct {
	root        string
	matcher     *patternmatcher.PatternMatcher
	excerptSize int
	logger      *logrus.Entry
}

// NewScanner builds a scanner for the configured workspace root.
func NewScanner(cfg *config.Config, logger *logrus.Entry) (*Scanner, error) {
	matcher, err := patternmatcher.New(cfg.Discovery.IgnorePatterns)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid discovery.ignore_patterns")
	}
	return &Scanner{
		root:        cfg.WorkspaceRoot,
		matcher:     matcher,
		excerptSize: cfg.Discovery.ContentExcerptBytes,
		logger:      logger,
	}, nil
}

// Root returns the workspace root path.
func (s *Scanner) Root() string { return s.root }

// Scan walks the workspace and returns all observations in walk order.
// Unreadable subtrees are skipped with a warning; only an unavailable root
// fails the scan.
func (s *Scanner) Scan(ctx context.Context) ([]Observation, error) {
	info, err := os.Stat(s.root)
	if err != nil || !info.IsDir() {
		return nil, errors.WorkspaceUnavailable(s.root, err)
	}

	var observations []Observation

	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == s.root {
				return errors.WorkspaceUnavailable(s.root, err)
			}
			s.logger.WithError(err).Warnf("Subtree not readable, skipping: %s", path)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == s.root {
			return nil
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr == nil {
			ignored, matchErr := s.matcher.MatchesOrParentMatches(rel)
			if matchErr == nil && ignored {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		obs, obsErr := s.observe(path, d)
		if obsErr != nil {
			s.logger.WithError(obsErr).Warnf("Subtree not readable, skipping: %s", path)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		observations = append(observations, obs)
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, errors.ErrCodeWorkspaceUnavailable) {
			return nil, walkErr
		}
		return nil, errors.WorkspaceUnavailable(s.root, walkErr)
	}

	return observations, nil
}

// observe reads the shallow metadata for a single entry.
func (s *Scanner) observe(path string, d fs.DirEntry) (Observation, error) {
	info, err := d.Info()
	if err != nil {
		return Observation{}, err
	}

	obs := Observation{
		Path:   path,
		Name:   d.Name(),
		Parent: filepath.Dir(path),
		Dir:    d.IsDir(),
		MTime:  info.ModTime(),
	}

	if d.IsDir() {
		entries, readErr := os.ReadDir(path)
		if readErr != nil {
			return Observation{}, readErr
		}
		obs.Children = make([]string, 0, len(entries))
		for _, entry := range entries {
			obs.Children = append(obs.Children, entry.Name())
		}
		return obs, nil
	}

	if s.wantsExcerpt(d.Name(), info.Size()) {
		excerpt, readErr := readHead(path, s.excerptSize)
		if readErr != nil {
			s.logger.WithError(readErr).Debugf("Failed to read excerpt: %s", path)
		} else {
			obs.Excerpt = excerpt
		}
	}
	return obs, nil
}

// wantsExcerpt reports whether a file's head content is useful to the
// classifier: README-type files and small yaml/json configs.
func (s *Scanner) wantsExcerpt(name string, size int64) bool {
	if size > int64(s.excerptSize) {
		return false
	}
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "readme") {
		return true
	}
	switch filepath.Ext(lower) {
	case ".yml", ".yaml", ".json":
		return true
	}
	return false
}

func readHead(path string, limit int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(limit)))
	if err != nil {
		return nil, err
	}
	return data, nil
}
