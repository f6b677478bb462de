// Package scan enumerates ROM files and computes their content digests.
//
// Scanning yields lightweight file handles; digests are computed lazily and
// memoized so multiple catalog probes never re-read a disc image. A bounded
// worker pool warms digests concurrently ahead of matching, which is where
// nearly all of a run's time is spent.
package scan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"romrenamer/internal/digest"
	"romrenamer/internal/logging"
)

// Cache memoizes digests across runs. Implementations must only return a
// hit when they are confident the file content is unchanged.
type Cache interface {
	Lookup(path string, size int64, modTime time.Time) (digest.Set, bool)
	Store(path string, size int64, modTime time.Time, set digest.Set) error
}

// File is one regular file found under the scan root. Digest computation is
// deferred until Digests is first called and cached for the run's lifetime.
type File struct {
	Path    string
	RelPath string
	Size    int64
	ModTime time.Time

	scanner *Scanner
	once    sync.Once
	set     digest.Set
	err     error
}

// Digests returns the file's digest set, computing it on first use. The
// error is sticky: a file that failed to read once stays failed for the run.
func (f *File) Digests() (digest.Set, error) {
	f.once.Do(func() {
		f.set, f.err = f.scanner.sum(f)
	})
	return f.set, f.err
}

// Scanner walks directories and owns digest computation policy.
type Scanner struct {
	algos  []digest.Algorithm
	cache  Cache
	logger *slog.Logger
}

// New constructs a scanner computing the given algorithms. cache may be nil.
func New(algos []digest.Algorithm, cache Cache, logger *slog.Logger) *Scanner {
	if len(algos) == 0 {
		algos = digest.CatalogAlgorithms
	}
	return &Scanner{
		algos:  algos,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan walks root recursively and returns every regular file found.
// Symbolic links are never followed: linked files are not regular and
// WalkDir does not descend into linked directories, so cycles cannot occur.
// Unreadable subdirectories are logged and skipped rather than failing the
// scan. Enumeration order is not significant; callers sort by explicit keys.
func (s *Scanner) Scan(root string) ([]*File, error) {
	var files []*File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("scan root: %w", err)
			}
			s.logger.Warn("skipping unreadable path", logging.String("path", path), logging.Error(err))
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.logger.Warn("skipping unstattable file", logging.String("path", path), logging.Error(err))
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, &File{
			Path:    path,
			RelPath: rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			scanner: s,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("scan finished", logging.String("root", root), logging.Int("files", len(files)))
	return files, nil
}

func (s *Scanner) sum(f *File) (digest.Set, error) {
	if s.cache != nil {
		if set, ok := s.cache.Lookup(f.Path, f.Size, f.ModTime); ok {
			return set, nil
		}
	}
	set, err := digest.Sum(f.Path, s.algos)
	if err != nil {
		return digest.Set{}, err
	}
	if s.cache != nil {
		if err := s.cache.Store(f.Path, f.Size, f.ModTime, set); err != nil {
			s.logger.Warn("digest cache store failed", logging.String("path", f.Path), logging.Error(err))
		}
	}
	return set, nil
}
