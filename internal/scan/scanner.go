// internal/scan/scanner.go
package scan

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"

	"vigil/internal/errors"
	"vigil/internal/snapshot"

	"go.uber.org/zap"
)

// SkippedEntry records a path the scanner visited but could not (or by
// policy does not) include in the snapshot.
type SkippedEntry struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Options configures Scanner behavior.
type Options struct {
	// NewHash constructs the digest function. Defaults to sha256.New.
	// The hash must produce snapshot.DigestSize bytes.
	NewHash func() hash.Hash
	// Workers is the number of concurrent digest workers. 0 means NumCPU.
	Workers int
	// Excludes are glob patterns matched against slash-normalized
	// relative paths; matching files and directories are skipped.
	Excludes []string
	// Cache, when set, lets repeated scans skip re-hashing files whose
	// size and mtime are unchanged.
	Cache  *DigestCache
	Logger *zap.Logger
}

// Scanner walks a directory tree and reduces it to a Snapshot.
type Scanner struct {
	opts   Options
	logger *zap.Logger
}

func New(opts Options) *Scanner {
	if opts.NewHash == nil {
		opts.NewHash = sha256.New
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Scanner{opts: opts, logger: opts.Logger}
}

type fileJob struct {
	abs  string
	rel  string
	info fs.FileInfo
}

type fileResult struct {
	rel    string
	digest snapshot.Digest
	err    error
}

// Scan walks root and returns a Snapshot of every regular file below it,
// plus the entries that were skipped. Per-file read errors are collected,
// never fatal; a bad root fails before any traversal starts.
//
// Symbolic links are never followed. That is the cycle policy: a link can
// therefore not lead the walk back to an ancestor, and every link is
// recorded as skipped so the caller can see it was not fingerprinted.
func (s *Scanner) Scan(root string) (snapshot.Snapshot, []SkippedEntry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, errors.RootNotFound(fmt.Sprintf("resolving root %s", root), err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, nil, errors.RootNotFound(fmt.Sprintf("root %s not found", root), err)
	}
	if !info.IsDir() {
		return nil, nil, errors.RootNotFound(fmt.Sprintf("root %s is not a directory", root), nil)
	}

	jobs := make(chan fileJob)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				digest, err := s.digestFile(job)
				results <- fileResult{rel: job.rel, digest: digest, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collector goroutine is the single owner of the snapshot map.
	snap := make(snapshot.Snapshot)
	var skipped []SkippedEntry
	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		for res := range results {
			if res.err != nil {
				s.logger.Warn("skipping unreadable file",
					zap.String("path", res.rel),
					zap.Error(res.err))
				skipped = append(skipped, SkippedEntry{Path: res.rel, Reason: res.err.Error()})
				continue
			}
			snap[res.rel] = res.digest
		}
	}()

	walkSkipped := s.walk(absRoot, jobs)
	close(jobs)
	collectWg.Wait()

	skipped = append(skipped, walkSkipped...)
	return snap, skipped, nil
}

// walk traverses the tree iteratively with an explicit worklist, feeding
// regular files to the digest workers. Returns entries skipped during
// traversal itself (symlinks, unreadable directories, special files).
func (s *Scanner) walk(absRoot string, jobs chan<- fileJob) []SkippedEntry {
	var skipped []SkippedEntry

	pending := []string{absRoot}
	for len(pending) > 0 {
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			rel := s.relKey(absRoot, dir)
			s.logger.Warn("skipping unreadable directory",
				zap.String("path", rel),
				zap.Error(err))
			skipped = append(skipped, SkippedEntry{Path: rel, Reason: err.Error()})
			continue
		}

		for _, entry := range entries {
			abs := filepath.Join(dir, entry.Name())
			rel := s.relKey(absRoot, abs)

			if s.excluded(rel) {
				continue
			}

			switch {
			case entry.Type()&fs.ModeSymlink != 0:
				skipped = append(skipped, SkippedEntry{Path: rel, Reason: "symbolic link"})

			case entry.IsDir():
				pending = append(pending, abs)

			case entry.Type().IsRegular():
				info, err := entry.Info()
				if err != nil {
					// Vanished between listing and stat.
					skipped = append(skipped, SkippedEntry{Path: rel, Reason: err.Error()})
					continue
				}
				jobs <- fileJob{abs: abs, rel: rel, info: info}

			default:
				skipped = append(skipped, SkippedEntry{Path: rel, Reason: "not a regular file"})
			}
		}
	}

	return skipped
}

func (s *Scanner) relKey(absRoot, abs string) string {
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil {
		return snapshot.NormalizePath(abs)
	}
	return snapshot.NormalizePath(rel)
}

func (s *Scanner) excluded(rel string) bool {
	for _, pattern := range s.opts.Excludes {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

// digestFile streams the file's content through the hash function so
// arbitrarily large files never have to fit in memory.
func (s *Scanner) digestFile(job fileJob) (snapshot.Digest, error) {
	if s.opts.Cache != nil {
		if d, ok := s.opts.Cache.Get(job.rel, job.info); ok {
			return d, nil
		}
	}

	var digest snapshot.Digest

	f, err := os.Open(job.abs)
	if err != nil {
		return digest, err
	}
	defer f.Close()

	h := s.opts.NewHash()
	if _, err := io.Copy(h, f); err != nil {
		return digest, fmt.Errorf("reading %s: %w", job.rel, err)
	}

	sum := h.Sum(nil)
	if len(sum) != snapshot.DigestSize {
		return digest, fmt.Errorf("hash produced %d bytes, want %d", len(sum), snapshot.DigestSize)
	}
	copy(digest[:], sum)

	if s.opts.Cache != nil {
		s.opts.Cache.Add(job.rel, job.info, digest)
	}
	return digest, nil
}
