// internal/checker/checker.go
package checker

import (
	"fmt"

	"vigil/internal/baseline"
	"vigil/internal/diff"
	"vigil/internal/history"
	"vigil/internal/scan"
	"vigil/internal/snapshot"

	"go.uber.org/zap"
)

// Checker wires the scanner, baseline store and history store into the
// two operations the CLI exposes.
type Checker struct {
	// Scanner serves Create and keeps a digest cache so repeated
	// baselines over an unchanged tree skip re-hashing.
	Scanner *scan.Scanner
	// Verifier serves Check with the cache bypassed: a tamper that
	// preserves size and mtime must never be answered from the cache.
	Verifier *scan.Scanner
	Store    *baseline.Store
	History  *history.Store
	Cache    *scan.DigestCache
	Logger   *zap.Logger
}

const defaultCacheSize = 4096

// Options configures a Checker.
type Options struct {
	Scan scan.Options
	// CacheSize bounds the digest cache used by Create. 0 means a
	// default; the cache in Scan.Options wins when set.
	CacheSize int
	// Compress writes baselines zstd-compressed.
	Compress bool
	// HistoryPath, when set, opens a check-history database there.
	HistoryPath string
	Logger      *zap.Logger
}

func New(opts Options) (*Checker, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scan.Logger == nil {
		opts.Scan.Logger = opts.Logger
	}

	if opts.Scan.Cache == nil {
		size := opts.CacheSize
		if size <= 0 {
			size = defaultCacheSize
		}
		cache, err := scan.NewDigestCache(size)
		if err != nil {
			return nil, fmt.Errorf("initializing digest cache: %w", err)
		}
		opts.Scan.Cache = cache
	}
	verifyOpts := opts.Scan
	verifyOpts.Cache = nil

	c := &Checker{
		Scanner:  scan.New(opts.Scan),
		Verifier: scan.New(verifyOpts),
		Store:    &baseline.Store{Compress: opts.Compress},
		Cache:    opts.Scan.Cache,
		Logger:   opts.Logger,
	}

	if opts.HistoryPath != "" {
		hist, err := history.Open(opts.HistoryPath)
		if err != nil {
			return nil, fmt.Errorf("initializing history: %w", err)
		}
		c.History = hist
	}

	return c, nil
}

func (c *Checker) Close() error {
	if c.History != nil {
		return c.History.Close()
	}
	return nil
}

// Create scans root and persists the result as the new baseline,
// replacing any previous one wholesale.
func (c *Checker) Create(root, baselinePath string) (snapshot.Snapshot, []scan.SkippedEntry, error) {
	snap, skipped, err := c.Scanner.Scan(root)
	if err != nil {
		return nil, nil, err
	}

	if err := c.Store.Save(snap, root, baselinePath); err != nil {
		return nil, nil, err
	}

	c.Logger.Info("baseline created",
		zap.String("root", root),
		zap.String("baseline", baselinePath),
		zap.Int("files", len(snap)),
		zap.Int("skipped", len(skipped)))

	return snap, skipped, nil
}

// Result is everything a check produced, handed to the CLI for rendering.
type Result struct {
	Report   *diff.Report
	Skipped  []scan.SkippedEntry
	Baseline *baseline.Record
}

// Check loads the baseline, scans root and classifies every path. A
// missing or corrupt baseline aborts before any scanning happens. The
// scan always re-reads file content (see Verifier).
func (c *Checker) Check(root, baselinePath string) (*Result, error) {
	base, record, err := c.Store.Load(baselinePath)
	if err != nil {
		return nil, err
	}

	current, skipped, err := c.Verifier.Scan(root)
	if err != nil {
		return nil, err
	}

	report := diff.Compare(base, current)

	if c.History != nil {
		rec := &history.CheckRecord{
			Root:         root,
			BaselinePath: baselinePath,
			Unchanged:    len(report.Unchanged),
			Modified:     len(report.Modified),
			Added:        len(report.Added),
			Removed:      len(report.Removed),
			Skipped:      len(skipped),
		}
		if err := c.History.Append(rec); err != nil {
			// History is advisory; the check result still stands.
			c.Logger.Warn("recording check history", zap.Error(err))
		}
	}

	return &Result{Report: report, Skipped: skipped, Baseline: record}, nil
}
