package analysis

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/commons/logger"
	"golang.org/x/time/rate"

	"github.com/flanksource/colorize/models"
)

// DefaultBatchSize is how many files a scan reads per batch when no batch
// size is configured. Batching bounds peak memory for large workspaces.
const DefaultBatchSize = 100

// ScanOptions controls a workspace scan.
type ScanOptions struct {
	// Include globs (doublestar syntax, relative to the scan root). Empty
	// means every file.
	Include []string
	// Exclude globs; a file matching any of these is skipped.
	Exclude []string
	// MaxFileSize is the per-file byte ceiling. Files over it are reported
	// as size-limit errors, never read or truncated. <= 0 uses
	// DefaultMaxFileSize.
	MaxFileSize int64
	// BatchSize is the number of files read per batch. <= 0 uses
	// DefaultBatchSize.
	BatchSize int
}

// Scanner walks a workspace and streams back file contents in fixed-size
// batches. Per-file failures are collected alongside the successful reads
// and never abort the scan.
type Scanner struct {
	// limiter paces batch starts so a huge workspace cannot monopolize the
	// process the moment a scan kicks off.
	limiter *rate.Limiter
}

// NewScanner creates a workspace scanner.
func NewScanner() *Scanner {
	return &Scanner{
		limiter: rate.NewLimiter(rate.Limit(20), 20), // 20 batches/second max
	}
}

// Scan walks root, matches files against the include/exclude globs, and
// reads the survivors in batches. The returned result carries both the
// file contents and the per-file errors; callers decide how to surface the
// latter. If any size-limit errors occurred, a single aggregate warning is
// logged for the whole scan.
func (s *Scanner) Scan(ctx context.Context, root string, opts ScanOptions) (*models.ScanResult, error) {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	paths, err := s.matchFiles(root, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to walk workspace %s: %w", root, err)
	}
	logger.Debugf("scanning %d files under %s in batches of %d", len(paths), root, opts.BatchSize)

	result := &models.ScanResult{}
	for start := 0; start < len(paths); start += opts.BatchSize {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		end := start + opts.BatchSize
		if end > len(paths) {
			end = len(paths)
		}
		s.readBatch(paths[start:end], opts.MaxFileSize, result)
	}

	if skipped := result.SizeLimitErrors(); len(skipped) > 0 {
		logger.Warnf("skipped %d files exceeding the %d byte limit", len(skipped), opts.MaxFileSize)
	}
	return result, nil
}

// matchFiles walks the tree and applies include/exclude globs against
// slash-normalized paths relative to root.
func (s *Scanner) matchFiles(root string, opts ScanOptions) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			// Skip hidden and vendor directories
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if !matchAny(opts.Include, rel, true) || matchAny(opts.Exclude, rel, false) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

// matchAny reports whether rel matches any of the patterns. emptyMatches is
// the result for an empty pattern list.
func matchAny(patterns []string, rel string, emptyMatches bool) bool {
	if len(patterns) == 0 {
		return emptyMatches
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// readBatch stats and reads one batch of files, appending contents and
// per-file errors to the result.
func (s *Scanner) readBatch(paths []string, maxFileSize int64, result *models.ScanResult) {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			result.Errors = append(result.Errors, &models.FileError{Path: path, Err: err})
			continue
		}
		if info.Size() > maxFileSize {
			result.Errors = append(result.Errors, models.NewSizeLimitError(path, info.Size(), maxFileSize))
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Debugf("failed to read %s: %v", path, err)
			result.Errors = append(result.Errors, &models.FileError{Path: path, Err: err})
			continue
		}

		key, err := models.NewDocKey(path)
		if err != nil {
			result.Errors = append(result.Errors, &models.FileError{Path: path, Err: err})
			continue
		}
		result.Files = append(result.Files, models.FileContent{Path: key, Content: string(data)})
	}
}
