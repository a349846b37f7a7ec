package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fincast/fincast/internal/source"
	"github.com/fincast/fincast/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	Pruned    int
}

// LoadWithCache discovers files, diffs them against the cache by mtime and
// size, parses only changed files, and returns the combined result set.
// Files that disappeared from dataDir are dropped from the cache.
func LoadWithCache(dataDir string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(files)}}

	// Diff: partition into changed and unchanged
	var toReparse []source.DiscoveredFile
	unchanged := make(map[string]struct{})
	current := make(map[string]os.FileInfo, len(files))

	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		current[f.Path] = info

		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchanged[f.Path] = struct{}{}
			result.ParseErrors += cached.ParseErrors
		} else {
			toReparse = append(toReparse, f)
		}
	}

	for path := range tracked {
		if _, ok := current[path]; !ok {
			if err := cache.DeleteFile(path); err == nil {
				result.Pruned++
			}
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)
	result.ParsedFiles = len(unchanged)

	if len(unchanged) > 0 {
		cached, err := cache.LoadAllTransactions()
		if err != nil {
			return nil, fmt.Errorf("loading cached transactions: %w", err)
		}
		for _, tx := range cached {
			if _, ok := unchanged[tx.FilePath]; ok {
				result.Transactions = append(result.Transactions, tx)
			}
		}
	}

	if len(toReparse) > 0 {
		results := parseAll(toReparse, result.CacheHits, result.TotalFiles, progressFn)
		for i, pr := range results {
			result.collect(pr)
			if pr.Err != nil {
				continue
			}
			info := current[toReparse[i].Path]
			_ = cache.SaveFile(toReparse[i].Path, pr.Transactions, store.FileInfo{
				MtimeNs:     info.ModTime().UnixNano(),
				SizeBytes:   info.Size(),
				ParseErrors: pr.ParseErrors,
			})
		}
	}

	sortTransactions(result.Transactions)
	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "fincast")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "transactions.db")
}
