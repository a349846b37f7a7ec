package pipeline

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Transactions []model.Transaction
	TotalFiles   int
	ParsedFiles  int
	ParseErrors  int
	FileErrors   int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every transaction file under dataDir.
// It uses a bounded worker pool for parallel parsing.
func Load(dataDir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	for _, pr := range parseAll(files, 0, len(files), progressFn) {
		result.collect(pr)
	}
	sortTransactions(result.Transactions)
	return result, nil
}

func (r *LoadResult) collect(pr source.ParseResult) {
	if pr.Err != nil {
		r.FileErrors++
		return
	}
	r.ParsedFiles++
	r.ParseErrors += pr.ParseErrors
	r.Transactions = append(r.Transactions, pr.Transactions...)
}

// parseAll parses files on min(GOMAXPROCS, len(files)) workers. Results keep
// the order of files. Progress is reported as offset+n out of total.
func parseAll(files []source.DiscoveredFile, offset, total int, progressFn ProgressFunc) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(offset+int(n), total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}

// sortTransactions orders by date, then file, then id, so every load of the
// same data yields the same sequence.
func sortTransactions(txs []model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.ID < b.ID
	})
}
