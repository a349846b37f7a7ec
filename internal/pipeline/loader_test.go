package pipeline

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fincast/fincast/internal/store"
)

func writeData(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func seedDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeData(t, dir, "bank/2024-01.csv", "date,amount,description\n2024-01-02,-20,Lunch\n2024-01-01,1500,Salary\nbad,1,x\n")
	writeData(t, dir, "planned.json", `[{"date":"2024-02-01","amount":900,"type":"expense","isPlanned":true,"periodicity":"monthly"}]`)
	writeData(t, dir, "broken.json", `[{`)
	writeData(t, dir, "readme.md", "ignored")
	return dir
}

func TestLoad(t *testing.T) {
	dir := seedDataDir(t)

	var calls atomic.Int64
	result, err := Load(dir, func(current, total int) { calls.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", result.TotalFiles)
	}
	if result.ParsedFiles != 2 || result.FileErrors != 1 || result.ParseErrors != 1 {
		t.Errorf("parsed %d, file errors %d, parse errors %d; want 2, 1, 1",
			result.ParsedFiles, result.FileErrors, result.ParseErrors)
	}
	if len(result.Transactions) != 3 {
		t.Fatalf("got %d transactions, want 3", len(result.Transactions))
	}
	if result.Transactions[0].Description != "Salary" {
		t.Errorf("transactions not sorted by date: first is %q", result.Transactions[0].Description)
	}
	if calls.Load() != 3 {
		t.Errorf("progress called %d times, want 3", calls.Load())
	}
}

func TestLoad_MissingDir(t *testing.T) {
	result, err := Load(filepath.Join(t.TempDir(), "missing"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalFiles != 0 || len(result.Transactions) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestLoadWithCache(t *testing.T) {
	dir := seedDataDir(t)
	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	first, err := LoadWithCache(dir, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.Reparsed != 3 || first.CacheHits != 0 {
		t.Errorf("first load: reparsed %d hits %d", first.Reparsed, first.CacheHits)
	}

	second, err := LoadWithCache(dir, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	// broken.json is never cached, so it is parsed again every time
	if second.CacheHits != 2 || second.Reparsed != 1 {
		t.Errorf("second load: hits %d reparsed %d; want 2, 1", second.CacheHits, second.Reparsed)
	}
	if len(second.Transactions) != len(first.Transactions) {
		t.Fatalf("cached load returned %d transactions, want %d", len(second.Transactions), len(first.Transactions))
	}
	for i := range first.Transactions {
		a, b := first.Transactions[i], second.Transactions[i]
		if a.ID != b.ID || a.Date != b.Date || !a.Amount.Equal(b.Amount) {
			t.Errorf("transaction %d differs: %+v vs %+v", i, a, b)
		}
	}
	if second.ParseErrors != first.ParseErrors {
		t.Errorf("cached parse errors = %d, want %d", second.ParseErrors, first.ParseErrors)
	}

	// Changing a file reparses it; deleting one prunes it.
	writeData(t, dir, "bank/2024-01.csv", "date,amount\n2024-01-03,-1\n")
	if err := os.Remove(filepath.Join(dir, "planned.json")); err != nil {
		t.Fatal(err)
	}
	third, err := LoadWithCache(dir, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if third.Pruned != 1 {
		t.Errorf("Pruned = %d, want 1", third.Pruned)
	}
	if len(third.Transactions) != 1 {
		t.Errorf("got %d transactions after edit, want 1", len(third.Transactions))
	}
	n, err := cache.TransactionCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("cache holds %d transactions, want 1", n)
	}
}
