package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/source"
	"github.com/fincast/fincast/internal/store"
)

// benchDataDir writes files CSV statements of rows transactions each.
func benchDataDir(b *testing.B, files, rows int) string {
	b.Helper()
	dir := b.TempDir()
	for f := 0; f < files; f++ {
		var sb strings.Builder
		sb.WriteString("date,description,amount,category\n")
		for r := 0; r < rows; r++ {
			d := day0.AddDays((f*rows + r) % 730)
			amount := "-12.50"
			if r%30 == 0 {
				amount = "2100"
			}
			fmt.Fprintf(&sb, "%s,row %d,%s,cat%d\n", d, r, amount, r%7)
		}
		path := filepath.Join(dir, fmt.Sprintf("statement-%03d.csv", f))
		if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
			b.Fatal(err)
		}
	}
	return dir
}

func BenchmarkLoad(b *testing.B) {
	dir := benchDataDir(b, 24, 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := Load(dir, nil)
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

func BenchmarkParseFile(b *testing.B) {
	dir := benchDataDir(b, 1, 5000)
	files, err := source.ScanDir(dir)
	if err != nil || len(files) != 1 {
		b.Fatalf("scan: %v (%d files)", err, len(files))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result := source.ParseFile(files[0])
		if result.Err != nil {
			b.Fatal(result.Err)
		}
	}
}

func BenchmarkLoadWithCache(b *testing.B) {
	dir := benchDataDir(b, 24, 500)
	cache, err := store.Open(filepath.Join(b.TempDir(), "cache.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cr, err := LoadWithCache(dir, cache, nil)
		if err != nil {
			b.Fatal(err)
		}
		_ = cr
	}
}

func BenchmarkRun(b *testing.B) {
	var txs []model.Transaction
	for i := 0; i < 730; i++ {
		txs = append(txs, tx(i, model.Expense, "12.50"))
		if i%30 == 0 {
			txs = append(txs, tx(i, model.Income, "2100"))
		}
	}
	opts := DefaultOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Run(txs, opts)
	}
}
