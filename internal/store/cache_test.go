package store

import (
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/model"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "sub", "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleTx(id string, day int, amount string, typ model.TxType) model.Transaction {
	return model.Transaction{
		ID:          id,
		Description: "desc " + id,
		Date:        civil.Date{Year: 2024, Month: 5, Day: day},
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    "Food",
		Periodicity: model.PeriodNone,
	}
}

func TestSaveAndLoad(t *testing.T) {
	c := openTemp(t)

	planned := sampleTx("b", 3, "12.34", model.Expense)
	planned.IsPlanned = true
	planned.Periodicity = model.PeriodMonthly
	planned.Category = ""
	txs := []model.Transaction{sampleTx("a", 1, "100", model.Income), planned}

	if err := c.SaveFile("/data/a.csv", txs, FileInfo{MtimeNs: 42, SizeBytes: 7, ParseErrors: 2}); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	got, err := c.LoadAllTransactions()
	if err != nil {
		t.Fatalf("LoadAllTransactions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	if got[0].ID != "a" || got[0].FilePath != "/data/a.csv" || !got[0].Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("first = %+v", got[0])
	}
	b := got[1]
	if !b.IsPlanned || b.Periodicity != model.PeriodMonthly || b.Category != "" {
		t.Errorf("second = %+v", b)
	}
	if b.Amount.String() != "12.34" || b.Date != planned.Date || b.Type != model.Expense {
		t.Errorf("second amount/date/type = %s %v %s", b.Amount, b.Date, b.Type)
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if fi := tracked["/data/a.csv"]; fi.MtimeNs != 42 || fi.SizeBytes != 7 || fi.ParseErrors != 2 {
		t.Errorf("tracked = %+v", fi)
	}
}

func TestSaveFile_Replaces(t *testing.T) {
	c := openTemp(t)
	path := "/data/x.json"

	first := []model.Transaction{sampleTx("1", 1, "1", model.Income), sampleTx("2", 2, "2", model.Income)}
	if err := c.SaveFile(path, first, FileInfo{MtimeNs: 1}); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveFile(path, first[:1], FileInfo{MtimeNs: 2}); err != nil {
		t.Fatal(err)
	}

	n, err := c.TransactionCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("TransactionCount = %d, want 1", n)
	}
	tracked, _ := c.GetTrackedFiles()
	if tracked[path].MtimeNs != 2 {
		t.Errorf("mtime = %d, want 2", tracked[path].MtimeNs)
	}
}

func TestDeleteFile_Cascades(t *testing.T) {
	c := openTemp(t)
	if err := c.SaveFile("/a", []model.Transaction{sampleTx("1", 1, "1", model.Income)}, FileInfo{}); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveFile("/b", []model.Transaction{sampleTx("2", 1, "1", model.Income)}, FileInfo{}); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteFile("/a"); err != nil {
		t.Fatal(err)
	}

	got, err := c.LoadAllTransactions()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].FilePath != "/b" {
		t.Errorf("after delete: %+v", got)
	}
	tracked, _ := c.GetTrackedFiles()
	if _, ok := tracked["/a"]; ok {
		t.Error("/a still tracked")
	}
}

func TestSaveFile_EmptyFileIsTracked(t *testing.T) {
	c := openTemp(t)
	if err := c.SaveFile("/empty.csv", nil, FileInfo{SizeBytes: 0}); err != nil {
		t.Fatal(err)
	}
	tracked, _ := c.GetTrackedFiles()
	if _, ok := tracked["/empty.csv"]; !ok {
		t.Error("empty file should still be tracked")
	}
}
