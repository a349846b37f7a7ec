package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/fincast/fincast/internal/model"
)

// writeFile creates a temp transaction file and returns a DiscoveredFile for it.
func writeFile(t *testing.T, name string, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	format, ok := FormatOf(path)
	if !ok {
		t.Fatalf("no format for %s", name)
	}
	return DiscoveredFile{Path: path, Name: name, Format: format}
}

func TestParseFile_JSONExport(t *testing.T) {
	df := writeFile(t, "tx.json", `[
		{"id": 1700000000001, "description": "Salary", "date": "2024-03-01", "amount": 2500, "type": "income", "isPlanned": false, "category": "", "periodicity": "none"},
		{"id": "rent", "description": "Rent", "date": "2024-03-02T09:00:00Z", "amount": "900.50", "type": "expense", "isPlanned": false, "category": "Housing"},
		{"description": "Gym", "date": "2024-04-01", "amount": 40, "type": "expense", "isPlanned": true, "periodicity": "monthly"}
	]`)

	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.ParseErrors != 0 {
		t.Errorf("ParseErrors = %d, want 0", res.ParseErrors)
	}
	if len(res.Transactions) != 3 {
		t.Fatalf("got %d transactions, want 3", len(res.Transactions))
	}

	salary := res.Transactions[0]
	if salary.ID != "1700000000001" {
		t.Errorf("numeric id = %q", salary.ID)
	}
	if salary.Type != model.Income || salary.CategoryOrDefault() != model.DefaultCategory {
		t.Errorf("salary = %+v", salary)
	}

	rent := res.Transactions[1]
	if want := (civil.Date{Year: 2024, Month: 3, Day: 2}); rent.Date != want {
		t.Errorf("rent date = %v, want %v", rent.Date, want)
	}
	if rent.Amount.String() != "900.5" {
		t.Errorf("rent amount = %s", rent.Amount)
	}

	gym := res.Transactions[2]
	if !gym.IsPlanned || gym.Periodicity != model.PeriodMonthly {
		t.Errorf("gym = %+v", gym)
	}
	if gym.ID == "" || gym.FilePath != df.Path {
		t.Errorf("gym id %q path %q", gym.ID, gym.FilePath)
	}
}

func TestParseFile_WrappedJSON(t *testing.T) {
	df := writeFile(t, "export.json",
		`{"transactions": [{"date": "2024-01-01", "amount": 10, "type": "income"}]}`)
	res := ParseFile(df)
	if res.Err != nil || len(res.Transactions) != 1 {
		t.Fatalf("got %d txs, err %v", len(res.Transactions), res.Err)
	}
}

func TestParseFile_JSONBadElementsCounted(t *testing.T) {
	df := writeFile(t, "tx.json", `[
		{"date": "2024-01-01", "amount": 10, "type": "income"},
		{"date": "not a date", "amount": 10, "type": "income"},
		{"date": "2024-01-02", "amount": 0, "type": "expense"},
		{"date": "2024-01-03", "amount": 5, "type": "transfer"},
		"just a string"
	]`)
	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Transactions) != 1 || res.ParseErrors != 4 {
		t.Errorf("txs = %d, parse errors = %d; want 1, 4", len(res.Transactions), res.ParseErrors)
	}
}

func TestParseFile_JSONSyntaxErrorIsFatal(t *testing.T) {
	df := writeFile(t, "tx.json", `[{"date": "2024-01-01"`)
	if res := ParseFile(df); res.Err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestParseFile_CSV(t *testing.T) {
	df := writeFile(t, "bank.csv",
		"Date,Memo,Amount,Category,Planned",
		"2024-02-01,Coffee,-3.40,Food,",
		"2024-02-01,Refund,12,,",
		"2024-02-05,Insurance,-80,Bills,yes",
	)
	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Transactions) != 3 {
		t.Fatalf("got %d transactions, want 3", len(res.Transactions))
	}

	coffee := res.Transactions[0]
	if coffee.Type != model.Expense || coffee.Amount.String() != "3.4" || coffee.Description != "Coffee" {
		t.Errorf("coffee = %+v", coffee)
	}
	if res.Transactions[1].Type != model.Income {
		t.Errorf("refund type = %q", res.Transactions[1].Type)
	}
	if !res.Transactions[2].IsPlanned {
		t.Error("insurance should be planned")
	}
}

func TestParseFile_CSVExplicitType(t *testing.T) {
	df := writeFile(t, "t.csv",
		"kind,amount,date,periodicity",
		"expense,25,2024-02-01,daily",
		"income,-25,2024-02-01,",
		"expense,abc,2024-02-01,",
		"expense,5,2024-02-01,weekly",
	)
	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Transactions) != 2 || res.ParseErrors != 2 {
		t.Fatalf("txs = %d, parse errors = %d; want 2, 2", len(res.Transactions), res.ParseErrors)
	}
	if res.Transactions[0].Periodicity != model.PeriodDaily {
		t.Errorf("periodicity = %q", res.Transactions[0].Periodicity)
	}
	if res.Transactions[1].Type != model.Income || !res.Transactions[1].Amount.IsPositive() {
		t.Errorf("explicit type must win over sign: %+v", res.Transactions[1])
	}
}

func TestParseFile_CSVMissingColumns(t *testing.T) {
	df := writeFile(t, "t.csv", "description,amount", "x,1")
	if res := ParseFile(df); res.Err == nil {
		t.Error("expected error without a date column")
	}
}

func TestParseFile_DeterministicIDs(t *testing.T) {
	df := writeFile(t, "t.csv", "date,amount", "2024-01-01,1", "2024-01-01,1")
	a, b := ParseFile(df), ParseFile(df)
	if a.Transactions[0].ID != b.Transactions[0].ID {
		t.Error("ids must be stable across parses")
	}
	if a.Transactions[0].ID == a.Transactions[1].ID {
		t.Error("identical rows must still get distinct ids")
	}
}

func TestParseFile_Empty(t *testing.T) {
	for _, name := range []string{"e.json", "e.csv"} {
		res := ParseFile(writeFile(t, name))
		if res.Err != nil || len(res.Transactions) != 0 {
			t.Errorf("%s: txs %d err %v", name, len(res.Transactions), res.Err)
		}
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	res := Parse(strings.NewReader(""), "x.ofx", Format("ofx"))
	if !errors.Is(res.Err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", res.Err)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    civil.Date
		wantErr bool
	}{
		{"2024-02-29", civil.Date{Year: 2024, Month: 2, Day: 29}, false},
		{"2024-02-29T23:59:59+03:00", civil.Date{Year: 2024, Month: 2, Day: 29}, false},
		{" 2024-01-05 10:00", civil.Date{Year: 2024, Month: 1, Day: 5}, false},
		{"2023-02-29", civil.Date{}, true},
		{"05/01/2024", civil.Date{}, true},
		{"", civil.Date{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, model.ErrInvalidTransaction) {
				t.Errorf("err = %v, want ErrInvalidTransaction", err)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// FuzzParseCSV checks that arbitrary statement content never panics and that
// every accepted row is a valid transaction.
func FuzzParseCSV(f *testing.F) {
	f.Add([]byte("date,amount\n2024-01-01,5\n"))
	f.Add([]byte("date,amount,type\n2024-01-01,-5,expense\n"))
	f.Add([]byte("Date;Amount\n"))
	f.Add([]byte("date,amount\n\"unterminated\n"))
	f.Add([]byte(""))

	f.Fuzz(func(t *testing.T, data []byte) {
		res := Parse(strings.NewReader(string(data)), "fuzz.csv", FormatCSV)
		for _, tx := range res.Transactions {
			if err := tx.Validate(); err != nil {
				t.Errorf("accepted invalid transaction %+v: %v", tx, err)
			}
		}
	})
}

// FuzzParseJSON is the JSON counterpart of FuzzParseCSV.
func FuzzParseJSON(f *testing.F) {
	f.Add([]byte(`[{"date":"2024-01-01","amount":1,"type":"income"}]`))
	f.Add([]byte(`{"transactions":[]}`))
	f.Add([]byte(`[{"id":null,"amount":"x"}]`))
	f.Add([]byte(`[`))
	f.Add([]byte(``))

	f.Fuzz(func(t *testing.T, data []byte) {
		res := Parse(strings.NewReader(string(data)), "fuzz.json", FormatJSON)
		for _, tx := range res.Transactions {
			if err := tx.Validate(); err != nil {
				t.Errorf("accepted invalid transaction %+v: %v", tx, err)
			}
		}
	})
}
