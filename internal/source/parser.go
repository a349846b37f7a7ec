// Package source discovers and parses transaction files (JSON exports and
// CSV statements) in the data directory.
package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/model"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor CSV.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// idNamespace seeds deterministic ids for rows that carry none.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("fincast.transaction"))

// ParseResult holds the output of parsing a single file.
type ParseResult struct {
	Transactions []model.Transaction
	ParseErrors  int
	Err          error
}

// ParseFile reads a transaction file. Rows that cannot be turned into a valid
// transaction are counted in ParseErrors and skipped; Err is set only when
// the file as a whole is unreadable.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	return Parse(f, df.Path, df.Format)
}

// Parse decodes r in the given format. path is recorded on every
// transaction and seeds generated ids.
func Parse(r io.Reader, path string, format Format) ParseResult {
	var res ParseResult
	switch format {
	case FormatJSON:
		res = parseJSON(r, path)
	case FormatCSV:
		res = parseCSV(r, path)
	default:
		return ParseResult{Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)}
	}
	for i := range res.Transactions {
		res.Transactions[i].FilePath = path
	}
	return res
}

func parseJSON(r io.Reader, path string) ParseResult {
	data, err := io.ReadAll(r)
	if err != nil {
		return ParseResult{Err: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ParseResult{}
	}

	var elems []json.RawMessage
	if data[0] == '{' {
		var wrapped rawExport
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return ParseResult{Err: fmt.Errorf("decoding %s: %w", path, err)}
		}
		elems = wrapped.Transactions
	} else if err := json.Unmarshal(data, &elems); err != nil {
		return ParseResult{Err: fmt.Errorf("decoding %s: %w", path, err)}
	}

	var res ParseResult
	for i, elem := range elems {
		var raw rawTransaction
		if err := json.Unmarshal(elem, &raw); err != nil {
			res.ParseErrors++
			continue
		}
		tx, err := raw.toTransaction()
		if err != nil {
			res.ParseErrors++
			continue
		}
		if tx.ID == "" {
			tx.ID = rowID(path, i)
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

func (raw rawTransaction) toTransaction() (model.Transaction, error) {
	date, err := ParseDate(raw.Date)
	if err != nil {
		return model.Transaction{}, err
	}
	typ, err := model.ParseTxType(raw.Type)
	if err != nil {
		return model.Transaction{}, err
	}
	period, err := model.ParsePeriodicity(raw.Periodicity)
	if err != nil {
		return model.Transaction{}, err
	}
	tx := model.Transaction{
		ID:          string(raw.ID),
		Description: strings.TrimSpace(raw.Description),
		Date:        date,
		Amount:      raw.Amount.Abs(),
		Type:        typ,
		IsPlanned:   bool(raw.IsPlanned),
		Category:    strings.TrimSpace(raw.Category),
		Periodicity: period,
	}
	return tx, tx.Validate()
}

// csvColumns maps accepted header names to canonical columns.
var csvColumns = map[string]string{
	"id":          "id",
	"date":        "date",
	"day":         "date",
	"description": "description",
	"desc":        "description",
	"memo":        "description",
	"name":        "description",
	"amount":      "amount",
	"sum":         "amount",
	"value":       "amount",
	"type":        "type",
	"kind":        "type",
	"planned":     "planned",
	"is_planned":  "planned",
	"isplanned":   "planned",
	"category":    "category",
	"periodicity": "periodicity",
	"repeat":      "periodicity",
}

func parseCSV(r io.Reader, path string) ParseResult {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ParseResult{}
	}
	if err != nil {
		return ParseResult{Err: fmt.Errorf("reading header of %s: %w", path, err)}
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canon, ok := csvColumns[key]; ok {
			if _, dup := cols[canon]; !dup {
				cols[canon] = i
			}
		}
	}
	if _, ok := cols["date"]; !ok {
		return ParseResult{Err: fmt.Errorf("%s: missing date column", path)}
	}
	if _, ok := cols["amount"]; !ok {
		return ParseResult{Err: fmt.Errorf("%s: missing amount column", path)}
	}

	var res ParseResult
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.ParseErrors++
				continue
			}
			return ParseResult{Err: err}
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		tx, err := csvTransaction(field)
		if err != nil {
			res.ParseErrors++
			continue
		}
		if tx.ID == "" {
			tx.ID = rowID(path, row)
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

// csvTransaction builds a transaction from one row. Without a type column a
// negative amount is an expense and a positive one income.
func csvTransaction(field func(string) string) (model.Transaction, error) {
	date, err := ParseDate(field("date"))
	if err != nil {
		return model.Transaction{}, err
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(field("amount"), " ", ""))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: amount: %v", model.ErrInvalidTransaction, err)
	}

	var typ model.TxType
	if s := field("type"); s != "" {
		if typ, err = model.ParseTxType(s); err != nil {
			return model.Transaction{}, err
		}
	} else if amount.IsNegative() {
		typ = model.Expense
	} else {
		typ = model.Income
	}

	period, err := model.ParsePeriodicity(field("periodicity"))
	if err != nil {
		return model.Transaction{}, err
	}

	tx := model.Transaction{
		ID:          field("id"),
		Description: field("description"),
		Date:        date,
		Amount:      amount.Abs(),
		Type:        typ,
		IsPlanned:   parseBool(field("planned")),
		Category:    field("category"),
		Periodicity: period,
	}
	return tx, tx.Validate()
}

// ParseDate accepts YYYY-MM-DD, optionally followed by a time part as in
// RFC 3339 timestamps, which is ignored.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: date %q", model.ErrInvalidTransaction, s)
	}
	return d, nil
}

func rowID(path string, row int) string {
	return uuid.NewSHA1(idNamespace, []byte(path+"#"+strconv.Itoa(row))).String()
}
