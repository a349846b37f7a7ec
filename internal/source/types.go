package source

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Format identifies a transaction file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// DiscoveredFile is a transaction file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Name   string // path relative to the data directory
	Format Format
}

// rawTransaction is one element of a JSON export.
type rawTransaction struct {
	ID          flexString      `json:"id"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	IsPlanned   flexBool        `json:"isPlanned"`
	Category    string          `json:"category"`
	Periodicity string          `json:"periodicity"`
}

// rawExport is the wrapped form {"transactions": [...]}.
type rawExport struct {
	Transactions []json.RawMessage `json:"transactions"`
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexBool accepts true/false, "true"/"yes"/"1" and 0/1.
type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	*v = flexBool(parseBool(s))
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "planned", "x":
		return true
	}
	return false
}
