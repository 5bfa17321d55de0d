package model

import (
	"maps"
	"slices"
	"strings"
)

// Column names recognized in imported statement rows.
const (
	FieldDate            = "Date"
	FieldTransactionDate = "Transaction Date"
	FieldAmount          = "Amount"
	FieldDescription     = "Description"
	FieldType            = "Type"
)

// Row is a raw imported record keyed by its source column names.
type Row map[string]string

// Transaction is the normalized view of a Row used for prompting.
// Empty fields mean the source row did not carry them.
type Transaction struct {
	Date        string // MM/DD/YYYY or ISO, as found in the source
	Amount      string // signed decimal, kept as text
	Description string
	Type        string // optional, e.g. payment, credit, refund
}

// Lookup returns the value stored under key, falling back to a
// case-insensitive key match. Values are trimmed. When several keys match
// ignoring case, the first in byte order wins.
func (r Row) Lookup(key string) (string, bool) {
	if v, ok := r[key]; ok {
		return strings.TrimSpace(v), true
	}
	for _, k := range slices.Sorted(maps.Keys(r)) {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(r[k]), true
		}
	}
	return "", false
}

// Transaction converts the row. "Date" and "Transaction Date" are synonyms;
// "Date" wins when both are present and non-empty.
func (r Row) Transaction() Transaction {
	date, _ := r.Lookup(FieldDate)
	if date == "" {
		date, _ = r.Lookup(FieldTransactionDate)
	}
	amount, _ := r.Lookup(FieldAmount)
	description, _ := r.Lookup(FieldDescription)
	txnType, _ := r.Lookup(FieldType)

	return Transaction{
		Date:        date,
		Amount:      amount,
		Description: description,
		Type:        txnType,
	}
}

// IsEmpty reports whether the transaction carries neither a date nor a description.
func (t Transaction) IsEmpty() bool {
	return t.Date == "" && t.Description == ""
}
