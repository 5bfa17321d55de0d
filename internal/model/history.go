package model

// HistoryExample is a confirmed past mapping used as few-shot context.
// Examples are never mutated once created.
type HistoryExample struct {
	Date        string
	Amount      string
	Description string
	Category    string
}

// History is an ordered sequence of examples, most recent last.
type History []HistoryExample

// Recent returns the last n examples in their original order.
// The returned slice shares storage with h and must be treated as read-only.
func (h History) Recent(n int) History {
	if n <= 0 {
		return nil
	}
	if len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}

// ExampleFor builds a history example from a transaction and its category.
func ExampleFor(txn Transaction, category string) HistoryExample {
	return HistoryExample{
		Date:        txn.Date,
		Amount:      txn.Amount,
		Description: txn.Description,
		Category:    category,
	}
}
