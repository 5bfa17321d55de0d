package model

import "time"

// DefaultCategories seeds a fresh database.
var DefaultCategories = []string{
	"Food & Groceries",
	"Transportation",
	"Entertainment",
	"Utilities",
	"Healthcare",
	"Shopping",
	"Subscriptions",
	"Savings",
	"Investments",
	"Other",
}

// Category represents a budget bucket.
type Category struct {
	CreatedAt time.Time
	Name      string
	ID        int
}

// CategoryNames extracts names preserving order.
func CategoryNames(categories []Category) []string {
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
	}
	return names
}
