package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/budget-mapper/internal/model"
)

// DefaultHistoryWindow is how many recent examples a prompt includes.
const DefaultHistoryWindow = 100

// missingField stands in for absent transaction or example fields.
const missingField = "N/A"

// PromptBuilder renders model prompts. It is stateless apart from the
// history window and safe for concurrent use.
type PromptBuilder struct {
	historyWindow int
}

// NewPromptBuilder creates a builder. A non-positive window means DefaultHistoryWindow.
func NewPromptBuilder(historyWindow int) *PromptBuilder {
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &PromptBuilder{historyWindow: historyWindow}
}

// BuildSingle creates the prompt for one transaction. The model is asked
// to answer with a single category name.
func (p *PromptBuilder) BuildSingle(txn model.Transaction, categories []string, history model.History) string {
	details := fmt.Sprintf("Date: %s | Amount: %s | Description: \"%s\"",
		orMissing(txn.Date), orMissing(txn.Amount), orMissing(txn.Description))
	if txn.Type != "" {
		details += fmt.Sprintf(" | Type: %s", txn.Type)
	}

	return fmt.Sprintf(`You are a budget categorization assistant. Based on the transaction details, suggest the most appropriate budget category.

Available Categories: %s
%s
Transaction to Categorize:
%s

Rules:
- Respond with exactly one category name and nothing else
- Use the exact category name from the available list
- Do not include any explanation or punctuation

Category:`,
		strings.Join(categories, ", "),
		p.renderExamples(history),
		details)
}

// BuildBatch creates the prompt for up to a batch of transactions. The
// model is asked for one "Row <idx>: <CATEGORY>" line per transaction in
// the order given.
func (p *PromptBuilder) BuildBatch(batch model.Batch, categories []string, history model.History) string {
	var transactions strings.Builder
	var format strings.Builder
	for _, item := range batch {
		txn := item.Transaction
		fmt.Fprintf(&transactions, "Row %d: Date: %s | Amount: %s | Description: \"%s\"\n",
			item.Index, orMissing(txn.Date), orMissing(txn.Amount), orMissing(txn.Description))
		fmt.Fprintf(&format, "Row %d: <CATEGORY_NAME>\n", item.Index)
	}

	return fmt.Sprintf(`You are a budget categorization assistant. Based on transaction details, suggest the most appropriate budget category for each transaction.

Available Categories: %s
%s
Transactions to Categorize (batch processing):
%s
For each transaction above, provide the category in the following format:
%s
Rules:
- Respond with ONLY the row and category mapping
- Do not include any explanation
- Each line must be in the format: Row <number>: <CATEGORY_NAME>
- Keep the rows in the same order as above
- Use the exact category names from the available list
- Process all transactions`,
		strings.Join(categories, ", "),
		p.renderExamples(history),
		transactions.String(),
		format.String())
}

// renderExamples lists the most recent examples, oldest first.
func (p *PromptBuilder) renderExamples(history model.History) string {
	recent := history.Recent(p.historyWindow)
	if len(recent) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nHere are examples of previous categorizations:\n")
	for _, ex := range recent {
		fmt.Fprintf(&b, "- %s\n", FormatExample(ex))
	}
	return b.String()
}

// FormatExample renders one history example as it appears in prompts.
func FormatExample(ex model.HistoryExample) string {
	return fmt.Sprintf("Date: %s | Amount: %s | Description: \"%s\" → %s",
		orMissing(ex.Date), orMissing(ex.Amount), orMissing(ex.Description), orMissing(ex.Category))
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return missingField
	}
	return s
}
