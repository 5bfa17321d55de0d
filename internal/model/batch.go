package model

// BatchItem pairs a caller-assigned row index with its transaction.
type BatchItem struct {
	Transaction Transaction
	Index       int
}

// Batch is an ordered group of items categorized in one model call.
type Batch []BatchItem

// Indices returns the row indices in batch order.
func (b Batch) Indices() []int {
	indices := make([]int, len(b))
	for i, item := range b {
		indices[i] = item.Index
	}
	return indices
}

// Contains reports whether idx is one of the batch's row indices.
func (b Batch) Contains(idx int) bool {
	for _, item := range b {
		if item.Index == idx {
			return true
		}
	}
	return false
}
