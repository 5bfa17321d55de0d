// Package categories validates budget category names and maintains the
// ordered, case-insensitively de-duplicated set the classifier chooses from.
package categories
