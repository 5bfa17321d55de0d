// Package llm turns transactions into category suggestions using a local
// language model. It builds prompts from transaction data, categories and
// past mappings, calls the model backend, and validates what comes back.
// Single-row and batched (multi-row) modes are supported.
package llm
