// Package tokens provides the cost model applied to exported output.
//
// The estimator uses a characters-per-token ratio over the exact formatted
// line text, including delimiters, quotes and the line terminator. This is
// fast and accurate enough for budget reporting; swapping in a real BPE
// tokenizer would change the numbers, not the contract.
//
// Cost tracking is optional. Callers that pass no estimator pay nothing:
// the writer skips line buffering entirely.
package tokens
