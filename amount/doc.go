// Package amount converts monetary amounts between user-facing strings and
// float64 values.
//
// Parse and ParseRequired sanitize form and command-line input: whitespace
// is trimmed, thousands separators are stripped, and negative or
// non-finite values are rejected. FormatIndian renders amounts with the
// Indian digit grouping used for display (12,34,567.00).
package amount
