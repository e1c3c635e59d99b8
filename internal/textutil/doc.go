// Package textutil provides text helpers shared by the extraction pipeline.
//
// The primary use cases are:
//   - Folding header and sheet names for case- and accent-insensitive matching
//   - Sanitizing sheet names into archive file name tokens
package textutil
