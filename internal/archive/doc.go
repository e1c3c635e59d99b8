// Package archive reads and rewrites the Parquet files that accumulate
// ingested records, one file per report category.
//
// Files are always rewritten whole: callers read the existing rows, append
// the new ones and hand the full set to Write, which infers a nullable schema
// from every record and replaces the file atomically.
package archive
