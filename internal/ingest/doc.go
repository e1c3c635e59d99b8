// Package ingest drives a run: it walks the match folders of a source tree,
// turns each report sheet into records, and merges the new rows into the
// Parquet archives of the output directory.
//
// A run is sequential. Folders, files and sheets that cannot be read are
// logged and tallied; only the source listing, the output lock and a
// cancelled context stop a run early.
package ingest
