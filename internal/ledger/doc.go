// Package ledger keeps a SQLite history of ingestion runs: one row per run
// and one row per archive target with its dedup counts, so operators can see
// what each run added without opening the Parquet files.
package ledger
