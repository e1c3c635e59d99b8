// Package record defines the scalar Value and ordered Record types that flow
// from workbook extraction through deduplication into the Parquet archives.
//
// A Record keeps column insertion order because archive schemas are derived
// from it: data columns come first, followed by the pipeline's metadata suffix.
package record
