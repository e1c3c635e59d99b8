// Package profile defines the two report families matchdata ingests:
// multi-sheet physical-performance reports and single-sheet peak-demand
// reports. A Profile bundles input discovery, transformation options, the
// duplicate key and archive naming so the ingest runner stays generic.
package profile
