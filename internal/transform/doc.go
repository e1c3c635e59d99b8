// Package transform converts a report sheet into flat records: it locates
// the team title and the "Id Jugador" header, keeps the data columns to the
// right of the player id, drops columns that would shadow metadata, and
// appends a fixed metadata suffix to every non-empty row.
package transform
