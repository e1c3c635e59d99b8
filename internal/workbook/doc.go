// Package workbook opens .xlsx report exports and turns sheets into typed
// grids.
//
// Cells keep their spreadsheet type: numeric cells become record numbers,
// boolean cells booleans and text cells strings, even when the text looks
// numeric. The package also locates the header row of a report by its
// "Id Jugador" sentinel.
package workbook
