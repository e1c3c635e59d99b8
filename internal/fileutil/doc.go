// Package fileutil holds small filesystem helpers shared by the archive
// writer.
package fileutil
