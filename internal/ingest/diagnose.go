package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"matchdata/internal/profile"
)

// FolderStatus classifies how many of a profile's inputs a folder holds.
type FolderStatus string

const (
	StatusComplete FolderStatus = "complete"
	StatusPartial  FolderStatus = "partial"
	StatusMissing  FolderStatus = "missing"
)

// FolderDiagnosis is the discovery outcome for one match folder.
type FolderDiagnosis struct {
	Name      string
	Status    FolderStatus
	Inputs    []profile.Input
	Workbooks []string
	Fallback  bool
	Err       error
}

// Diagnosis is a discovery report across every folder of a source tree.
type Diagnosis struct {
	Profile  string
	Folders  []FolderDiagnosis
	Complete int
	Partial  int
	Missing  int
}

// Diagnose reports, folder by folder, which of the profile's input
// workbooks would be picked up. Nothing is read beyond directory listings.
func Diagnose(sourceDir string, p *profile.Profile) (Diagnosis, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return Diagnosis{}, fmt.Errorf("list source directory: %w", err)
	}
	diag := Diagnosis{Profile: p.Name}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		fd := FolderDiagnosis{Name: entry.Name()}
		d, err := p.Discover(filepath.Join(sourceDir, entry.Name()))
		if err != nil {
			fd.Err = err
		}
		fd.Inputs = d.Inputs
		fd.Workbooks = d.Workbooks
		fd.Fallback = d.Fallback
		switch {
		case len(d.Inputs) == 0:
			fd.Status = StatusMissing
			diag.Missing++
		case !d.Complete():
			fd.Status = StatusPartial
			diag.Partial++
		default:
			fd.Status = StatusComplete
			diag.Complete++
		}
		diag.Folders = append(diag.Folders, fd)
	}
	return diag, nil
}
