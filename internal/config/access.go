package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// DirCheck is the outcome of checking one configured directory.
type DirCheck struct {
	Key    string
	Path   string
	Passed bool
	Detail string
}

// CheckDirectories verifies that source_dir can be listed and that output_dir
// and log_dir can be written by the current user. Directories that do not
// exist yet fail the check; EnsureDirectories creates the writable ones.
func (c *Config) CheckDirectories() []DirCheck {
	checks := []DirCheck{
		checkDir("paths.source_dir", c.Paths.SourceDir, unix.R_OK|unix.X_OK),
		checkDir("paths.output_dir", c.Paths.OutputDir, unix.R_OK|unix.W_OK|unix.X_OK),
	}
	if c.Paths.LogDir != "" {
		checks = append(checks, checkDir("paths.log_dir", c.Paths.LogDir, unix.W_OK|unix.X_OK))
	}
	return checks
}

func checkDir(key, path string, mode uint32) DirCheck {
	check := DirCheck{Key: key, Path: path}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		check.Detail = "does not exist"
		return check
	case err != nil:
		check.Detail = fmt.Sprintf("stat: %v", err)
		return check
	case !info.IsDir():
		check.Detail = "not a directory"
		return check
	}
	if err := unix.Access(path, mode); err != nil {
		check.Detail = fmt.Sprintf("insufficient permissions: %v", err)
		return check
	}
	check.Passed = true
	check.Detail = "ok"
	return check
}
