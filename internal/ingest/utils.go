package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/loan-offers/constants"
)

// AllowedExt checks if a file extension names a page snapshot.
func AllowedExt(ext string) bool {
	_, ok := constants.SnapshotExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
