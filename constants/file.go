package constants

import "strings"

// SnapshotExtensions holds the page snapshot types picked up by the watcher.
var SnapshotExtensions = map[string]struct{}{
	"html": {},
	"htm":  {},
	"txt":  {},
}

// Artifact file names written for each extraction run.
const (
	ArtifactJSON = "personal-loan-data.json"
	ArtifactCSV  = "personal-loan-data.csv"
	ArtifactXLSX = "personal-loan-data.xlsx"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsHTML reports whether the extension names an HTML snapshot.
func IsHTML(ext string) bool {
	switch NormalizeExt(ext) {
	case "html", "htm":
		return true
	}
	return false
}
