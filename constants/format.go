package constants

import "strings"

// Format tags for source files. Each tag has a registered chunk extractor.
const (
	PDF  = "PDF"
	XLSX = "XLSX"
	TEXT = "TEXT"
)

// FileTypes holds the allowed format tags for ingestion jobs.
var FileTypes = []string{PDF, XLSX, TEXT}

var extToFormat = map[string]string{
	"pdf":  PDF,
	"xlsx": XLSX,
	"xls":  XLSX,
	"txt":  TEXT,
	"text": TEXT,
	"md":   TEXT,
	"csv":  TEXT,
	"json": TEXT,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its format tag.
// Returns "" when no extractor is registered for the extension.
func MapExtToFormat(ext string) string {
	return extToFormat[NormalizeExt(ext)]
}
