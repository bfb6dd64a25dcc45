package constants

import "strings"

// ExtractionExtension is the file extension of extraction-result payloads.
const ExtractionExtension = "json"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
