package export

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// TimestampLayout is the timestamp format used in output names.
const TimestampLayout = "20060102_150405"

// FileName builds "TableSlice_<vendor>_<source>_<timestamp><ext>". The
// source is reduced to its base name without extension; unsafe characters
// become underscores.
func FileName(vendor, source string, at time.Time, format Format) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))

	parts := []string{"TableSlice"}
	for _, p := range []string{vendor, stem} {
		if s := sanitize(p); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, at.Format(TimestampLayout))

	return strings.Join(parts, "_") + format.Extension()
}

// MergedFileName builds "<VENDOR>_MERGED_<timestamp><ext>" for batch output.
func MergedFileName(vendor string, at time.Time, format Format) string {
	name := strings.ToUpper(sanitize(vendor))
	if name == "" {
		name = "BATCH"
	}
	return name + "_MERGED_" + at.Format(TimestampLayout) + format.Extension()
}

func sanitize(s string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			sb.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(sb.String(), "_")
}
