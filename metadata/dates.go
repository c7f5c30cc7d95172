package metadata

import "strings"

// dateFields are the metadata keys subject to date normalization.
var dateFields = []string{"creation_date", "modification_date", "processing_timestamp"}

// NormalizeDate rewrites a PDF-style "D:YYYYMMDDHHMMSS..." timestamp to
// ISO-8601. Anything else, including values already in ISO form, passes
// through unchanged.
func NormalizeDate(value string) string {
	if !strings.HasPrefix(value, "D:") {
		return value
	}

	digits := value[2:]
	if len(digits) > 14 {
		digits = digits[:14]
	}
	if len(digits) < 8 {
		return value
	}

	formatted := digits[:4] + "-" + digits[4:6] + "-" + digits[6:8]
	if len(digits) >= 14 {
		formatted += "T" + digits[8:10] + ":" + digits[10:12] + ":" + digits[12:14]
	}
	return formatted
}

func normalizeDates(fields map[string]any) {
	for _, field := range dateFields {
		if value, ok := fields[field].(string); ok && value != "" {
			fields[field] = NormalizeDate(value)
		}
	}
}
