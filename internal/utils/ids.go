package utils

import "strings"

// NormalizeIdentifier makes loan/employee identifiers comparable
// across sheets: trims, collapses inner whitespace and uppercases.
// Numeric identifiers exported from Excel sometimes carry a trailing
// ".0"; that suffix is stripped too.
func NormalizeIdentifier(id string) string {
	id = strings.Join(strings.Fields(strings.TrimSpace(id)), " ")
	id = strings.ToUpper(id)
	if strings.HasSuffix(id, ".0") && isDigits(strings.TrimSuffix(id, ".0")) {
		id = strings.TrimSuffix(id, ".0")
	}
	return id
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
