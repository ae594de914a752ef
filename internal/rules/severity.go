package rules

import "strings"

const (
	SeverityError      = "error"
	SeverityWarning    = "warning"
	SeverityConvention = "convention"
)

// SeverityRank orders severities; unknown values rank 0.
func SeverityRank(sev string) int {
	switch NormalizeSeverity(sev) {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityConvention:
		return 1
	}
	return 0
}

func ValidSeverity(sev string) bool { return SeverityRank(sev) > 0 }

func NormalizeSeverity(sev string) string {
	return strings.ToLower(strings.TrimSpace(sev))
}
