package imports

import "strings"

// Resolve maps a human-readable label to the identifier of a reference
// entity by case-insensitive, whitespace-trimmed exact name match. It
// returns "" when the label is empty or no candidate matches; downstream an
// empty identifier means "field omitted", never an error.
func Resolve(label string, candidates []ReferenceEntity) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}
	for _, candidate := range candidates {
		if strings.EqualFold(trimmed, strings.TrimSpace(candidate.Name)) {
			return candidate.ID
		}
	}
	return ""
}
