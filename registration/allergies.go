package registration

import "strings"

// ParseAllergies turns the free-text allergies input into a list: split on
// commas, trim, drop empty segments. Empty input yields an empty, non-nil list.
func ParseAllergies(raw string) []string {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	for _, part := range strings.Split(raw, ",") {
		if a := strings.TrimSpace(part); a != "" {
			out = append(out, a)
		}
	}
	return out
}
