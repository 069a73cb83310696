package domain

import "strings"

// ExtractCountryHint derives a coarse country bucket from a recipient
// number: strip a leading '+' and take the first three characters. It is
// not E.164 parsing; hints are only used to group traffic, never to route
// or bill it.
func ExtractCountryHint(recipient string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(recipient), "+")
	if len(trimmed) < 3 {
		return trimmed
	}
	return trimmed[:3]
}
