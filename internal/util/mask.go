// Package util holds small helpers shared across the gateway.
package util

// MaskToken shortens a credential for log output, keeping only the tail so
// two tokens can still be told apart.
func MaskToken(t string) string {
	if len(t) < 20 {
		return t
	}
	return "..." + t[len(t)-12:]
}

// MaskValue reports whether a config value is set, exposing only a short
// prefix. Used by the debug endpoint.
func MaskValue(v string, prefixLen int) string {
	if v == "" {
		return "MISSING"
	}
	if len(v) <= prefixLen {
		return "set"
	}
	return "set (" + v[:prefixLen] + "...)"
}
