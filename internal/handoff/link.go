// Package handoff builds the outbound messaging link and fires it after a
// cosmetic delay. Nothing is awaited: once scheduled, the handoff belongs to
// the external messaging service.
package handoff

import (
	"net/url"
	"strings"
)

const baseURL = "https://wa.me/"

// Link returns the click-to-chat URL for number with message prefilled.
func Link(number, message string) string {
	return baseURL + digitsOnly(number) + "?text=" + EncodeURIComponent(message)
}

// EncodeURIComponent escapes s the way browsers' encodeURIComponent does:
// everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ) is percent-encoded, and
// spaces become %20 rather than "+".
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")

	r := strings.NewReplacer(
		"%21", "!",
		"%27", "'",
		"%28", "(",
		"%29", ")",
		"%2A", "*",
	)
	return r.Replace(escaped)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
