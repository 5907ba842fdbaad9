// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package query

import (
	"regexp"
	"strings"
	"unicode"
)

var sizePattern = regexp.MustCompile(`^s?([+-]?)(\d+)$`)

// NormalizeSize canonicalizes a room-count token into a size code of the
// form "s+<n>", "s-<n>" or "s+0". It returns "" when the token is not a size.
//
//	NormalizeSize("S3")  // "s+3"
//	NormalizeSize("s-2") // "s-2"
//	NormalizeSize("ss+1") // "s+1"
//	NormalizeSize("abc") // ""
func NormalizeSize(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range strings.ToLower(token) {
		if unicode.IsSpace(r) {
			continue
		}
		if r == 's' || r == '+' || r == '-' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	s := b.String()

	if strings.HasPrefix(s, "s") {
		s = "s" + strings.TrimLeft(s[1:], "s")
	}

	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	sign, digits := m[1], m[2]

	switch {
	case sign == "" && digits == "0":
		return "s+0"
	case sign != "":
		return "s" + sign + digits
	default:
		return "s+" + digits
	}
}
