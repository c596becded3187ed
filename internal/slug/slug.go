// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from article titles.
package slug

import (
	"regexp"
	"strings"
)

// jsSpace lists the runes ECMAScript treats as whitespace (\s). Stored
// slugs were generated with this definition.
const jsSpace = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var (
	// disallowed matches anything that isn't an ASCII word character,
	// whitespace, or a hyphen.
	disallowed = regexp.MustCompile(`[^A-Za-z0-9_` + jsSpace + `-]`)
	// separators collapses whitespace, underscore and hyphen runs.
	separators = regexp.MustCompile(`[` + jsSpace + `_-]+`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World!" → "hello-world"
//
// Letters outside ASCII are dropped rather than transliterated, so
// "Việt Nam" becomes "vit-nam". Generate is idempotent.
func Generate(s string) string {
	result := strings.ToLower(s)
	result = strings.TrimFunc(result, isSpace)
	result = disallowed.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// isSpace reports whether r is ECMAScript whitespace.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		0x00a0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}
