// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util holds small helpers shared by the handlers: URL slugs and
// client address handling.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonSlugChars matches anything that is not a lowercase letter, digit or hyphen.
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	// hyphenRuns matches two or more hyphens in a row.
	hyphenRuns = regexp.MustCompile(`-{2,}`)
	// separators become hyphens before filtering.
	separators = strings.NewReplacer(" ", "-", "_", "-", "/", "-", "&", "-and-")
)

// MaxSlugLength caps generated slugs.
const MaxSlugLength = 200

// Slugify turns a title such as "Café del Mar / Vol. 2" into "cafe-del-mar-vol-2".
// Accents are stripped through Unicode decomposition; any other character
// outside [a-z0-9-] is dropped.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, _ := transform.String(t, s)

	out = separators.Replace(strings.ToLower(out))
	out = nonSlugChars.ReplaceAllString(out, "")
	out = hyphenRuns.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")

	if len(out) > MaxSlugLength {
		out = strings.TrimRight(out[:MaxSlugLength], "-")
	}
	return out
}

// SlugFor returns slug when set, otherwise a slug derived from title.
func SlugFor(slug, title string) string {
	if slug = strings.TrimSpace(slug); slug != "" {
		return slug
	}
	return Slugify(title)
}

// IsValidSlug reports whether s is already in canonical slug form.
func IsValidSlug(s string) bool {
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' || strings.Contains(s, "--") {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	return true
}
