// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markup renders post bodies from Markdown to sanitized HTML.
package markup

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	// sanitizer strips scripts, event handlers and other active content
	// while keeping the formatting Markdown produces.
	sanitizer = newSanitizer()
)

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Render converts Markdown to sanitized HTML. Raw HTML in the source is
// dropped by goldmark; the sanitizer is a second line for what remains.
func Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return sanitizer.Sanitize(buf.String()), nil
}

// Sanitize cleans an HTML fragment with the same policy Render uses.
func Sanitize(fragment string) string {
	return sanitizer.Sanitize(fragment)
}
