// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
)

// RobotsConfig holds configuration for robots.txt generation.
type RobotsConfig struct {
	SiteURL       string   // Base URL for sitemap reference
	DisallowAll   bool     // Block all crawlers (for staging sites)
	DisallowPaths []string // Paths to disallow in addition to the defaults
}

// Build generates the robots.txt content.
func (c RobotsConfig) Build() string {
	var sb strings.Builder

	sb.WriteString("User-agent: *\n")

	if c.DisallowAll {
		sb.WriteString("Disallow: /\n")
		return sb.String()
	}

	paths := append([]string{"/admin", "/api/"}, c.DisallowPaths...)
	for _, p := range paths {
		sb.WriteString("Disallow: ")
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	sb.WriteString("Allow: /\n")

	if c.SiteURL != "" {
		sb.WriteString("\nSitemap: ")
		sb.WriteString(strings.TrimSuffix(c.SiteURL, "/"))
		sb.WriteString("/sitemap.xml\n")
	}

	return sb.String()
}
