// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the sitemap and robots.txt for the public site.
package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequency values used by the site.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// Entry is a detail page for one piece of content.
type Entry struct {
	Slug    string
	ModTime time.Time
}

// Sections are the public listing pages, in sitemap order.
var Sections = []string{"releases", "artists", "events", "news", "radio", "videos", "playlists", "contact"}

// SitemapBuilder builds sitemap XML from label content.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a new sitemap builder.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{siteURL: strings.TrimSuffix(siteURL, "/")}
}

// AddHomepage adds the homepage to the sitemap.
func (b *SitemapBuilder) AddHomepage() {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/",
		ChangeFreq: ChangeFreqDaily,
		Priority:   "1.0",
	})
}

// AddSections adds the listing page of every public section.
func (b *SitemapBuilder) AddSections() {
	for _, s := range Sections {
		b.urls = append(b.urls, SitemapURL{
			Loc:        b.siteURL + "/" + s,
			ChangeFreq: ChangeFreqDaily,
			Priority:   "0.8",
		})
	}
}

// AddEntries adds detail pages under section. Entries without a slug are
// skipped since they have no public URL.
func (b *SitemapBuilder) AddEntries(section string, entries []Entry) {
	for _, e := range entries {
		if e.Slug == "" {
			continue
		}
		u := SitemapURL{
			Loc:        b.siteURL + "/" + section + "/" + e.Slug,
			ChangeFreq: ChangeFreqWeekly,
			Priority:   "0.6",
		}
		if !e.ModTime.IsZero() {
			u.LastMod = e.ModTime.UTC().Format(time.RFC3339)
		}
		b.urls = append(b.urls, u)
	}
}

// Len returns the number of URLs added so far.
func (b *SitemapBuilder) Len() int {
	return len(b.urls)
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(output, xmlBytes...), nil
}
