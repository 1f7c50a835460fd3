// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"net/http"

	"github.com/olegiv/olabel-go/internal/model"
	"github.com/olegiv/olabel-go/internal/util"
)

// CountryResolver maps an IP address to an ISO country code, or "".
// *geoip.Lookup satisfies it.
type CountryResolver interface {
	Country(ip string) string
}

// Enricher fills the request-derived fields of a page view.
type Enricher struct {
	geo CountryResolver
}

// NewEnricher creates an Enricher. geo may be nil.
func NewEnricher(geo CountryResolver) *Enricher {
	return &Enricher{geo: geo}
}

// Enrich sets browser, OS, device and country on v from r. Client-supplied
// values for those fields are overwritten.
func (e *Enricher) Enrich(r *http.Request, v *model.PageView) {
	c := ParseUserAgent(r.UserAgent())
	v.Browser = &c.Browser
	v.OS = &c.OS
	v.Device = &c.Device

	v.Country = nil
	if e.geo != nil {
		if cc := e.geo.Country(util.ClientIP(r)); cc != "" {
			v.Country = &cc
		}
	}

	if v.Referrer == nil {
		if ref := r.Referer(); ref != "" {
			v.Referrer = &ref
		}
	}
}
