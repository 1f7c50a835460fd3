// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics enriches recorded page views with client details derived
// from the request: browser, OS, device class and country.
package analytics

import (
	"github.com/mileusna/useragent"
)

// Device classes.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

// Client is what a user agent string reveals about the visitor.
type Client struct {
	Browser string
	OS      string
	Device  string
}

// ParseUserAgent extracts browser, OS and device class from a user agent.
// Unrecognized browsers and systems come back as "Unknown".
func ParseUserAgent(uaString string) Client {
	ua := useragent.Parse(uaString)

	c := Client{Browser: ua.Name, OS: ua.OS}
	if c.Browser == "" {
		c.Browser = "Unknown"
	}
	if c.OS == "" {
		c.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		c.Device = DeviceMobile
	case ua.Tablet:
		c.Device = DeviceTablet
	case ua.Bot:
		c.Device = DeviceBot
	default:
		c.Device = DeviceDesktop
	}
	return c
}
