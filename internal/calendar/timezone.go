package calendar

import (
	"strings"
	"time"
)

// DefaultZone is used when an event names no recognised zone.
const DefaultZone = "America/New_York"

// abbrevToIANA maps the timezone abbreviations the extractor recognises to
// IANA zone names.
var abbrevToIANA = map[string]string{
	"EST": "America/New_York",
	"EDT": "America/New_York",
	"CST": "America/Chicago",
	"CDT": "America/Chicago",
	"MST": "America/Denver",
	"MDT": "America/Denver",
	"PST": "America/Los_Angeles",
	"PDT": "America/Los_Angeles",
	"UTC": "UTC",
	"GMT": "Etc/GMT",
}

// ZoneName resolves an abbreviation to an IANA zone name. Unknown or
// empty abbreviations resolve to fallback, or DefaultZone when fallback
// is empty.
func ZoneName(abbrev, fallback string) string {
	if name, ok := abbrevToIANA[strings.ToUpper(strings.TrimSpace(abbrev))]; ok {
		return name
	}
	if fallback != "" {
		return fallback
	}
	return DefaultZone
}

// LoadZone loads the named location, falling back to UTC when the zone
// database does not know it.
func LoadZone(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}
