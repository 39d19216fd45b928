package audit

import (
	ua "github.com/mssola/useragent"
)

// ParseBrowser normalizes a raw User-Agent header into a human-readable
// browser name for the audit trail. Unrecognized agents yield the empty
// string; the raw header is stored alongside regardless.
func ParseBrowser(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	parsed := ua.New(userAgent)
	name, version := parsed.Browser()
	if name == "" {
		return ""
	}
	if version == "" {
		return name
	}
	return name + " " + version
}
