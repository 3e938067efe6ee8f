// Package version checks workflow document schema versions.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Normalize adds the "v" prefix semver expects: "1.2.3" -> "v1.2.3".
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// IsCompatible reports whether a document written with version doc can be read
// by code supporting version supported: same major, and not newer.
func IsCompatible(doc, supported string) bool {
	d, s := Normalize(doc), Normalize(supported)
	if !semver.IsValid(d) || !semver.IsValid(s) {
		return false
	}
	return semver.Major(d) == semver.Major(s) && semver.Compare(d, s) <= 0
}
