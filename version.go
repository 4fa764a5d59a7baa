package dbrx

import (
	"golang.org/x/mod/semver"
)

// compareVersions compares two version strings, handling versions with or
// without the "v" prefix (e.g., both "1.2" and "v1.2" are valid).
// Returns -1 if v1 < v2, 0 if equal, 1 if v1 > v2.
// Returns -1 if v1 is empty.
func compareVersions(v1, v2 string) int {
	if v1 == "" {
		return -1
	}
	if v1[0] != 'v' {
		v1 = "v" + v1
	}
	if v2 != "" && v2[0] != 'v' {
		v2 = "v" + v2
	}
	return semver.Compare(v1, v2)
}

// supportsExecutionContexts reports whether an API version carries the
// contexts and commands surface. Execution contexts first shipped in 1.2.
func supportsExecutionContexts(apiVersion string) bool {
	return compareVersions(apiVersion, MinAPIVersion) >= 0
}
