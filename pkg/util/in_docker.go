// Package util contains any functions used across the application that don't match
// any other package
package util

import "os"

var containerMarkers = []string{
	"/.dockerenv",
	"/run/.containerenv", // podman
}

// InContainer reports whether the process runs inside a docker or podman container
func InContainer() bool {
	for _, m := range containerMarkers {
		if _, err := os.Stat(m); err == nil {
			return true
		}
	}

	return false
}
