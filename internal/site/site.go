// Package site describes the installation a database belongs to.
package site

import (
	"strings"

	"db-sync/internal/filename"
)

const (
	Local  = "Local"
	Remote = "Remote"
)

// Site is the URL of the installation plus an optional environment label.
type Site struct {
	URL string
	// EnvironmentOverride replaces the detected environment when set.
	EnvironmentOverride string
}

// Environment returns the environment label used in dump file names. An
// override is reduced to one word so it survives the file name round trip.
func (s Site) Environment() string {
	if o := filename.EnvironmentLabel(s.EnvironmentOverride); o != "" {
		return o
	}
	return DetectEnvironment(s.URL)
}

// DetectEnvironment returns Local for development hosts and Remote otherwise.
func DetectEnvironment(url string) string {
	u := strings.ToLower(url)
	if strings.Contains(u, "localhost") || strings.Contains(u, ".local") {
		return Local
	}
	return Remote
}
