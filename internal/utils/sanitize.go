package utils

import (
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-\s]+`)

// LocationID turns free-text location input into the underscore-joined
// identifier the field app displays ("Lab Sector 7" -> "Lab_Sector_7").
func LocationID(text, def string) string {
	clean := strings.Join(strings.Fields(unsafeChars.ReplaceAllString(text, "")), "_")
	if clean == "" {
		return def
	}
	return clean
}
