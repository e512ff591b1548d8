package service

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	nonThumbRegex   = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// normalizeNavID trims the identifier and joins inner whitespace with underscores.
func normalizeNavID(navID string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(navID), "_")
}

// defaultThumbnail derives "KellerHall.jpg" from "Keller Hall".
func defaultThumbnail(buildingName string) string {
	base := nonThumbRegex.ReplaceAllString(buildingName, "")
	if base == "" {
		return ""
	}
	return base + ".jpg"
}
