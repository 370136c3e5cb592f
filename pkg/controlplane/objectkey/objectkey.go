// Package objectkey builds the object-store key a File's bytes live under.
// Every key is rooted at a per-project prefix so that listing or purging a
// project's objects never has to consult the database.
package objectkey

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// Sanitize lowercases s and replaces every non-alphanumeric character with
// its own hyphen (runs of special characters are NOT collapsed).
func Sanitize(s string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-")
}

func projectPrefix(projectName, projectID string) string {
	return Sanitize(projectName) + "-" + projectID
}

// Original returns the key for an uploaded image's original bytes.
func Original(projectName, projectID, fileID, ext string) string {
	return projectPrefix(projectName, projectID) + "/images/original/" + fileID + "." + ext
}

// Variant returns the key for a named derived image variant.
func Variant(projectName, projectID, fileID, variant, ext string) string {
	return projectPrefix(projectName, projectID) + "/images/" + variant + "/" + fileID + "." + ext
}

// File returns the key for a non-image file upload.
func File(projectName, projectID, fileID, ext string) string {
	return projectPrefix(projectName, projectID) + "/files/" + fileID + "." + ext
}
