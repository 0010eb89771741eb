package utils

import "github.com/microcosm-cc/bluemonday"

// Goal text is stored and echoed back as plain text, so strip all markup.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize cleans user-supplied text to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
