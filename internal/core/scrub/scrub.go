// Package scrub masks PII in note text before it leaves the process
// or lands in stored evidence
package scrub

import "regexp"

var (
	emailRE = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3})?[-.\s]?(?:\(?\d{2,4}\)?[-.\s]?)?\d{3,4}[-.\s]?\d{3,4}\b`)
)

// Text replaces email addresses and phone numbers with placeholder tokens
func Text(s string) string {
	s = emailRE.ReplaceAllString(s, "[email]")
	s = phoneRE.ReplaceAllString(s, "[phone]")
	return s
}
