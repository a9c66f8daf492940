package domain

import "strings"

const unknownAuthor = "(unknown)"

// FormatNote renders a build as a single release note line:
// "<first line of message> *by <author>*".
func FormatNote(b Build) string {
	name := unknownAuthor
	if b.Author != nil && b.Author.Name != "" {
		name = b.Author.Name
	}
	return FirstLine(EscapeMentions(b.Message)) + " *by " + name + "*"
}

// EscapeMentions breaks "@" mentions so chat renderers do not ping anyone.
func EscapeMentions(s string) string {
	return strings.ReplaceAll(s, "@", "@ ")
}

func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
