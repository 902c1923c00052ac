package compliance

import "regexp"

// Redaction patterns for personal-data-shaped substrings in outbound text.
// Best effort: what cannot be redacted blocks the send instead.
var redactions = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\b\d{3}\.?\d{3}\.?\d{3}-?\d{2}\b`), "[documento removido]"},
	{regexp.MustCompile(`\b\d{4}[ .-]?\d{4}[ .-]?\d{4}[ .-]?\d{4}\b`), "[cartão removido]"},
	{regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`), "[e-mail removido]"},
	{regexp.MustCompile(`\b(\+?55 ?)?\(?\d{2}\)? ?9?\d{4}[- ]?\d{4}\b`), "[telefone removido]"},
}

// Sanitize redacts personal-data-shaped substrings. changed reports
// whether any redaction was applied.
func Sanitize(text string) (sanitized string, changed bool) {
	sanitized = text
	for _, r := range redactions {
		if r.pattern.MatchString(sanitized) {
			sanitized = r.pattern.ReplaceAllString(sanitized, r.replacement)
			changed = true
		}
	}
	return sanitized, changed
}
