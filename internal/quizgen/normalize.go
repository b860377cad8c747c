package quizgen

import "strings"

// StripCodeFence removes a leading and trailing markdown code-fence marker
// (optionally tagged "json", any case) plus surrounding whitespace from a raw
// LLM response. It is idempotent: an already-clean payload comes back
// unchanged. Malformed JSON is left alone for the validator to reject.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
