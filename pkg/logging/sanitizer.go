package logging

import (
	"regexp"
)

const (
	// MaxChatLogLength caps analyst queries written to logs.
	MaxChatLogLength = 80
	// RedactedText replaces anything secret.
	RedactedText = "[REDACTED]"
)

var (
	// OpenAI style secret keys: sk-..., sk-proj-...
	secretKeyPattern = regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`)

	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._~+/=-]+`)

	// api_key=..., apikey: ..., key=...
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)([=:]\s*)[A-Za-z0-9_-]{12,}`)

	// user:pass@host in endpoint URLs
	urlCredentialPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@`)
)

// SanitizeError returns err's message with credentials removed. Use it on
// every error that came back from the model endpoint.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeText(err.Error())
}

// SanitizeText strips keys, bearer tokens and URL credentials from s.
func SanitizeText(s string) string {
	if s == "" {
		return ""
	}
	out := bearerPattern.ReplaceAllString(s, "Bearer "+RedactedText)
	out = secretKeyPattern.ReplaceAllString(out, RedactedText)
	out = apiKeyPattern.ReplaceAllString(out, "${1}${2}"+RedactedText)
	out = urlCredentialPattern.ReplaceAllString(out, "://"+RedactedText+"@")
	return out
}

// SanitizeQuery shortens an analyst chat query for logging.
func SanitizeQuery(query string) string {
	return SanitizeText(TruncateString(query, MaxChatLogLength))
}

// TruncateString cuts s to maxLen runes and appends "..." when it did.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
