// Package redact strips credentials and personal data from text before it is
// logged. Collaborator errors can echo request URLs, bearer tokens and
// recipient addresses, so API error paths log through Error.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	PathPlaceholder       = "[REDACTED_PATH]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules run in order; earlier rules see the unmodified text.
var rules = []rule{
	// user:password@ in connection strings
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|mysql|redis|amqp)://[^@\s/]+@`), "$1://" + CredentialPlaceholder + "@"},
	// Authorization headers
	{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-.~+/=]{8,}`), "Bearer " + CredentialPlaceholder},
	// SendGrid keys
	{regexp.MustCompile(`\bSG\.[A-Za-z0-9_\-]{8,}\.[A-Za-z0-9_\-]{8,}`), KeyPlaceholder},
	// Google API keys
	{regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{30,}`), KeyPlaceholder},
	// key=value style secrets, including query parameters
	{
		regexp.MustCompile(`(?i)\b(api[_-]?key|access[_-]?token|token|secret|password|passwd|key)([=:]\s*|"\s*:\s*")[^&\s"',]{4,}`),
		"$1$2" + KeyPlaceholder,
	},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},
	{regexp.MustCompile(`(?:^|\s)(/[\w.\-]+){3,}`), " " + PathPlaceholder},
}

// String returns input with every sensitive fragment replaced.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
