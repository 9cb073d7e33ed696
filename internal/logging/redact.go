package logging

import "strings"

// secretKeyPatterns are matched case-insensitively against attribute keys.
// A configuration document can carry gpg passphrases or store credentials,
// and loader debug output must never echo them.
var secretKeyPatterns = []string{
	"PASSWORD",
	"PASSPHRASE",
	"SECRET",
	"TOKEN",
	"CREDENTIAL",
	"PRIVATE",
}

// ShouldMask reports whether an attribute key looks like it holds a secret.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range secretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// MaskValue hides all but the last four characters of value.
// Values of four characters or fewer are fully masked.
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}
