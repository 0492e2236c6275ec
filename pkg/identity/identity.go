// Package identity provides email and phone normalization with SHA-256
// hashing. The ranking aggregate is keyed by buyer identity, so
// semantically equivalent emails (Gmail +aliases and dots) must map to
// the same document regardless of how the buyer typed them.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// NormalizeEmail returns a canonical form of an email address.
//
// For Gmail addresses (@gmail.com and @googlemail.com):
//   - Strips the "+suffix" from the local part (user+tag -> user)
//   - Removes all dots from the local part (u.s.e.r -> user)
//   - Normalizes @googlemail.com to @gmail.com
//
// For all addresses:
//   - Lowercases the entire address
//   - Trims whitespace
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email // malformed, return as-is
	}

	local := email[:at]
	domain := email[at+1:]

	if domain == "googlemail.com" {
		domain = "gmail.com"
	}

	if domain == "gmail.com" {
		if plus := strings.Index(local, "+"); plus >= 0 {
			local = local[:plus]
		}
		local = strings.ReplaceAll(local, ".", "")
	}

	return local + "@" + domain
}

// NormalizePhone strips a phone number down to digits only.
// Venezuelan local numbers (11 digits starting with 0, e.g. 04141234567)
// are rewritten with the country code: 04141234567 -> 584141234567.
// Numbers that already carry a country code are left alone.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	result := digits.String()

	if len(result) == 11 && strings.HasPrefix(result, "0") {
		result = "58" + result[1:]
	}

	return result
}

// HashIdentifier returns the hex-encoded SHA-256 hash of the given string.
// Use this on already-normalized values from NormalizeEmail or NormalizePhone.
func HashIdentifier(normalized string) string {
	h := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(h[:])
}

// EmailHash normalizes the email and returns its SHA-256 hash.
func EmailHash(email string) string {
	return HashIdentifier(NormalizeEmail(email))
}
