package mailer

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var (
	// Matches the bracketed part of "Display Name <email@example.com>".
	rfcEmailRe = regexp.MustCompile(`<(.+)>`)
	// Leading run of word characters (unicode aware), whitespace, dots and
	// dashes. For a bare address this stops at the @, which conveniently
	// yields the local part as a display name.
	displayNameRe = regexp.MustCompile(`[\p{L}\p{N}_\s.\-]+`)
)

// EmailFromRFC extracts the address from an RFC 5322 style string such as
// "Möbius <mobius@example.com>". Bare addresses are returned unchanged.
func EmailFromRFC(rfc string) string {
	if m := rfcEmailRe.FindStringSubmatch(rfc); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(rfc)
}

// DisplayNameFromRFC extracts the display name from an RFC 5322 style
// string. For a bare address the local part doubles as the display name,
// so "john.doe@example.com" yields "john.doe".
func DisplayNameFromRFC(rfc string) string {
	m := displayNameRe.FindString(rfc)
	return strings.TrimSpace(m)
}

// ValidEmail reports whether addr parses as a single RFC 5322 address.
func ValidEmail(addr string) bool {
	if addr == "" {
		return false
	}
	_, err := mail.ParseAddress(addr)
	return err == nil
}

// FormatAddress renders an address back to "Name <email>" form. With an
// empty name only the bare address is returned.
func FormatAddress(email, name string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
