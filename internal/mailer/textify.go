package mailer

import (
	"html"
	"regexp"
	"strings"
)

var (
	styleBlockRe = regexp.MustCompile(`(?is)<style[^>]*>.*</style>`)
	boldMarkRe   = regexp.MustCompile(`(?i)</?(?:strong|b)>`)
	anchorRe     = regexp.MustCompile(`(?is)<a[^>]*?href=["']([^"']*)["'][^>]*?>(.*?)</a>`)
	lineBreakRe  = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTagRe     = regexp.MustCompile(`<[^>]*>`)
	leadSpaceRe  = regexp.MustCompile(`(?m)^\s\s+(\S)`)
)

// ConvertHTMLToText produces a plain-text rendition of an HTML body for the
// text/plain part of a multipart message. Links become "text (url)", bold
// runs are wrapped in asterisks and <br> turns into CRLF.
func ConvertHTMLToText(content string) string {
	content = styleBlockRe.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = boldMarkRe.ReplaceAllString(content, "*")
	content = anchorRe.ReplaceAllString(content, "$2 ($1)")
	content = lineBreakRe.ReplaceAllString(content, "\r\n")
	content = anyTagRe.ReplaceAllString(content, "")
	content = leadSpaceRe.ReplaceAllString(content, "\n$1")
	return strings.TrimSpace(content)
}
