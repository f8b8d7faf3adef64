// Package markup turns the HTML fragments stored in Tropy notes and the
// bracketed link convention used in metadata values into safe text and markup.
package markup

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reTag       = regexp.MustCompile(`<[^>]*>`)
	reBlockEnd  = regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|blockquote)>|<br\s*/?>`)
	reSpace     = regexp.MustCompile(`\s+`)
	reLinkToken = regexp.MustCompile(`(?i)(\w[\w\s]*?) \[(https?://[^\]\s]+)\]`)
)

// Linkify rewrites `text [http://url]` tokens into anchors that open in a
// new tab. Text inside existing tags is left alone.
func Linkify(s string) string {
	return ApplyOutsideTags(s, func(seg string) string {
		return reLinkToken.ReplaceAllString(seg, `<a href="$2" target="_blank">$1</a>`)
	})
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags,
// so that rewrites never touch URLs inside href attributes.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// StripTags returns the text content of an HTML fragment with entities
// decoded and whitespace collapsed.
func StripTags(s string) string {
	s = reBlockEnd.ReplaceAllString(s, " ")
	s = reTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}

// Excerpt shortens text to at most n runes, cutting at a word boundary.
func Excerpt(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// SafeURL returns raw escaped for an HTML attribute, or "" when it is not
// a relative reference or an http, https or mailto URL.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "", "http", "https", "mailto":
		return html.EscapeString(val)
	default:
		return ""
	}
}
