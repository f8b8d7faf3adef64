package tropiiify

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/arkalab/tropiiify/markup"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonIdentChars = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Sanitize converts a raw item identifier into a lower-case, file- and
// URI-safe id. Accents are folded, letters and digits of any script are
// kept, and every run of other characters becomes a single underscore.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	result = strings.ToLower(result)
	result = nonIdentChars.ReplaceAllString(result, "_")
	return strings.Trim(result, "_")
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// Linkify rewrites `text [http://url]` tokens into anchor markup.
func Linkify(s string) string {
	return markup.Linkify(s)
}

// JoinURI joins a base URI and path segments with single slashes.
func JoinURI(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "/"))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(s)
	}
	return b.String()
}

// FitWithin scales w×h so that its longer side equals bound, preserving the
// aspect ratio. The shorter side is rounded and never drops below 1.
func FitWithin(w, h, bound int) Size {
	if w <= 0 || h <= 0 || bound <= 0 {
		return Size{}
	}
	if w >= h {
		return Size{Width: bound, Height: max(1, int(math.Round(float64(h)*float64(bound)/float64(w))))}
	}
	return Size{Width: max(1, int(math.Round(float64(w)*float64(bound)/float64(h)))), Height: bound}
}

// MidsizeBound caps bound at the photo's longest side so midsize copies are
// never upscaled.
func MidsizeBound(w, h, bound int) int {
	return min(bound, max(w, h))
}

// titleFromField turns "metadataCreatorName" into "Creator Name".
func titleFromField(field string) string {
	name := strings.TrimPrefix(field, metadataPrefix)
	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
