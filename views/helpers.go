package views

import (
	"net/url"
	"strconv"
	"strings"
)

// ViewerLink returns the viewer URL that opens manifest. A "{manifest}"
// placeholder in viewer is replaced by the escaped manifest URI, otherwise
// it is passed as the manifest query parameter. Without a viewer the
// manifest URI itself is returned.
func ViewerLink(viewer, manifest string) string {
	if viewer == "" {
		return manifest
	}
	if strings.Contains(viewer, "{manifest}") {
		return strings.ReplaceAll(viewer, "{manifest}", url.QueryEscape(manifest))
	}
	u, err := url.Parse(viewer)
	if err != nil {
		return manifest
	}
	q := u.Query()
	q.Set("manifest", manifest)
	u.RawQuery = q.Encode()
	return u.String()
}

// Count renders "1 photo" or "3 photos" for noun "photo".
func Count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
