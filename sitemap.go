package tropiiify

import (
	"encoding/xml"
	"io"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// buildSitemap lists the landing page, the collection and every manifest.
func buildSitemap(baseURI string, resources []*Resource) sitemapURLSet {
	urls := []sitemapURL{
		{Loc: baseURI + "/"},
		{Loc: CollectionURI(baseURI)},
	}
	for _, r := range resources {
		urls = append(urls, sitemapURL{Loc: ManifestURI(r)})
	}
	return sitemapURLSet{XMLNS: sitemapNS, URLs: urls}
}

func writeSitemap(path, baseURI string, resources []*Resource) error {
	sitemap := buildSitemap(baseURI, resources)
	return writeFileAtomic(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(sitemap); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	})
}
