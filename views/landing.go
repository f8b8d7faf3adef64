package views

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/arkalab/tropiiify/markup"
)

const summaryLength = 280

type page struct {
	strings.Builder
}

func (p *page) text(s string) { p.WriteString(templ.EscapeString(s)) }

func (p *page) attr(name, value string) {
	p.WriteString(" " + name + `="`)
	p.text(value)
	p.WriteByte('"')
}

// url writes an attribute holding a link, dropped when the scheme is unsafe.
func (p *page) url(name, value string) {
	if safe := markup.SafeURL(value); safe != "" {
		p.WriteString(" " + name + `="` + safe + `"`)
	}
}

func (p *page) head(site Site, title string) {
	lang := site.Language
	if lang == "" || lang == "none" {
		lang = "en"
	}
	p.WriteString("<!DOCTYPE html>\n<html")
	p.attr("lang", lang)
	p.WriteString(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
	p.WriteString("<title>")
	p.text(title)
	p.WriteString("</title>")
	if site.CollectionURI != "" {
		p.WriteString(`<link rel="alternate" type="application/ld+json;profile=&quot;http://iiif.io/api/presentation/3/context.json&quot;"`)
		p.url("href", site.CollectionURI)
		p.WriteString(">")
	}
	p.WriteString("<style>" + stylesheet + "</style></head><body>")
}

const stylesheet = `body{font-family:system-ui,sans-serif;margin:0 auto;max-width:72rem;padding:2rem;color:#1c1917}` +
	`header{border-bottom:2px solid #1c1917;margin-bottom:2rem}` +
	`ul.items{list-style:none;padding:0;display:grid;grid-template-columns:repeat(auto-fill,minmax(16rem,1fr));gap:1.5rem}` +
	`ul.items li{border:1px solid #d6d3d1;padding:1rem}` +
	`ul.items img{max-width:100%;height:auto;display:block;margin-bottom:.5rem}` +
	`.meta{font-size:.75rem;text-transform:uppercase;letter-spacing:.12em;color:#57534e}`

// Landing renders the index.html page listing every exported item.
func Landing(site Site, items []Item) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var p page
		p.head(site, site.Title)
		p.WriteString("<header><h1>")
		p.text(site.Title)
		p.WriteString("</h1><p class=\"meta\">")
		p.text(Count(len(items), "item"))
		if site.CollectionURI != "" {
			p.WriteString(` &middot; <a`)
			p.url("href", ViewerLink(site.ViewerURL, site.CollectionURI))
			p.WriteString(">IIIF collection</a>")
		}
		p.WriteString("</p></header><main><ul class=\"items\">")
		for _, it := range items {
			p.WriteString("<li")
			p.attr("id", it.ID)
			p.WriteString(">")
			if it.Thumbnail != "" {
				p.WriteString(`<img loading="lazy" decoding="async"`)
				p.url("src", it.Thumbnail)
				p.attr("alt", it.Label)
				if it.ThumbWidth > 0 && it.ThumbHeight > 0 {
					p.attr("width", strconv.Itoa(it.ThumbWidth))
					p.attr("height", strconv.Itoa(it.ThumbHeight))
				}
				p.WriteString(">")
			}
			p.WriteString("<h2><a")
			p.url("href", ViewerLink(site.ViewerURL, it.ManifestURI))
			p.WriteString(">")
			label := it.Label
			if label == "" {
				label = it.ID
			}
			p.text(label)
			p.WriteString("</a></h2><p class=\"meta\">")
			p.text(Count(it.Photos, "photo"))
			p.WriteString("</p>")
			if s := markup.Excerpt(markup.StripTags(it.Summary), summaryLength); s != "" {
				p.WriteString("<p>")
				p.text(s)
				p.WriteString("</p>")
			}
			p.WriteString("</li>")
		}
		p.WriteString("</ul></main></body></html>\n")
		_, err := io.WriteString(w, p.String())
		return err
	})
}

// NotFound renders the preview server's 404 page.
func NotFound(site Site) templ.Component {
	return message(site, "Not found", "The requested file is not part of this export.")
}

// ServerError renders the preview server's 500 page.
func ServerError(site Site) templ.Component {
	return message(site, "Server error", "Something went wrong while serving this file.")
}

func message(site Site, title, body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var p page
		p.head(site, title+" | "+site.Title)
		p.WriteString("<main><h1>")
		p.text(title)
		p.WriteString("</h1><p>")
		p.text(body)
		p.WriteString(`</p><p><a href="/">Back to the collection</a></p></main></body></html>` + "\n")
		_, err := io.WriteString(w, p.String())
		return err
	})
}
