// Package iiif holds the IIIF Presentation API 3 and Image API 3 document
// types written by the exporter. Field names and nesting follow the
// published specifications so the documents load in standard viewers.
package iiif

import "encoding/json"

const (
	PresentationContext = "http://iiif.io/api/presentation/3/context.json"
	ImageContext        = "http://iiif.io/api/image/3/context.json"
	NavPlaceContext     = "http://iiif.io/api/extension/navplace/context.json"
	ImageProtocol       = "http://iiif.io/api/image"
)

// Context is a JSON-LD @context that marshals as a plain string when it
// holds a single entry.
type Context []string

func (c Context) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

func (c *Context) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = Context{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = list
	return nil
}

// LangMap is a language map such as {"en": ["Title"]}.
type LangMap map[string][]string

// Lang builds a single-entry language map.
func Lang(lang, value string) LangMap {
	return LangMap{lang: {value}}
}

// LabelValue is a metadata or requiredStatement entry.
type LabelValue struct {
	Label LangMap `json:"label"`
	Value LangMap `json:"value"`
}

// Service is an image service reference.
type Service struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Profile string `json:"profile"`
}

// Resource is a content resource: image, text or homepage.
type Resource struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Label    LangMap   `json:"label,omitempty"`
	Format   string    `json:"format,omitempty"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Service  []Service `json:"service,omitempty"`
	Language string    `json:"language,omitempty"`
}

// TextualBody is the body of a commenting annotation.
type TextualBody struct {
	Type     string `json:"type"`
	Language string `json:"language,omitempty"`
	Format   string `json:"format"`
	Value    string `json:"value"`
}

// Annotation binds a body to a target. Body is a *Resource for painting
// annotations and a *TextualBody for commentary.
type Annotation struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Motivation string `json:"motivation"`
	Body       any    `json:"body,omitempty"`
	Target     string `json:"target"`
}

// AnnotationPage groups annotations.
type AnnotationPage struct {
	ID    string       `json:"id"`
	Type  string       `json:"type"`
	Items []Annotation `json:"items"`
}

// Canvas is one visual unit of a manifest.
type Canvas struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Label       LangMap          `json:"label,omitempty"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	Metadata    []LabelValue     `json:"metadata,omitempty"`
	Items       []AnnotationPage `json:"items"`
	Annotations []AnnotationPage `json:"annotations,omitempty"`
}

// Geometry is a GeoJSON geometry; only points are produced.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// FeatureProperties carries the feature label.
type FeatureProperties struct {
	Label LangMap `json:"label,omitempty"`
}

// Feature is a GeoJSON feature of the navPlace extension.
type Feature struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Properties FeatureProperties `json:"properties"`
	Geometry   Geometry          `json:"geometry"`
}

// FeatureCollection is the navPlace value.
type FeatureCollection struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Manifest is a Presentation 3 manifest.
type Manifest struct {
	Context           Context            `json:"@context"`
	ID                string             `json:"id"`
	Type              string             `json:"type"`
	Label             LangMap            `json:"label"`
	Summary           LangMap            `json:"summary,omitempty"`
	Metadata          []LabelValue       `json:"metadata,omitempty"`
	RequiredStatement *LabelValue        `json:"requiredStatement,omitempty"`
	Rights            string             `json:"rights,omitempty"`
	Behavior          []string           `json:"behavior,omitempty"`
	Homepage          []Resource         `json:"homepage,omitempty"`
	Thumbnail         []Resource         `json:"thumbnail,omitempty"`
	NavPlace          *FeatureCollection `json:"navPlace,omitempty"`
	Items             []Canvas           `json:"items"`
}

// Reference is a manifest entry inside a collection.
type Reference struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Label     LangMap    `json:"label"`
	Thumbnail []Resource `json:"thumbnail,omitempty"`
}

// Collection is a Presentation 3 collection.
type Collection struct {
	Context Context     `json:"@context"`
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Label   LangMap     `json:"label"`
	Items   []Reference `json:"items"`
}

// Tile describes one tile size of an image service.
type Tile struct {
	Width        int   `json:"width"`
	Height       int   `json:"height,omitempty"`
	ScaleFactors []int `json:"scaleFactors"`
}

// Size is an entry of an image service's sizes list.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ImageInfo is an Image API 3 info.json document.
type ImageInfo struct {
	Context  string `json:"@context"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	Protocol string `json:"protocol"`
	Profile  string `json:"profile"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Tiles    []Tile `json:"tiles,omitempty"`
	Sizes    []Size `json:"sizes,omitempty"`
}
