package tropiiify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arkalab/tropiiify/iiif"
)

// ErrMissingSizes is returned when a photo has no derivative sizes.
var ErrMissingSizes = errors.New("tropiiify: missing derivative sizes")

// DocumentOptions are the configured texts and roots used when assembling
// manifests and the collection.
type DocumentOptions struct {
	BaseURI          string
	Language         string
	CollectionLabel  string
	AttributionLabel string
	AttributionText  string
	HomepageLabel    string
	Behavior         []string
	ThumbBound       int
}

func (o DocumentOptions) lang(value string) iiif.LangMap {
	l := o.Language
	if l == "" {
		l = "none"
	}
	return iiif.Lang(l, value)
}

// ManifestURI is the public id of r's manifest.
func ManifestURI(r *Resource) string {
	return JoinURI(r.BaseID, "manifest.json")
}

// BuildManifest assembles the Presentation 3 manifest of r. sizes must
// hold one entry per photo, in photo order.
func BuildManifest(r *Resource, sizes []DerivativeSizes, opts DocumentOptions) (*iiif.Manifest, error) {
	if len(sizes) != len(r.Photos) {
		return nil, fmt.Errorf("%w: item %s has %d photos and %d size entries", ErrMissingSizes, r.ID, len(r.Photos), len(sizes))
	}

	m := &iiif.Manifest{
		Context:  iiif.Context{iiif.PresentationContext},
		ID:       ManifestURI(r),
		Type:     "Manifest",
		Label:    opts.lang(r.Label),
		Rights:   r.Rights,
		Behavior: opts.Behavior,
		Items:    make([]iiif.Canvas, 0, len(r.Photos)),
	}
	if r.Summary != "" {
		m.Summary = opts.lang(r.Summary)
	}
	if r.RequiredStatement != "" {
		value := strings.TrimSpace(opts.AttributionText + " " + Linkify(r.RequiredStatement))
		m.RequiredStatement = &iiif.LabelValue{
			Label: opts.lang(opts.AttributionLabel),
			Value: opts.lang(value),
		}
	}
	m.Homepage = []iiif.Resource{homepage(r, opts)}

	if len(r.Photos) > 0 {
		p := r.Photos[0]
		m.Thumbnail = []iiif.Resource{imageResource(r, p, sizes[0].Thumb, false)}
	}
	m.Metadata = metadataRows(r.Metadata, opts)

	if r.Latitude != nil && r.Longitude != nil {
		m.Context = iiif.Context{iiif.NavPlaceContext, iiif.PresentationContext}
		m.NavPlace = &iiif.FeatureCollection{
			ID:   JoinURI(r.BaseID, "feature-collection", "0"),
			Type: "FeatureCollection",
			Features: []iiif.Feature{{
				ID:         JoinURI(r.BaseID, "feature", "0"),
				Type:       "Feature",
				Properties: iiif.FeatureProperties{Label: opts.lang(r.Label)},
				Geometry: iiif.Geometry{
					Type:        "Point",
					Coordinates: []float64{*r.Longitude, *r.Latitude},
				},
			}},
		}
	}

	for i, p := range r.Photos {
		m.Items = append(m.Items, buildCanvas(r, i, p, sizes[i], opts))
	}
	return m, nil
}

func homepage(r *Resource, opts DocumentOptions) iiif.Resource {
	id := r.Homepage
	if id == "" {
		id = opts.BaseURI
	}
	return iiif.Resource{
		ID:     id,
		Type:   "Text",
		Label:  opts.lang(opts.HomepageLabel),
		Format: "text/html",
	}
}

func metadataRows(rows []MetadataRow, opts DocumentOptions) []iiif.LabelValue {
	var out []iiif.LabelValue
	for _, row := range rows {
		if strings.TrimSpace(row.Value) == "" {
			continue
		}
		out = append(out, iiif.LabelValue{
			Label: opts.lang(row.Label),
			Value: opts.lang(Linkify(row.Value)),
		})
	}
	return out
}

// imageResource points at a derivative of p; withService adds the level-0
// image service rooted at the photo directory.
func imageResource(r *Resource, p Photo, size Size, withService bool) iiif.Resource {
	serviceID := JoinURI(r.BaseID, p.Checksum)
	res := iiif.Resource{
		ID:     SizeURI(serviceID, size, derivativeExt(p.Path)),
		Type:   "Image",
		Format: derivativeFormat(p),
		Width:  size.Width,
		Height: size.Height,
	}
	if withService {
		res.Service = []iiif.Service{{ID: serviceID, Type: "ImageService3", Profile: "level0"}}
	}
	return res
}

// CanvasURI is the id of r's i-th canvas.
func CanvasURI(r *Resource, i int) string {
	return JoinURI(r.BaseID, "canvas", strconv.Itoa(i))
}

func buildCanvas(r *Resource, i int, p Photo, sizes DerivativeSizes, opts DocumentOptions) iiif.Canvas {
	canvasID := CanvasURI(r, i)
	c := iiif.Canvas{
		ID:       canvasID,
		Type:     "Canvas",
		Width:    p.Width,
		Height:   p.Height,
		Metadata: metadataRows(p.Metadata, opts),
	}
	if p.Label != "" {
		c.Label = opts.lang(p.Label)
	}

	paintPage := JoinURI(canvasID, "page", "0")
	body := imageResource(r, p, sizes.Midsize, true)
	c.Items = []iiif.AnnotationPage{{
		ID:   paintPage,
		Type: "AnnotationPage",
		Items: []iiif.Annotation{{
			ID:         JoinURI(paintPage, "annotation", "0"),
			Type:       "Annotation",
			Motivation: "painting",
			Body:       &body,
			Target:     canvasID,
		}},
	}}

	if p.Note == "" && len(p.Selections) == 0 {
		return c
	}
	commentPage := JoinURI(canvasID, "page", "1")
	var annos []iiif.Annotation
	add := func(note, target string) {
		a := iiif.Annotation{
			ID:         JoinURI(commentPage, "annotation", strconv.Itoa(len(annos))),
			Type:       "Annotation",
			Motivation: "commenting",
			Target:     target,
		}
		if note != "" {
			a.Body = &iiif.TextualBody{
				Type:     "TextualBody",
				Language: opts.Language,
				Format:   "text/html",
				Value:    note,
			}
		}
		annos = append(annos, a)
	}
	if p.Note != "" {
		add(p.Note, canvasID)
	}
	for _, s := range p.Selections {
		add(s.Note, fmt.Sprintf("%s#xywh=%d,%d,%d,%d", canvasID, s.X, s.Y, s.Width, s.Height))
	}
	c.Annotations = []iiif.AnnotationPage{{
		ID:    commentPage,
		Type:  "AnnotationPage",
		Items: annos,
	}}
	return c
}
