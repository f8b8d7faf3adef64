package tropiiify

import "github.com/arkalab/tropiiify/iiif"

// CollectionURI is the public id of the top-level collection.
func CollectionURI(baseURI string) string {
	return JoinURI(baseURI, "index.json")
}

// BuildCollection lists a manifest reference for every resource, in order.
// The first reference carries a thumbnail pointing at the already written
// thumbnail of its first photo.
func BuildCollection(resources []*Resource, opts DocumentOptions) *iiif.Collection {
	bound := opts.ThumbBound
	if bound == 0 {
		bound = defaultThumbBound
	}
	c := &iiif.Collection{
		Context: iiif.Context{iiif.PresentationContext},
		ID:      CollectionURI(opts.BaseURI),
		Type:    "Collection",
		Label:   opts.lang(opts.CollectionLabel),
		Items:   make([]iiif.Reference, 0, len(resources)),
	}
	for i, r := range resources {
		ref := iiif.Reference{
			ID:    ManifestURI(r),
			Type:  "Manifest",
			Label: opts.lang(r.Label),
		}
		if i == 0 && len(r.Photos) > 0 {
			p := r.Photos[0]
			ref.Thumbnail = []iiif.Resource{imageResource(r, p, FitWithin(p.Width, p.Height, bound), false)}
		}
		c.Items = append(c.Items, ref)
	}
	return c
}
