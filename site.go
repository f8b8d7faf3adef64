package tropiiify

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/arkalab/tropiiify/views"
)

// siteView is the landing page configuration shared with the preview server.
func (a *App) siteView() views.Site {
	return views.Site{
		Title:         a.Config.CollectionLabel,
		Language:      a.Config.Language,
		BaseURI:       a.Config.BaseURI,
		CollectionURI: CollectionURI(a.Config.BaseURI),
		ViewerURL:     a.Config.ViewerURL,
	}
}

// landingItems lists resources for the landing page. Thumbnails are
// relative to the output root so the page works from any host.
func landingItems(resources []*Resource, thumbBound int) []views.Item {
	items := make([]views.Item, 0, len(resources))
	for _, r := range resources {
		it := views.Item{
			ID:          r.ID,
			Label:       r.Label,
			Summary:     r.Summary,
			ManifestURI: ManifestURI(r),
			Photos:      len(r.Photos),
		}
		if len(r.Photos) > 0 {
			p := r.Photos[0]
			size := FitWithin(p.Width, p.Height, thumbBound)
			it.Thumbnail = path.Join(r.ID, p.Checksum, filepath.ToSlash(SizePath(size, derivativeExt(p.Path))))
			it.ThumbWidth = size.Width
			it.ThumbHeight = size.Height
		}
		items = append(items, it)
	}
	return items
}

// writeSite writes index.html and sitemap.xml next to the collection.
func (a *App) writeSite(ctx context.Context, root string, resources []*Resource) error {
	page := views.Landing(a.siteView(), landingItems(resources, a.Config.ThumbBound))
	if err := RenderFile(ctx, filepath.Join(root, "index.html"), page); err != nil {
		return fmt.Errorf("write landing page: %w", err)
	}
	if err := writeSitemap(filepath.Join(root, "sitemap.xml"), a.Config.BaseURI, resources); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}
