package tropiiify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteResources() []*Resource {
	return []*Resource{
		{ID: "photo_a", Label: "Photo A", BaseID: "http://localhost:8080/photo_a",
			Photos: []Photo{{Checksum: "aaa", Width: 4000, Height: 3000, Path: "/src/a.tif"}}},
		{ID: "photo_b", Label: "Photo B", BaseID: "http://localhost:8080/photo_b"},
	}
}

func TestLandingItems(t *testing.T) {
	items := landingItems(siteResources(), 300)
	require.Len(t, items, 2)

	assert.Equal(t, "photo_a", items[0].ID)
	assert.Equal(t, "http://localhost:8080/photo_a/manifest.json", items[0].ManifestURI)
	assert.Equal(t, "photo_a/aaa/full/300,225/0/default.tif", items[0].Thumbnail)
	assert.Equal(t, 300, items[0].ThumbWidth)
	assert.Equal(t, 225, items[0].ThumbHeight)
	assert.Equal(t, 1, items[0].Photos)

	assert.Empty(t, items[1].Thumbnail)
	assert.Equal(t, 0, items[1].Photos)
}

func TestBuildSitemap(t *testing.T) {
	s := buildSitemap("http://localhost:8080", siteResources())
	var locs []string
	for _, u := range s.URLs {
		locs = append(locs, u.Loc)
	}
	assert.Equal(t, []string{
		"http://localhost:8080/",
		"http://localhost:8080/index.json",
		"http://localhost:8080/photo_a/manifest.json",
		"http://localhost:8080/photo_b/manifest.json",
	}, locs)
}

func TestWriteSite(t *testing.T) {
	root := t.TempDir()
	app := New(Config{CollectionLabel: "Letters"})
	require.NoError(t, app.writeSite(context.Background(), root, siteResources()))

	page, err := os.ReadFile(filepath.Join(root, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Letters")
	assert.Contains(t, string(page), "http://localhost:8080/photo_b/manifest.json")

	sitemap, err := os.ReadFile(filepath.Join(root, "sitemap.xml"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(sitemap), `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, string(sitemap), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.True(t, strings.HasSuffix(string(sitemap), "</urlset>\n"))
}
