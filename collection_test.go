package tropiiify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkalab/tropiiify/iiif"
)

func TestBuildCollection(t *testing.T) {
	var resources []*Resource
	for _, id := range []string{"c", "a", "b"} {
		resources = append(resources, &Resource{
			ID:     id,
			Label:  "Item " + id,
			BaseID: "http://localhost:8080/" + id,
			Photos: []Photo{{Checksum: "sum" + id, Path: "/src/" + id + ".jpg", Width: 4000, Height: 3000}},
		})
	}

	c := BuildCollection(resources, testDocOpts)
	assert.Equal(t, "http://localhost:8080/index.json", c.ID)
	assert.Equal(t, "Collection", c.Type)
	assert.Equal(t, iiif.LangMap{"en": {"Tropy collection"}}, c.Label)
	require.Len(t, c.Items, 3)
	assert.Equal(t, "http://localhost:8080/c/manifest.json", c.Items[0].ID)
	assert.Equal(t, "http://localhost:8080/a/manifest.json", c.Items[1].ID)
	assert.Equal(t, "http://localhost:8080/b/manifest.json", c.Items[2].ID)
	assert.Equal(t, iiif.LangMap{"en": {"Item c"}}, c.Items[0].Label)

	require.Len(t, c.Items[0].Thumbnail, 1)
	thumb := c.Items[0].Thumbnail[0]
	assert.Equal(t, "http://localhost:8080/c/sumc/full/300,225/0/default.jpg", thumb.ID)
	assert.Equal(t, 300, thumb.Width)
	assert.Equal(t, 225, thumb.Height)
	assert.Empty(t, thumb.Service)
	assert.Empty(t, c.Items[1].Thumbnail)
	assert.Empty(t, c.Items[2].Thumbnail)
}

func TestBuildCollectionEmpty(t *testing.T) {
	c := BuildCollection(nil, testDocOpts)
	assert.NotNil(t, c.Items)
	assert.Empty(t, c.Items)
}

func TestBuildCollectionFirstItemWithoutPhotos(t *testing.T) {
	resources := []*Resource{
		{ID: "a", BaseID: "http://localhost:8080/a"},
		{ID: "b", BaseID: "http://localhost:8080/b", Photos: []Photo{{Checksum: "x", Path: "/b.jpg", Width: 10, Height: 10}}},
	}
	c := BuildCollection(resources, testDocOpts)
	assert.Empty(t, c.Items[0].Thumbnail)
	assert.Empty(t, c.Items[1].Thumbnail)
}
