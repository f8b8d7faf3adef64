package tropiiify

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOpts = ResourceOptions{OutputRoot: "/out", BaseURI: "http://localhost:8080"}

func TestNewResourceSanitizesID(t *testing.T) {
	node := itemNode("Photo A", "A photo", photoSpec{checksum: "abc123", path: "/src/a.png", width: 4000, height: 3000})
	node[dcNS+"creator"] = lit("Jane Roe")
	node[dcNS+"date"] = lit("  ")
	node[dcNS+"description"] = lit("<p>Summary</p>")

	r, err := NewResource(node, GenericPropertyMap(), testOpts)
	require.NoError(t, err)

	assert.Equal(t, "Photo A", r.RawID)
	assert.Equal(t, "photo_a", r.ID)
	assert.Equal(t, "A photo", r.Label)
	assert.Equal(t, "<p>Summary</p>", r.Summary)
	assert.Equal(t, filepath.Join("/out", "photo_a"), r.Path)
	assert.Equal(t, "http://localhost:8080/photo_a", r.BaseID)
	assert.Equal(t, []MetadataRow{{Field: "metadataCreator", Label: "Creator", Value: "Jane Roe"}}, r.Metadata)
	assert.Nil(t, r.Latitude)

	require.Len(t, r.Photos, 1)
	p := r.Photos[0]
	assert.Equal(t, "abc123", p.Checksum)
	assert.Equal(t, 4000, p.Width)
	assert.Equal(t, 3000, p.Height)
	assert.Equal(t, "image/png", p.Mimetype)
	assert.Empty(t, p.Note)
	assert.Empty(t, p.Selections)
}

func TestNewResourceTemplateFields(t *testing.T) {
	pm := BuildPropertyMap(&Template{
		ID: "https://example.org/templates/place",
		Fields: []TemplateField{
			{Label: "id", Property: "urn:id"},
			{Label: "latitude", Property: "urn:lat"},
			{Label: "longitude", Property: "urn:lon"},
			{Label: "homepage:value", Property: "urn:home"},
			{Label: "metadata:place|metadata:location", Property: "urn:place"},
		},
	})
	node := Node{
		"urn:id":    lit("Madrid 1"),
		"urn:lat":   lit(float64(40)),
		"urn:lon":   lit("-3.7"),
		"urn:home":  lit("https://example.org/madrid"),
		"urn:place": lit("Madrid"),
	}
	r, err := NewResource(node, pm, testOpts)
	require.NoError(t, err)
	require.NotNil(t, r.Latitude)
	require.NotNil(t, r.Longitude)
	assert.Equal(t, 40.0, *r.Latitude)
	assert.Equal(t, -3.7, *r.Longitude)
	assert.Equal(t, "https://example.org/madrid", r.Homepage)
	require.Len(t, r.Metadata, 2)
	assert.Equal(t, "Place", r.Metadata[0].Label)
	assert.Equal(t, "Location", r.Metadata[1].Label)
}

func placeMap() PropertyMap {
	return BuildPropertyMap(&Template{
		ID: "https://example.org/templates/place",
		Fields: []TemplateField{
			{Label: "id", Property: "urn:id"},
			{Label: "latitude", Property: "urn:lat"},
			{Label: "longitude", Property: "urn:lon"},
		},
	})
}

func TestNewResourceIgnoresBadCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon any
	}{
		{"not a number", "40°N", "-3.7"},
		{"latitude out of range", float64(91), float64(0)},
		{"longitude out of range", float64(40), "-181"},
		{"not finite", "NaN", "Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := testOpts
			opts.Log = zerolog.New(&buf)
			node := Node{"urn:id": lit("Madrid 1"), "urn:lat": lit(tt.lat), "urn:lon": lit(tt.lon)}

			r, err := NewResource(node, placeMap(), opts)
			require.NoError(t, err)
			assert.Equal(t, "madrid_1", r.ID)
			assert.False(t, r.Latitude != nil && r.Longitude != nil, "no usable coordinate pair")
			assert.Contains(t, buf.String(), "ignoring coordinate")
		})
	}
}

func TestNewResourcePhotoNotesAndSelections(t *testing.T) {
	node := itemNode("x", "", photoSpec{
		checksum: "c1", path: "/src/a.jpg", width: 100, height: 80,
		note: "<p>photo note</p>", title: "Front",
		selections: [][4]int{{1, 2, 3, 4}, {5, 6, 7, 8}},
	})
	r, err := NewResource(node, GenericPropertyMap(), testOpts)
	require.NoError(t, err)
	p := r.Photos[0]
	assert.Equal(t, "<p>photo note</p>", p.Note)
	assert.Equal(t, "Front", p.Label)
	assert.Equal(t, []Selection{
		{Note: "<p>region note</p>", X: 1, Y: 2, Width: 3, Height: 4},
		{X: 5, Y: 6, Width: 7, Height: 8},
	}, p.Selections)
}

func TestNewResourceMissingIdentifier(t *testing.T) {
	for _, id := range []string{"", "   "} {
		node := itemNode("", "untitled")
		if id != "" {
			node[dcNS+"identifier"] = lit(id)
		}
		_, err := NewResource(node, GenericPropertyMap(), testOpts)
		assert.ErrorIs(t, err, ErrMissingIdentifier, "id %q", id)
	}
}

func TestNewResourceInvalidIdentifier(t *testing.T) {
	_, err := NewResource(itemNode("???", "untitled"), GenericPropertyMap(), testOpts)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.NotErrorIs(t, err, ErrMissingIdentifier)
}

func TestNewResourcesNonLatinIdentifiers(t *testing.T) {
	g := &Graph{Nodes: []Node{itemNode("日本の写真", ""), itemNode("Фото 1", ""), itemNode("Фото 2", "")}}
	resources, err := NewResources(g, GenericPropertyMap(), testOpts)
	require.NoError(t, err)
	require.Len(t, resources, 3)
	assert.Equal(t, "日本の写真", resources[0].ID)
	assert.Equal(t, "фото_1", resources[1].ID)
	assert.Equal(t, "фото_2", resources[2].ID)
	assert.Equal(t, "http://localhost:8080/日本の写真", resources[0].BaseID)
}

func TestNewResourceInvalidPhoto(t *testing.T) {
	tests := []struct {
		name  string
		photo map[string]any
	}{
		{"missing checksum", map[string]any{tropyNS + "path": lit("/a.png"), tropyNS + "width": lit(1.0), tropyNS + "height": lit(1.0)}},
		{"unsafe checksum", photoNode(photoSpec{checksum: "../etc", path: "/a.png", width: 1, height: 1})},
		{"missing path", map[string]any{tropyNS + "checksum": lit("c"), tropyNS + "width": lit(1.0), tropyNS + "height": lit(1.0)}},
		{"non-numeric width", map[string]any{tropyNS + "checksum": lit("c"), tropyNS + "path": lit("/a.png"), tropyNS + "width": lit("wide"), tropyNS + "height": lit(1.0)}},
		{"missing height", map[string]any{tropyNS + "checksum": lit("c"), tropyNS + "path": lit("/a.png"), tropyNS + "width": lit(1.0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := itemNode("item", "")
			node[photoProperty] = []any{map[string]any{"@list": []any{tt.photo}}}
			_, err := NewResource(node, GenericPropertyMap(), testOpts)
			assert.ErrorIs(t, err, ErrInvalidPhoto)
		})
	}
}

func TestNewResourcesDuplicateIdentifier(t *testing.T) {
	g := &Graph{Nodes: []Node{itemNode("Photo A", ""), itemNode("photo-a", "")}}
	_, err := NewResources(g, GenericPropertyMap(), testOpts)
	assert.ErrorIs(t, err, ErrDuplicateIdentifier)
}

func TestNewResourcesKeepsOrder(t *testing.T) {
	g := &Graph{Nodes: []Node{itemNode("C", ""), itemNode("A", ""), itemNode("B", "")}}
	rs, err := NewResources(g, GenericPropertyMap(), testOpts)
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{rs[0].ID, rs[1].ID, rs[2].ID})
}
