package tropiiify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldName(t *testing.T) {
	tests := []struct {
		alias    string
		expected string
	}{
		{"id", "id"},
		{"metadata:creator", "metadataCreator"},
		{"metadata.creator", "metadataCreator"},
		{"requiredstatement.value", "requiredstatementValue"},
		{"homepage:value", "homepageValue"},
		{" metadata:place name ", "metadataPlacename"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FieldName(tt.alias), "FieldName(%q)", tt.alias)
	}
}

func TestBuildPropertyMapGeneric(t *testing.T) {
	assert.Equal(t, GenericPropertyMap(), BuildPropertyMap(nil))
	assert.Equal(t, GenericPropertyMap(), BuildPropertyMap(&Template{ID: GenericTemplateID}))

	p, ok := GenericPropertyMap().Lookup("requiredstatementValue")
	require.True(t, ok)
	assert.Equal(t, dcNS+"source", p)
}

func TestBuildPropertyMapAliases(t *testing.T) {
	pm := BuildPropertyMap(&Template{
		ID: "https://example.org/templates/letter",
		Fields: []TemplateField{
			{Label: "id", Property: "urn:p:id"},
			{Label: "metadata:sender|metadata.author", Property: "urn:p:creator"},
			{Label: "notes", Property: "urn:p:notes"},
			{Label: "latitude", Property: "urn:p:lat"},
		},
	})
	require.Len(t, pm, 5)
	assert.Equal(t, Field{Kind: FieldScalar, Name: "id", Property: "urn:p:id"}, pm[0])
	assert.Equal(t, Field{Kind: FieldMetadata, Name: "metadataSender", Property: "urn:p:creator"}, pm[1])
	assert.Equal(t, Field{Kind: FieldMetadata, Name: "metadataAuthor", Property: "urn:p:creator"}, pm[2])
	assert.Equal(t, FieldIgnored, pm[3].Kind)
	assert.Equal(t, FieldScalar, pm[4].Kind)
}

func TestBuildPropertyMapLastRegistrationWins(t *testing.T) {
	pm := BuildPropertyMap(&Template{
		ID: "t",
		Fields: []TemplateField{
			{Label: "label", Property: "urn:first"},
			{Label: "metadata:date", Property: "urn:date"},
			{Label: "label", Property: "urn:second"},
		},
	})
	require.Len(t, pm, 2)
	assert.Equal(t, "label", pm[0].Name)
	assert.Equal(t, "urn:second", pm[0].Property)
	assert.Equal(t, "metadataDate", pm[1].Name)
}

func TestWithPhotosDoesNotMutate(t *testing.T) {
	pm := GenericPropertyMap()
	n := len(pm)
	withPhotos := pm.withPhotos()
	assert.Len(t, pm, n)
	require.Len(t, withPhotos, n+1)
	assert.Equal(t, Field{Kind: FieldPhotos, Name: "photo", Property: photoProperty}, withPhotos[n])
}

func TestFieldKindString(t *testing.T) {
	assert.Equal(t, "scalar", FieldScalar.String())
	assert.Equal(t, "metadata", FieldMetadata.String())
	assert.Equal(t, "photos", FieldPhotos.String())
	assert.Equal(t, "ignored", FieldIgnored.String())
}
