package tropiiify

import (
	"strings"
	"unicode"
)

const (
	tropyNS = "https://tropy.org/v1/tropy#"
	dcNS    = "http://purl.org/dc/elements/1.1/"

	// GenericTemplateID is the Tropy generic item template. Exports using it,
	// or no template at all, read the built-in Dublin Core table.
	GenericTemplateID = "https://tropy.org/v1/templates/generic"

	metadataPrefix = "metadata"

	photoProperty     = tropyNS + "photo"
	noteProperty      = tropyNS + "note"
	htmlProperty      = tropyNS + "html"
	selectionProperty = tropyNS + "selection"
)

// FieldKind tells the Resource builder where an extracted value goes.
type FieldKind int

const (
	FieldScalar FieldKind = iota
	FieldMetadata
	FieldPhotos
	FieldIgnored
)

func (k FieldKind) String() string {
	switch k {
	case FieldScalar:
		return "scalar"
	case FieldMetadata:
		return "metadata"
	case FieldPhotos:
		return "photos"
	default:
		return "ignored"
	}
}

// Field binds an internal field name to a property URI.
type Field struct {
	Kind     FieldKind
	Name     string
	Property string
}

// TemplateField is one labelled property of a Template.
type TemplateField struct {
	Label    string `json:"label" yaml:"label"`
	Property string `json:"property" yaml:"property"`
}

// Template is an ordered list of labelled properties, keyed by id.
type Template struct {
	ID     string          `json:"id" yaml:"id"`
	Name   string          `json:"name" yaml:"name"`
	Fields []TemplateField `json:"fields" yaml:"fields"`
}

// PropertyMap is the ordered field table built from a Template. Order is
// template order and drives metadata row order.
type PropertyMap []Field

// scalarFields are the field names with a dedicated Resource slot.
var scalarFields = map[string]bool{
	"id":                     true,
	"label":                  true,
	"summary":                true,
	"rights":                 true,
	"requiredstatementValue": true,
	"homepageValue":          true,
	"latitude":               true,
	"longitude":              true,
}

// GenericPropertyMap returns the built-in Dublin Core field table.
func GenericPropertyMap() PropertyMap {
	return PropertyMap{
		{Kind: FieldScalar, Name: "id", Property: dcNS + "identifier"},
		{Kind: FieldScalar, Name: "label", Property: dcNS + "title"},
		{Kind: FieldMetadata, Name: "metadataCreator", Property: dcNS + "creator"},
		{Kind: FieldMetadata, Name: "metadataDate", Property: dcNS + "date"},
		{Kind: FieldMetadata, Name: "metadataType", Property: dcNS + "type"},
		{Kind: FieldScalar, Name: "requiredstatementValue", Property: dcNS + "source"},
		{Kind: FieldScalar, Name: "rights", Property: dcNS + "rights"},
		{Kind: FieldScalar, Name: "summary", Property: dcNS + "description"},
	}
}

// BuildPropertyMap turns a template into a PropertyMap. A nil template or
// the generic template id yields GenericPropertyMap.
func BuildPropertyMap(t *Template) PropertyMap {
	if t == nil || isGeneric(t.ID) {
		return GenericPropertyMap()
	}
	var pm PropertyMap
	index := make(map[string]int)
	for _, f := range t.Fields {
		for _, alias := range strings.Split(f.Label, "|") {
			name := FieldName(alias)
			if name == "" {
				continue
			}
			field := Field{Kind: kindOf(name), Name: name, Property: f.Property}
			// Later aliases overwrite earlier ones but keep their position.
			if i, ok := index[name]; ok {
				pm[i] = field
				continue
			}
			index[name] = len(pm)
			pm = append(pm, field)
		}
	}
	return pm
}

// Lookup returns the property registered for name.
func (pm PropertyMap) Lookup(name string) (string, bool) {
	for _, f := range pm {
		if f.Name == name {
			return f.Property, true
		}
	}
	return "", false
}

// withPhotos appends the fixed photo list entry.
func (pm PropertyMap) withPhotos() PropertyMap {
	out := make(PropertyMap, len(pm), len(pm)+1)
	copy(out, pm)
	return append(out, Field{Kind: FieldPhotos, Name: "photo", Property: photoProperty})
}

// FieldName camel-cases a label alias: "metadata:creator" becomes
// "metadataCreator", "requiredstatement.value" becomes
// "requiredstatementValue".
func FieldName(alias string) string {
	alias = strings.TrimSpace(alias)
	var b strings.Builder
	upper := false
	for _, r := range alias {
		switch {
		case r == ':' || r == '.':
			upper = true
		case unicode.IsSpace(r):
		default:
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func kindOf(name string) FieldKind {
	switch {
	case scalarFields[name]:
		return FieldScalar
	case strings.HasPrefix(name, metadataPrefix) && len(name) > len(metadataPrefix):
		return FieldMetadata
	default:
		return FieldIgnored
	}
}

func isGeneric(id string) bool {
	return id == "" || id == GenericTemplateID || id == "generic"
}
