package tropiiify

// Resource is one exported item, normalized from an expanded graph node.
type Resource struct {
	RawID             string
	ID                string
	Label             string
	Summary           string
	Rights            string
	RequiredStatement string
	Homepage          string
	Latitude          *float64
	Longitude         *float64
	Metadata          []MetadataRow
	Photos            []Photo

	Path   string // output directory, outputRoot/ID
	BaseID string // public URI root, baseURI/ID
}

// MetadataRow is one display metadata entry. Field is the internal field
// name (e.g. "metadataCreator"), Label its display form ("Creator").
type MetadataRow struct {
	Field string
	Label string
	Value string
}

// Photo is one image attached to a Resource, in source order.
type Photo struct {
	Checksum   string
	Width      int
	Height     int
	Mimetype   string
	Path       string
	Note       string // HTML
	Label      string
	Metadata   []MetadataRow
	Selections []Selection
}

// Selection is a region of a photo in original pixel coordinates.
type Selection struct {
	Note   string
	X      int
	Y      int
	Width  int
	Height int
}

// Size is a pixel width and height.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DerivativeSizes holds the computed sizes of a photo's resized copies.
// Full is the size of the decoded source the copies were made from.
type DerivativeSizes struct {
	Full    Size
	Thumb   Size
	Midsize Size
}
