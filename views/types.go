package views

// Site holds collection-wide settings rendered into every page.
type Site struct {
	Title         string
	Language      string
	BaseURI       string
	CollectionURI string
	ViewerURL     string // optional, see ViewerLink
}

// Item is one exported manifest as listed on the landing page.
type Item struct {
	ID          string
	Label       string
	Summary     string // HTML
	ManifestURI string
	Thumbnail   string // path relative to the output root
	ThumbWidth  int
	ThumbHeight int
	Photos      int
}
