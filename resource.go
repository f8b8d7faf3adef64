package tropiiify

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// ErrMissingIdentifier aborts an export when an item has no id.
	ErrMissingIdentifier = errors.New("tropiiify: item without identifier")
	// ErrInvalidIdentifier aborts an export when an item id holds no letter
	// or digit, e.g. "???".
	ErrInvalidIdentifier = errors.New("tropiiify: item identifier has no letters or digits")
	// ErrDuplicateIdentifier aborts an export when two items sanitize to the
	// same id.
	ErrDuplicateIdentifier = errors.New("tropiiify: duplicate item identifier")
	// ErrInvalidPhoto reports a structurally broken photo record.
	ErrInvalidPhoto = errors.New("tropiiify: invalid photo")
)

var safeChecksum = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ResourceOptions carries the export settings a Resource derives paths from.
type ResourceOptions struct {
	OutputRoot string
	BaseURI    string
	PhotoMap   PropertyMap
	Log        zerolog.Logger
}

// NewResource normalizes one expanded node using the item PropertyMap.
func NewResource(node Node, pm PropertyMap, opts ResourceOptions) (*Resource, error) {
	r := &Resource{}
	var photos []Node
	for _, f := range pm.withPhotos() {
		switch f.Kind {
		case FieldPhotos:
			photos = node.Nodes(f.Property)
		case FieldMetadata:
			if v, ok := node.String(f.Property); ok && strings.TrimSpace(v) != "" {
				r.Metadata = append(r.Metadata, MetadataRow{Field: f.Name, Label: titleFromField(f.Name), Value: v})
			}
		case FieldScalar:
			r.setScalar(node, f, opts.Log)
		}
	}

	if strings.TrimSpace(r.RawID) == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingIdentifier, r.Label)
	}
	r.ID = Sanitize(r.RawID)
	if r.ID == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, r.RawID)
	}
	r.Path = filepath.Join(opts.OutputRoot, r.ID)
	r.BaseID = JoinURI(opts.BaseURI, r.ID)

	photoMap := opts.PhotoMap
	if photoMap == nil {
		photoMap = GenericPropertyMap()
	}
	for i, pn := range photos {
		p, err := newPhoto(pn, photoMap)
		if err != nil {
			return nil, fmt.Errorf("item %s photo %d: %w", r.ID, i, err)
		}
		r.Photos = append(r.Photos, p)
	}
	return r, nil
}

// setScalar fills the Resource slot of f. Coordinates that are not finite
// numbers within range are dropped with a warning.
func (r *Resource) setScalar(node Node, f Field, log zerolog.Logger) {
	if f.Name == "latitude" || f.Name == "longitude" {
		v, ok, err := node.Float(f.Property)
		if err == nil && ok && !validCoordinate(f.Name, v) {
			err = fmt.Errorf("%s %v out of range", f.Name, v)
		}
		if err != nil {
			raw, _ := node.String(f.Property)
			log.Warn().Err(err).Str("field", f.Name).Str("value", raw).Msg("ignoring coordinate")
			return
		}
		if !ok {
			return
		}
		if f.Name == "latitude" {
			r.Latitude = &v
		} else {
			r.Longitude = &v
		}
		return
	}
	v, ok := node.String(f.Property)
	if !ok {
		return
	}
	switch f.Name {
	case "id":
		r.RawID = v
	case "label":
		r.Label = v
	case "summary":
		r.Summary = v
	case "rights":
		r.Rights = v
	case "requiredstatementValue":
		r.RequiredStatement = v
	case "homepageValue":
		r.Homepage = v
	}
}

func validCoordinate(name string, v float64) bool {
	limit := 180.0
	if name == "latitude" {
		limit = 90
	}
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

func newPhoto(n Node, pm PropertyMap) (Photo, error) {
	var p Photo
	var ok bool
	if p.Checksum, ok = n.String(tropyNS + "checksum"); !ok || p.Checksum == "" {
		return p, fmt.Errorf("%w: missing checksum", ErrInvalidPhoto)
	}
	if !safeChecksum.MatchString(p.Checksum) {
		return p, fmt.Errorf("%w: unsafe checksum %q", ErrInvalidPhoto, p.Checksum)
	}
	if p.Path, ok = n.String(tropyNS + "path"); !ok || p.Path == "" {
		return p, fmt.Errorf("%w: missing path", ErrInvalidPhoto)
	}
	p.Mimetype, _ = n.String(tropyNS + "mimetype")

	var err error
	if p.Width, err = intProp(n, tropyNS+"width"); err != nil {
		return p, err
	}
	if p.Height, err = intProp(n, tropyNS+"height"); err != nil {
		return p, err
	}
	p.Note = firstNote(n)

	for _, f := range pm {
		switch {
		case f.Kind == FieldScalar && f.Name == "label":
			p.Label, _ = n.String(f.Property)
		case f.Kind == FieldMetadata:
			if v, ok := n.String(f.Property); ok && strings.TrimSpace(v) != "" {
				p.Metadata = append(p.Metadata, MetadataRow{Field: f.Name, Label: titleFromField(f.Name), Value: v})
			}
		}
	}

	for i, sn := range n.Nodes(selectionProperty) {
		s, err := newSelection(sn)
		if err != nil {
			return p, fmt.Errorf("selection %d: %w", i, err)
		}
		p.Selections = append(p.Selections, s)
	}
	return p, nil
}

func newSelection(n Node) (Selection, error) {
	s := Selection{Note: firstNote(n)}
	var err error
	if s.X, err = intProp(n, tropyNS+"x"); err != nil {
		return s, err
	}
	if s.Y, err = intProp(n, tropyNS+"y"); err != nil {
		return s, err
	}
	if s.Width, err = intProp(n, tropyNS+"width"); err != nil {
		return s, err
	}
	if s.Height, err = intProp(n, tropyNS+"height"); err != nil {
		return s, err
	}
	return s, nil
}

func intProp(n Node, prop string) (int, error) {
	v, ok, err := n.Float(prop)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidPhoto, strings.TrimPrefix(prop, tropyNS))
	}
	return int(v), nil
}

// firstNote returns the HTML body of the first note attached to n.
func firstNote(n Node) string {
	notes := n.Nodes(noteProperty)
	if len(notes) == 0 {
		return ""
	}
	html, _ := notes[0].String(htmlProperty)
	return html
}

// NewResources builds every Resource of a graph. It fails fast on the first
// missing or colliding identifier so no output is written for a broken
// batch.
func NewResources(g *Graph, pm PropertyMap, opts ResourceOptions) ([]*Resource, error) {
	seen := make(map[string]string, len(g.Nodes))
	out := make([]*Resource, 0, len(g.Nodes))
	for i, node := range g.Nodes {
		r, err := NewResource(node, pm, opts)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		if prev, ok := seen[r.ID]; ok {
			return nil, fmt.Errorf("%w: %q and %q both become %q", ErrDuplicateIdentifier, prev, r.RawID, r.ID)
		}
		seen[r.ID] = r.RawID
		out = append(out, r)
	}
	return out, nil
}
