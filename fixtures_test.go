package tropiiify

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// lit wraps a value the way expanded JSON-LD does.
func lit(v any) []any {
	return []any{map[string]any{"@value": v}}
}

func noteNode(html string) []any {
	return []any{map[string]any{htmlProperty: lit(html)}}
}

type photoSpec struct {
	checksum   string
	path       string
	width      int
	height     int
	note       string
	title      string
	selections [][4]int
}

func photoNode(p photoSpec) map[string]any {
	n := map[string]any{
		tropyNS + "checksum": lit(p.checksum),
		tropyNS + "path":     lit(p.path),
		tropyNS + "mimetype": lit("image/png"),
		tropyNS + "width":    lit(float64(p.width)),
		tropyNS + "height":   lit(float64(p.height)),
	}
	if p.note != "" {
		n[noteProperty] = noteNode(p.note)
	}
	if p.title != "" {
		n[dcNS+"title"] = lit(p.title)
	}
	if len(p.selections) > 0 {
		var sels []any
		for i, s := range p.selections {
			sel := map[string]any{
				tropyNS + "x":      lit(float64(s[0])),
				tropyNS + "y":      lit(float64(s[1])),
				tropyNS + "width":  lit(float64(s[2])),
				tropyNS + "height": lit(float64(s[3])),
			}
			if i == 0 {
				sel[noteProperty] = noteNode("<p>region note</p>")
			}
			sels = append(sels, sel)
		}
		n[selectionProperty] = []any{map[string]any{"@list": sels}}
	}
	return n
}

// itemNode builds an expanded item using Dublin Core properties.
func itemNode(id, title string, photos ...photoSpec) Node {
	n := Node{}
	if id != "" {
		n[dcNS+"identifier"] = lit(id)
	}
	if title != "" {
		n[dcNS+"title"] = lit(title)
	}
	if len(photos) > 0 {
		var list []any
		for _, p := range photos {
			list = append(list, photoNode(p))
		}
		n[photoProperty] = []any{map[string]any{"@list": list}}
	}
	return n
}

// writePNG writes a w×h gradient PNG into dir and returns its path.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}
