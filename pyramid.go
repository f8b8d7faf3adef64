package tropiiify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/arkalab/tropiiify/iiif"
)

// TileJob describes one pyramid to generate. Dir is the photo directory
// (item path / checksum); ServiceID the image service id written into
// info.json, which is BaseID plus the checksum.
type TileJob struct {
	Source    string
	Image     image.Image
	Dir       string
	BaseID    string
	ServiceID string
	TileSize  int
}

// Tiler writes an Image API 3 level-0 tile pyramid plus its info.json.
type Tiler interface {
	Tile(ctx context.Context, job TileJob) error
}

// GoTiler generates pyramids in-process with x/image.
type GoTiler struct {
	Quality int
	Workers int
}

// ScaleFactors returns the power-of-two factors needed until the whole
// image fits into a single tile.
func ScaleFactors(w, h, tile int) []int {
	factors := []int{1}
	for s := 1; ceilDiv(w, s) > tile || ceilDiv(h, s) > tile; {
		s *= 2
		factors = append(factors, s)
	}
	return factors
}

func (t *GoTiler) Tile(ctx context.Context, job TileJob) error {
	img := job.Image
	if img == nil {
		var err error
		if img, err = decodeFile(job.Source); err != nil {
			return err
		}
	}
	quality := t.Quality
	if quality == 0 {
		quality = jpegQuality
	}
	workers := t.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	tile := job.TileSize
	factors := ScaleFactors(w, h, tile)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	level := img
	for _, s := range factors {
		lw, lh := ceilDiv(w, s), ceilDiv(h, s)
		level = scaleTo(level, lw, lh)
		span := tile * s
		for y := 0; y < h; y += span {
			for x := 0; x < w; x += span {
				region := image.Rect(x, y, min(x+span, w), min(y+span, h))
				src := level
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					return writeTile(job.Dir, src, region, s, w, h, quality)
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("tile pyramid: %w", err)
	}

	info := iiif.ImageInfo{
		Context:  iiif.ImageContext,
		ID:       job.ServiceID,
		Type:     "ImageService3",
		Protocol: iiif.ImageProtocol,
		Profile:  "level0",
		Width:    w,
		Height:   h,
		Tiles:    []iiif.Tile{{Width: tile, Height: tile, ScaleFactors: factors}},
	}
	return writeJSON(filepath.Join(job.Dir, infoFile), info)
}

// writeTile crops region (full resolution coordinates) out of the level
// image scaled down by s.
func writeTile(dir string, level image.Image, region image.Rectangle, s, w, h int, quality int) error {
	lb := level.Bounds()
	crop := image.Rect(region.Min.X/s, region.Min.Y/s, ceilDiv(region.Max.X, s), ceilDiv(region.Max.Y, s)).
		Add(lb.Min).Intersect(lb)
	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(out, out.Bounds(), level, crop.Min, draw.Src)

	name := "full"
	if region != image.Rect(0, 0, w, h) {
		name = fmt.Sprintf("%d,%d,%d,%d", region.Min.X, region.Min.Y, region.Dx(), region.Dy())
	}
	path := filepath.Join(dir, name, strconv.Itoa(crop.Dx())+","+strconv.Itoa(crop.Dy()), "0", "default.jpg")
	return writeFileAtomic(path, func(wr io.Writer) error {
		return encodeImage(wr, out, ".jpg", quality)
	})
}

func scaleTo(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// VipsTiler shells out to `vips dzsave --layout iiif3`. It leaves a
// vips-properties.xml next to info.json, which the Deriver removes.
type VipsTiler struct {
	Binary  string
	Quality int
}

func (t *VipsTiler) Tile(ctx context.Context, job TileJob) error {
	bin := t.Binary
	if bin == "" {
		bin = "vips"
	}
	quality := t.Quality
	if quality == 0 {
		quality = jpegQuality
	}
	// dzsave appends the output basename (the checksum) to --id.
	cmd := exec.CommandContext(ctx, bin, "dzsave", job.Source, job.Dir,
		"--layout", "iiif3",
		"--id", job.BaseID,
		"--tile-size", strconv.Itoa(job.TileSize),
		"--overlap", "0",
		"--suffix", ".jpg[Q="+strconv.Itoa(quality)+"]",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("vips dzsave: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// patchInfoSizes reads a written info.json back, sets its sizes to
// [thumb, midsize] and rewrites it. Unknown keys written by the codec are
// preserved.
func patchInfoSizes(path string, thumb, midsize Size) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read info.json: %w", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode info.json: %w", err)
	}
	sizes, err := json.Marshal([]iiif.Size{iiifSize(thumb), iiifSize(midsize)})
	if err != nil {
		return err
	}
	doc["sizes"] = sizes
	return writeJSON(path, doc)
}

// writeJSON writes v as indented JSON, atomically.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	return writeFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
