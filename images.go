package tropiiify

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/arkalab/tropiiify/iiif"
)

const (
	defaultThumbBound   = 300
	defaultMidsizeBound = 2000
	defaultTileSize     = 256
	jpegQuality         = 80

	infoFile       = "info.json"
	propertiesFile = "vips-properties.xml"
)

// Deriver produces the resized copies and tile pyramid of photos.
type Deriver struct {
	ThumbBound   int
	MidsizeBound int
	TileSize     int
	Quality      int
	Workers      int // photos processed at once per item
	Tiler        Tiler
	Log          zerolog.Logger
	Metrics      *Metrics
}

func (d *Deriver) setDefaults() {
	if d.ThumbBound == 0 {
		d.ThumbBound = defaultThumbBound
	}
	if d.MidsizeBound == 0 {
		d.MidsizeBound = defaultMidsizeBound
	}
	if d.TileSize == 0 {
		d.TileSize = defaultTileSize
	}
	if d.Quality == 0 {
		d.Quality = jpegQuality
	}
	if d.Workers == 0 {
		d.Workers = runtime.NumCPU()
	}
	if d.Tiler == nil {
		d.Tiler = &GoTiler{Quality: d.Quality}
	}
}

// DeriveAll processes every photo of r concurrently and returns their sizes
// in photo order. The first failure cancels the remaining photos; files
// already written are left in place.
func (d *Deriver) DeriveAll(ctx context.Context, r *Resource) ([]DerivativeSizes, error) {
	d.setDefaults()
	sizes := make([]DerivativeSizes, len(r.Photos))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Workers)
	for i, p := range r.Photos {
		g.Go(func() error {
			s, err := d.Derive(ctx, r, p)
			if err != nil {
				return fmt.Errorf("photo %s: %w", p.Checksum, err)
			}
			sizes[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sizes, nil
}

// Derive writes the thumbnail, midsize and tile pyramid of p under
// r.Path/p.Checksum and patches the pyramid's info.json with both sizes.
func (d *Deriver) Derive(ctx context.Context, r *Resource, p Photo) (DerivativeSizes, error) {
	d.setDefaults()
	start := time.Now()
	dir := filepath.Join(r.Path, p.Checksum)
	defer d.removeProperties(dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return DerivativeSizes{}, fmt.Errorf("create photo dir: %w", err)
	}
	img, err := decodeFile(p.Path)
	if err != nil {
		return DerivativeSizes{}, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if (p.Width != 0 && p.Width != w) || (p.Height != 0 && p.Height != h) {
		d.Log.Warn().Str("photo", p.Checksum).
			Int("width", p.Width).Int("height", p.Height).
			Int("decodedWidth", w).Int("decodedHeight", h).
			Msg("photo dimensions differ from source file, using decoded size")
	}

	sizes := DerivativeSizes{
		Full:    Size{Width: w, Height: h},
		Thumb:   FitWithin(w, h, d.ThumbBound),
		Midsize: FitWithin(w, h, MidsizeBound(w, h, d.MidsizeBound)),
	}
	ext := derivativeExt(p.Path)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.writeResized(gctx, img, dir, sizes.Thumb, ext)
	})
	g.Go(func() error {
		return d.writeResized(gctx, img, dir, sizes.Midsize, ext)
	})
	g.Go(func() error {
		return d.Tiler.Tile(gctx, TileJob{
			Source:    p.Path,
			Image:     img,
			Dir:       dir,
			BaseID:    r.BaseID,
			ServiceID: JoinURI(r.BaseID, p.Checksum),
			TileSize:  d.TileSize,
		})
	})
	if err := g.Wait(); err != nil {
		return DerivativeSizes{}, err
	}

	if err := patchInfoSizes(filepath.Join(dir, infoFile), sizes.Thumb, sizes.Midsize); err != nil {
		return DerivativeSizes{}, err
	}
	d.Metrics.observeDerivative(time.Since(start))
	return sizes, nil
}

func (d *Deriver) writeResized(ctx context.Context, src image.Image, dir string, size Size, ext string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := resize(src, size)
	path := filepath.Join(dir, SizePath(size, ext))
	return writeFileAtomic(path, func(w io.Writer) error {
		return encodeImage(w, dst, ext, d.Quality)
	})
}

// SizePath is the IIIF full-region path of a derivative of the given size,
// relative to the photo directory.
func SizePath(size Size, ext string) string {
	return filepath.Join("full", strconv.Itoa(size.Width)+","+strconv.Itoa(size.Height), "0", "default"+ext)
}

// SizeURI is SizePath under a photo's image service id.
func SizeURI(serviceID string, size Size, ext string) string {
	return JoinURI(serviceID, "full", strconv.Itoa(size.Width)+","+strconv.Itoa(size.Height), "0", "default"+ext)
}

func resize(src image.Image, size Size) image.Image {
	b := src.Bounds()
	if b.Dx() == size.Width && b.Dy() == size.Height {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

var encodableExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".tif": true, ".tiff": true, ".bmp": true,
}

// derivativeExt keeps the source extension when it can be encoded and
// falls back to .jpg otherwise.
func derivativeExt(source string) string {
	ext := strings.ToLower(filepath.Ext(source))
	if encodableExts[ext] {
		return ext
	}
	return ".jpg"
}

// derivativeFormat is the media type of p's derivatives.
func derivativeFormat(p Photo) string {
	ext := derivativeExt(p.Path)
	if strings.EqualFold(filepath.Ext(p.Path), ext) && p.Mimetype != "" {
		return p.Mimetype
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "image/jpeg"
}

func encodeImage(w io.Writer, img image.Image, ext string, quality int) error {
	var err error
	switch ext {
	case ".png":
		err = png.Encode(w, img)
	case ".gif":
		err = gif.Encode(w, img, nil)
	case ".tif", ".tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case ".bmp":
		err = bmp.Encode(w, img)
	default:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", ext, err)
	}
	return nil
}

// writeFileAtomic writes through a temp file and renames it into place so
// concurrent writers of the same path never leave a torn file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// removeProperties deletes the codec's transient properties file. A missing
// file is not an error.
func (d *Deriver) removeProperties(dir string) {
	err := os.Remove(filepath.Join(dir, propertiesFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		d.Log.Warn().Err(err).Str("dir", dir).Msg("remove codec properties file")
	}
}

func iiifSize(s Size) iiif.Size {
	return iiif.Size{Width: s.Width, Height: s.Height}
}
