package tropiiify

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkalab/tropiiify/iiif"
)

// stubTiler writes a minimal info.json plus the properties file vips leaves
// behind.
type stubTiler struct {
	err  error
	jobs chan TileJob
}

func (s *stubTiler) Tile(ctx context.Context, job TileJob) error {
	if s.jobs != nil {
		s.jobs <- job
	}
	if s.err != nil {
		return s.err
	}
	info := map[string]any{"id": job.ServiceID, "type": "ImageService3", "extra": "kept"}
	if err := writeJSON(filepath.Join(job.Dir, infoFile), info); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(job.Dir, propertiesFile), []byte("<properties/>"), 0o644)
}

func testResource(t *testing.T, photos ...Photo) *Resource {
	t.Helper()
	root := t.TempDir()
	return &Resource{
		ID:     "photo_a",
		Path:   filepath.Join(root, "photo_a"),
		BaseID: "http://localhost:8080/photo_a",
		Photos: photos,
	}
}

func readInfo(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestDeriveWritesSizesAndPatchesInfo(t *testing.T) {
	src := writePNG(t, t.TempDir(), "a.png", 600, 400)
	p := Photo{Checksum: "abc", Path: src, Width: 600, Height: 400, Mimetype: "image/png"}
	r := testResource(t, p)
	d := &Deriver{MidsizeBound: 500, Tiler: &stubTiler{}, Workers: 2}

	sizes, err := d.Derive(context.Background(), r, p)
	require.NoError(t, err)
	assert.Equal(t, Size{300, 200}, sizes.Thumb)
	assert.Equal(t, Size{500, 333}, sizes.Midsize)

	dir := filepath.Join(r.Path, "abc")
	assert.FileExists(t, filepath.Join(dir, "full", "300,200", "0", "default.png"))
	assert.FileExists(t, filepath.Join(dir, "full", "500,333", "0", "default.png"))
	assert.NoFileExists(t, filepath.Join(dir, propertiesFile))

	info := readInfo(t, filepath.Join(dir, infoFile))
	var got []iiif.Size
	require.NoError(t, json.Unmarshal(info["sizes"], &got))
	assert.Equal(t, []iiif.Size{{Width: 300, Height: 200}, {Width: 500, Height: 333}}, got)
	assert.JSONEq(t, `"kept"`, string(info["extra"]))
	assert.JSONEq(t, `"http://localhost:8080/photo_a/abc"`, string(info["id"]))
}

func TestDeriveMidsizeNeverUpscales(t *testing.T) {
	src := writePNG(t, t.TempDir(), "small.png", 320, 480)
	p := Photo{Checksum: "small", Path: src, Width: 320, Height: 480}
	r := testResource(t, p)
	d := &Deriver{Tiler: &stubTiler{}}

	sizes, err := d.Derive(context.Background(), r, p)
	require.NoError(t, err)
	assert.Equal(t, Size{200, 300}, sizes.Thumb)
	assert.Equal(t, Size{320, 480}, sizes.Midsize)
}

func TestDeriveTilerFailure(t *testing.T) {
	src := writePNG(t, t.TempDir(), "a.png", 50, 50)
	p := Photo{Checksum: "abc", Path: src, Width: 50, Height: 50}
	r := testResource(t, p)
	boom := errors.New("codec crashed")
	d := &Deriver{Tiler: &stubTiler{err: boom}}

	_, err := d.Derive(context.Background(), r, p)
	assert.ErrorIs(t, err, boom)
}

func TestDeriveMissingSource(t *testing.T) {
	p := Photo{Checksum: "gone", Path: filepath.Join(t.TempDir(), "gone.png"), Width: 10, Height: 10}
	r := testResource(t, p)
	_, err := (&Deriver{Tiler: &stubTiler{}}).Derive(context.Background(), r, p)
	assert.Error(t, err)
}

func TestDeriveAllKeepsPhotoOrder(t *testing.T) {
	dir := t.TempDir()
	photos := []Photo{
		{Checksum: "wide", Path: writePNG(t, dir, "wide.png", 400, 100), Width: 400, Height: 100},
		{Checksum: "tall", Path: writePNG(t, dir, "tall.png", 100, 400), Width: 100, Height: 400},
	}
	r := testResource(t, photos...)
	d := &Deriver{Tiler: &stubTiler{}, Workers: 2}

	sizes, err := d.DeriveAll(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, sizes, 2)
	assert.Equal(t, Size{300, 75}, sizes[0].Thumb)
	assert.Equal(t, Size{75, 300}, sizes[1].Thumb)
}

func TestDeriveAllFailsWhenAnyPhotoFails(t *testing.T) {
	dir := t.TempDir()
	photos := []Photo{
		{Checksum: "ok", Path: writePNG(t, dir, "ok.png", 40, 40), Width: 40, Height: 40},
		{Checksum: "bad", Path: filepath.Join(dir, "missing.png"), Width: 40, Height: 40},
	}
	r := testResource(t, photos...)
	_, err := (&Deriver{Tiler: &stubTiler{}}).DeriveAll(context.Background(), r)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "photo bad")
}

func TestDeriveTileJob(t *testing.T) {
	src := writePNG(t, t.TempDir(), "a.png", 20, 10)
	p := Photo{Checksum: "abc", Path: src, Width: 20, Height: 10}
	r := testResource(t, p)
	jobs := make(chan TileJob, 1)
	d := &Deriver{Tiler: &stubTiler{jobs: jobs}, TileSize: 512}

	_, err := d.Derive(context.Background(), r, p)
	require.NoError(t, err)
	job := <-jobs
	assert.Equal(t, src, job.Source)
	assert.Equal(t, filepath.Join(r.Path, "abc"), job.Dir)
	assert.Equal(t, "http://localhost:8080/photo_a", job.BaseID)
	assert.Equal(t, "http://localhost:8080/photo_a/abc", job.ServiceID)
	assert.Equal(t, 512, job.TileSize)
}

func TestDerivativeExtAndFormat(t *testing.T) {
	assert.Equal(t, ".jpg", derivativeExt("/a/b.JPG"))
	assert.Equal(t, ".png", derivativeExt("/a/b.png"))
	assert.Equal(t, ".jpg", derivativeExt("/a/b.webp"))
	assert.Equal(t, ".jpg", derivativeExt("/a/noext"))

	assert.Equal(t, "image/png", derivativeFormat(Photo{Path: "/a/b.png", Mimetype: "image/png"}))
	assert.Equal(t, "image/jpeg", derivativeFormat(Photo{Path: "/a/b.webp", Mimetype: "image/webp"}))
}

func TestSizePathAndURI(t *testing.T) {
	assert.Equal(t, filepath.Join("full", "300,225", "0", "default.jpg"), SizePath(Size{300, 225}, ".jpg"))
	assert.Equal(t, "http://x/item/abc/full/300,225/0/default.jpg", SizeURI("http://x/item/abc", Size{300, 225}, ".jpg"))
}
