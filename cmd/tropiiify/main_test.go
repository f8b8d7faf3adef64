package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkalab/tropiiify"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", "json")
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	assert.Equal(t, zerolog.InfoLevel, newLogger(&buf, "", "console").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger(&buf, "loud", "console").GetLevel())
}

func TestApplyExportFlags(t *testing.T) {
	t.Cleanup(func() {
		exportOut, exportBase, exportCodec, exportWorkers, exportSkipSite = "", "", "", 0, false
	})
	exportOut = "./site"
	exportBase = "https://example.org/iiif"
	exportCodec = "vips"
	exportWorkers = 3
	exportSkipSite = true

	cfg := tropiiify.Config{OutputRoot: "./old", ItemTemplate: "urn:kept"}
	applyExportFlags(&cfg)
	assert.Equal(t, "./site", cfg.OutputRoot)
	assert.Equal(t, "https://example.org/iiif", cfg.BaseURI)
	assert.Equal(t, "vips", cfg.Codec)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.SkipSite)
	assert.Equal(t, "urn:kept", cfg.ItemTemplate)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tropiiify ")
	assert.Contains(t, out, "commit:")
}

func TestTemplatesCommands(t *testing.T) {
	t.Setenv("TROPIIIFY_DATABASE_PATH", filepath.Join(t.TempDir(), "templates.db"))
	t.Setenv("TROPIIIFY_LOG_LEVEL", "error")
	file := filepath.Join(t.TempDir(), "letter.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`id: urn:letter
name: Letter
fields:
  - label: id
    property: http://purl.org/dc/elements/1.1/identifier
`), 0o644))

	out, err := execute(t, "templates", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No templates stored.")

	out, err = execute(t, "templates", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported urn:letter (1 fields)")

	out, err = execute(t, "templates", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "urn:letter")
	assert.Contains(t, out, "Letter")

	out, err = execute(t, "templates", "delete", "urn:letter")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted urn:letter")

	_, err = execute(t, "templates", "delete", "urn:letter")
	assert.ErrorIs(t, err, tropiiify.ErrTemplateNotFound)
}

func TestHistoryCommandEmpty(t *testing.T) {
	t.Setenv("TROPIIIFY_DATABASE_PATH", filepath.Join(t.TempDir(), "templates.db"))
	out, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestServeRequiresDirectory(t *testing.T) {
	t.Setenv("TROPIIIFY_OUTPUT_ROOT", "")
	_, err := execute(t, "serve")
	assert.ErrorContains(t, err, "no directory to serve")
}
