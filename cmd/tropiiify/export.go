package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arkalab/tropiiify"
)

var exportCmd = &cobra.Command{
	Use:   "export <pattern>...",
	Short: "Export items as a static IIIF presentation",
	Long: `Export every item found in the JSON-LD files matched by the given
patterns. Patterns use doublestar syntax, e.g. "exports/**/*.json".

Without --out (or output_root in the config) the output directory is read
from standard input; an empty answer cancels the export.

Examples:
  tropiiify export items.json --out ./site --base https://example.org/iiif
  tropiiify export "exports/*.json" --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

var (
	exportOut           string
	exportBase          string
	exportTemplate      string
	exportPhotoTemplate string
	exportCodec         string
	exportWorkers       int
	exportMetricsFile   string
	exportSkipSite      bool
	exportWatch         bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	f := exportCmd.Flags()
	f.StringVarP(&exportOut, "out", "o", "", "output directory")
	f.StringVar(&exportBase, "base", "", "public base URI of the output directory")
	f.StringVar(&exportTemplate, "template", "", "item template id")
	f.StringVar(&exportPhotoTemplate, "photo-template", "", "photo template id")
	f.StringVar(&exportCodec, "codec", "", "tile pyramid codec: go or vips")
	f.IntVar(&exportWorkers, "workers", 0, "concurrent photos per item")
	f.StringVar(&exportMetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	f.BoolVar(&exportSkipSite, "skip-site", false, "do not write index.html and sitemap.xml")
	f.BoolVarP(&exportWatch, "watch", "w", false, "re-export when input files change")
}

func applyExportFlags(cfg *tropiiify.Config) {
	if exportOut != "" {
		cfg.OutputRoot = exportOut
	}
	if exportBase != "" {
		cfg.BaseURI = exportBase
	}
	if exportTemplate != "" {
		cfg.ItemTemplate = exportTemplate
	}
	if exportPhotoTemplate != "" {
		cfg.PhotoTemplate = exportPhotoTemplate
	}
	if exportCodec != "" {
		cfg.Codec = exportCodec
	}
	if exportWorkers > 0 {
		cfg.Workers = exportWorkers
	}
	if exportMetricsFile != "" {
		cfg.MetricsFile = exportMetricsFile
	}
	if exportSkipSite {
		cfg.SkipSite = true
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyExportFlags(&cfg)

	app := newApp(cfg, tropiiify.WithPrompter(tropiiify.LinePrompter{In: os.Stdin, Out: os.Stderr}))
	defer app.Close()

	ctx := cmd.Context()
	if exportWatch {
		err := app.Watch(ctx, args, tropiiify.DefaultDebounce)
		if errors.Is(err, tropiiify.ErrCanceled) {
			return nil
		}
		return err
	}

	g, _, err := tropiiify.LoadGraph(args...)
	if err != nil {
		return err
	}
	report, err := app.Export(ctx, g)
	if errors.Is(err, tropiiify.ErrCanceled) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", len(report.Exported), report.OutputRoot)
	if len(report.Failed) > 0 {
		for _, f := range report.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "  failed: %v\n", f)
		}
		return fmt.Errorf("%d of %d items failed", len(report.Failed), len(report.Failed)+len(report.Exported))
	}
	return nil
}
