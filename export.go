package tropiiify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ItemError records an item skipped by an export.
type ItemError struct {
	ID  string
	Err error
}

func (e *ItemError) Error() string { return fmt.Sprintf("item %s: %v", e.ID, e.Err) }

func (e *ItemError) Unwrap() error { return e.Err }

// Report summarizes an export run.
type Report struct {
	RunID      string
	OutputRoot string
	Exported   []string
	Failed     []*ItemError
	Elapsed    time.Duration
}

// propertyMaps resolves the item and photo templates.
func (a *App) propertyMaps(ctx context.Context) (PropertyMap, PropertyMap, error) {
	load := func(id string) (PropertyMap, error) {
		if isGeneric(id) {
			return GenericPropertyMap(), nil
		}
		cache, err := a.templateCache()
		if err != nil {
			return nil, err
		}
		t, err := cache.Template(ctx, id)
		if err != nil {
			return nil, err
		}
		return BuildPropertyMap(&t), nil
	}
	items, err := load(a.Config.ItemTemplate)
	if err != nil {
		return nil, nil, fmt.Errorf("item template: %w", err)
	}
	photos, err := load(a.Config.PhotoTemplate)
	if err != nil {
		return nil, nil, fmt.Errorf("photo template: %w", err)
	}
	return items, photos, nil
}

// outputRoot returns the configured output root or asks the Prompter.
func (a *App) outputRoot(ctx context.Context) (string, error) {
	if a.Config.OutputRoot != "" {
		return a.Config.OutputRoot, nil
	}
	if a.prompter == nil {
		return "", errors.New("tropiiify: no output directory configured")
	}
	return a.prompter.ChooseDirectory(ctx)
}

// Export writes the static IIIF presentation of every node in g. Items
// are processed one after another; an item that fails is logged, skipped
// and left out of the collection. Precondition failures (missing or
// duplicate identifiers, broken photo records) abort before any file is
// written.
func (a *App) Export(ctx context.Context, g *Graph) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	log := a.Log.With().Str("run", report.RunID).Logger()

	if err := a.Config.Validate(); err != nil {
		return nil, err
	}
	itemMap, photoMap, err := a.propertyMaps(ctx)
	if err != nil {
		return nil, err
	}

	root, err := a.outputRoot(ctx)
	if err != nil {
		if errors.Is(err, ErrCanceled) {
			log.Info().Msg("export canceled at directory prompt")
		}
		return nil, err
	}
	report.OutputRoot = root

	resources, err := NewResources(g, itemMap, ResourceOptions{
		OutputRoot: root,
		BaseURI:    a.Config.BaseURI,
		PhotoMap:   photoMap,
		Log:        log,
	})
	if err != nil {
		title := "Export failed"
		switch {
		case errors.Is(err, ErrMissingIdentifier):
			title = "Missing identifier"
		case errors.Is(err, ErrInvalidIdentifier):
			title = "Invalid identifier"
		}
		a.notifier.Notify(ctx, Notification{Level: LevelError, Title: title, Message: err.Error()})
		return nil, err
	}
	log.Info().Int("items", len(resources)).Str("output", root).Msg("export started")

	// Item processing is not cancelable from the prompt surface.
	itemCtx := context.WithoutCancel(ctx)
	d := a.deriver(log)
	opts := a.documentOptions()
	var done []*Resource
	for _, r := range resources {
		ilog := log.With().Str("item", r.ID).Logger()
		if err := a.exportItem(itemCtx, d, r, opts); err != nil {
			ilog.Error().Err(err).Msg("item skipped")
			report.Failed = append(report.Failed, &ItemError{ID: r.ID, Err: err})
			a.Metrics.itemDone(false)
			continue
		}
		ilog.Debug().Int("photos", len(r.Photos)).Msg("item exported")
		report.Exported = append(report.Exported, r.ID)
		a.Metrics.itemDone(true)
		done = append(done, r)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return report, fmt.Errorf("create output root: %w", err)
	}
	if err := writeJSON(filepath.Join(root, "index.json"), BuildCollection(done, opts)); err != nil {
		return report, fmt.Errorf("write collection: %w", err)
	}
	if !a.Config.SkipSite {
		if err := a.writeSite(ctx, root, done); err != nil {
			return report, err
		}
	}

	report.Elapsed = time.Since(start)
	a.Metrics.exportDone(report.Elapsed)
	a.recordRun(itemCtx, start, report)
	if err := a.Metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
		log.Warn().Err(err).Msg("write metrics file")
	}
	log.Info().
		Int("exported", len(report.Exported)).
		Int("failed", len(report.Failed)).
		Dur("elapsed", report.Elapsed).
		Msg("export finished")
	a.notifier.Notify(ctx, Notification{
		Level:   LevelInfo,
		Title:   "Export complete",
		Message: fmt.Sprintf("Exported %d of %d items in %s", len(report.Exported), len(resources), report.Elapsed.Round(time.Millisecond)),
	})
	return report, nil
}

// exportItem writes all derivatives of r, then its manifest.
func (a *App) exportItem(ctx context.Context, d *Deriver, r *Resource, opts DocumentOptions) error {
	if err := os.MkdirAll(r.Path, 0o755); err != nil {
		return fmt.Errorf("create item dir: %w", err)
	}
	sizes, err := d.DeriveAll(ctx, r)
	if err != nil {
		return fmt.Errorf("derivatives: %w", err)
	}
	// Canvases, the collection and the landing page follow the written files.
	for i, s := range sizes {
		r.Photos[i].Width = s.Full.Width
		r.Photos[i].Height = s.Full.Height
	}
	m, err := BuildManifest(r, sizes, opts)
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(r.Path, "manifest.json"), m); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

