// Package tropiiify exports Tropy items as a static IIIF presentation:
// one Presentation 3 manifest per item, resized copies and a level-0 tile
// pyramid per photo, and a top-level collection linking every manifest.
//
// Callers build an App from a Config, load a Graph of expanded item nodes
// and call Export. Templates, prompts, notifications and the pyramid codec
// are pluggable through Options.
package tropiiify

import (
	"fmt"

	"github.com/rs/zerolog"
)

// App is the central exporter. It wires together the template store and
// cache, the derivative pipeline and the user-facing collaborators.
type App struct {
	Config  Config
	Log     zerolog.Logger
	Metrics *Metrics

	store     *Store
	templates TemplateSource
	cache     *TemplateCache
	notifier  Notifier
	prompter  Prompter
	tiler     Tiler
}

// New creates an App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()
	a := &App{
		Config:  cfg,
		Log:     zerolog.Nop(),
		Metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.notifier == nil {
		a.notifier = LogNotifier{Log: a.Log}
	}
	if a.tiler == nil {
		switch cfg.Codec {
		case "vips":
			a.tiler = &VipsTiler{Binary: cfg.VipsBinary, Quality: cfg.JPEGQuality}
		default:
			a.tiler = &GoTiler{Quality: cfg.JPEGQuality, Workers: cfg.Workers}
		}
	}
	return a
}

// Store opens the SQLite template store on first use.
func (a *App) Store() (*Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("tropiiify: open template store: %w", err)
	}
	a.store = s
	return s, nil
}

// templateCache returns the cache in front of the template source, opening
// the store when no source was injected.
func (a *App) templateCache() (*TemplateCache, error) {
	if a.cache != nil {
		return a.cache, nil
	}
	src := a.templates
	if src == nil {
		s, err := a.Store()
		if err != nil {
			return nil, err
		}
		src = s
	}
	a.cache = NewTemplateCache(src, a.Config.TemplateCacheTTL)
	return a.cache, nil
}

// InvalidateTemplates drops cached templates.
func (a *App) InvalidateTemplates() {
	if a.cache != nil {
		a.cache.Invalidate()
	}
}

func (a *App) deriver(log zerolog.Logger) *Deriver {
	return &Deriver{
		ThumbBound:   a.Config.ThumbBound,
		MidsizeBound: a.Config.MidsizeBound,
		TileSize:     a.Config.TileSize,
		Quality:      a.Config.JPEGQuality,
		Workers:      a.Config.Workers,
		Tiler:        a.tiler,
		Log:          log,
		Metrics:      a.Metrics,
	}
}

func (a *App) documentOptions() DocumentOptions {
	return DocumentOptions{
		BaseURI:          a.Config.BaseURI,
		Language:         a.Config.Language,
		CollectionLabel:  a.Config.CollectionLabel,
		AttributionLabel: a.Config.AttributionLabel,
		AttributionText:  a.Config.AttributionText,
		HomepageLabel:    a.Config.HomepageLabel,
		Behavior:         a.Config.Behavior,
		ThumbBound:       a.Config.ThumbBound,
	}
}

// Close cleans up resources.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
