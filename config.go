package tropiiify

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "TROPIIIFY_"

// Config holds all configuration for an export.
type Config struct {
	OutputRoot string `yaml:"output_root" env:"OUTPUT_ROOT"` // empty: ask the Prompter
	BaseURI    string `yaml:"base_uri" env:"BASE_URI"`       // default "http://localhost:8080"

	ItemTemplate  string `yaml:"item_template" env:"ITEM_TEMPLATE"`   // default generic
	PhotoTemplate string `yaml:"photo_template" env:"PHOTO_TEMPLATE"` // default generic

	CollectionLabel  string   `yaml:"collection_label" env:"COLLECTION_LABEL"`   // default "Tropy collection"
	AttributionLabel string   `yaml:"attribution_label" env:"ATTRIBUTION_LABEL"` // default "Attribution"
	AttributionText  string   `yaml:"attribution_text" env:"ATTRIBUTION_TEXT"`
	HomepageLabel    string   `yaml:"homepage_label" env:"HOMEPAGE_LABEL"` // default "Homepage"
	Language         string   `yaml:"language" env:"LANGUAGE"`             // default "en"
	Behavior         []string `yaml:"behavior" env:"BEHAVIOR"`             // default ["individuals"]

	ThumbBound   int    `yaml:"thumb_bound" env:"THUMB_BOUND"`     // default 300
	MidsizeBound int    `yaml:"midsize_bound" env:"MIDSIZE_BOUND"` // default 2000
	TileSize     int    `yaml:"tile_size" env:"TILE_SIZE"`         // default 256
	JPEGQuality  int    `yaml:"jpeg_quality" env:"JPEG_QUALITY"`   // default 80
	Codec        string `yaml:"codec" env:"CODEC"`                 // "go" (default) or "vips"
	VipsBinary   string `yaml:"vips_binary" env:"VIPS_BINARY"`     // default "vips"
	Workers      int    `yaml:"workers" env:"WORKERS"`             // default NumCPU

	DatabasePath     string        `yaml:"database_path" env:"DATABASE_PATH"`           // default "data/templates.db"
	TemplateCacheTTL time.Duration `yaml:"template_cache_ttl" env:"TEMPLATE_CACHE_TTL"` // default 5m

	RecordHistory    bool          `yaml:"record_history" env:"RECORD_HISTORY"`       // store each run in the database
	HistoryRetention time.Duration `yaml:"history_retention" env:"HISTORY_RETENTION"` // 0 keeps every run

	MetricsFile string `yaml:"metrics_file" env:"METRICS_FILE"`
	SkipSite    bool   `yaml:"skip_site" env:"SKIP_SITE"` // no index.html / sitemap.xml
	ViewerURL   string `yaml:"viewer_url" env:"VIEWER_URL"`

	Addr      string `yaml:"addr" env:"ADDR"`             // preview server, default ":8080"
	RateLimit int    `yaml:"rate_limit" env:"RATE_LIMIT"` // requests per minute and client, default 1200, negative disables

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`   // default "info"
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"` // "console" (default) or "json"
}

func (c *Config) setDefaults() {
	if c.BaseURI == "" {
		c.BaseURI = "http://localhost:8080"
	}
	c.BaseURI = strings.TrimSuffix(c.BaseURI, "/")
	if c.ItemTemplate == "" {
		c.ItemTemplate = GenericTemplateID
	}
	if c.PhotoTemplate == "" {
		c.PhotoTemplate = GenericTemplateID
	}
	if c.CollectionLabel == "" {
		c.CollectionLabel = "Tropy collection"
	}
	if c.AttributionLabel == "" {
		c.AttributionLabel = "Attribution"
	}
	if c.HomepageLabel == "" {
		c.HomepageLabel = "Homepage"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Behavior == nil {
		c.Behavior = []string{"individuals"}
	}
	if c.ThumbBound == 0 {
		c.ThumbBound = defaultThumbBound
	}
	if c.MidsizeBound == 0 {
		c.MidsizeBound = defaultMidsizeBound
	}
	if c.TileSize == 0 {
		c.TileSize = defaultTileSize
	}
	if c.JPEGQuality == 0 {
		c.JPEGQuality = jpegQuality
	}
	if c.Codec == "" {
		c.Codec = "go"
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/templates.db"
	}
	if c.TemplateCacheTTL == 0 {
		c.TemplateCacheTTL = 5 * time.Minute
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.RateLimit == 0 {
		c.RateLimit = 1200
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
}

// Validate reports settings that cannot produce a valid export.
func (c *Config) Validate() error {
	switch c.Codec {
	case "go", "vips":
	default:
		return fmt.Errorf("config: unknown codec %q", c.Codec)
	}
	if c.ThumbBound < 1 || c.MidsizeBound < 1 || c.TileSize < 1 {
		return fmt.Errorf("config: size bounds must be positive")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("config: jpeg_quality must be within 1..100")
	}
	return nil
}

// LoadConfig reads the optional YAML file at path, then overlays
// TROPIIIFY_* environment variables. Defaults are applied by New.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the logger (default zerolog.Nop()).
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithNotifier sets where user-visible notifications go.
func WithNotifier(n Notifier) Option {
	return func(a *App) {
		a.notifier = n
	}
}

// WithPrompter sets how the output directory is chosen when OutputRoot is
// empty.
func WithPrompter(p Prompter) Option {
	return func(a *App) {
		a.prompter = p
	}
}

// WithTiler replaces the configured pyramid generator.
func WithTiler(t Tiler) Option {
	return func(a *App) {
		a.tiler = t
	}
}

// WithTemplates sets the template source instead of the SQLite store.
func WithTemplates(src TemplateSource) Option {
	return func(a *App) {
		a.templates = src
	}
}
