// Package config loads labelkit settings from a YAML file, the environment
// and command-line flags.
//
// Settings are looked up as labelkit.yaml in the working directory,
// $XDG_CONFIG_HOME/labelkit and /etc/labelkit, in that order. Every key can
// be overridden by an environment variable with the LABELKIT_ prefix and
// dots replaced by underscores, e.g. LABELKIT_GRID_SIZE=10.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gogpu/labelkit/canvas"
	"github.com/gogpu/labelkit/export"
	"github.com/gogpu/labelkit/generate"
	"github.com/gogpu/labelkit/grid"
	"github.com/gogpu/labelkit/ruler"
)

// Name is the config file name without extension.
const Name = "labelkit"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LABELKIT"

// Settings is the complete labelkit configuration.
type Settings struct {
	Grid   grid.Config    `mapstructure:"grid" yaml:"grid"`
	Ruler  ruler.Config   `mapstructure:"ruler" yaml:"ruler"`
	Editor EditorSettings `mapstructure:"editor" yaml:"editor"`
	Export ExportSettings `mapstructure:"export" yaml:"export"`
	Server ServerSettings `mapstructure:"server" yaml:"server"`
	Log    LogSettings    `mapstructure:"log" yaml:"log"`
}

// EditorSettings configures the scene manager.
type EditorSettings struct {
	MinZoom         float64 `mapstructure:"minzoom" yaml:"minZoom"`
	MaxZoom         float64 `mapstructure:"maxzoom" yaml:"maxZoom"`
	DuplicateOffset float64 `mapstructure:"duplicateoffset" yaml:"duplicateOffset"`
	FitMargin       float64 `mapstructure:"fitmargin" yaml:"fitMargin"`
}

// ExportSettings configures rendering and image loading.
type ExportSettings struct {
	Format     string  `mapstructure:"format" yaml:"format"`
	Multiplier float64 `mapstructure:"multiplier" yaml:"multiplier"`
	Quality    int     `mapstructure:"quality" yaml:"quality"`
	// CacheTTL is how long decoded images stay cached.
	CacheTTL time.Duration `mapstructure:"cachettl" yaml:"cacheTTL"`
	// FetchTimeout bounds remote image downloads.
	FetchTimeout time.Duration `mapstructure:"fetchtimeout" yaml:"fetchTimeout"`
	MaxImageSize int64         `mapstructure:"maximagesize" yaml:"maxImageSize"`
	// MaxPixels bounds the width*height of raster output.
	MaxPixels int64 `mapstructure:"maxpixels" yaml:"maxPixels"`
}

// ServerSettings configures the preview service.
type ServerSettings struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
	// BodyLimit is an echo size string such as "8M".
	BodyLimit string `mapstructure:"bodylimit" yaml:"bodyLimit"`
	Metrics   bool   `mapstructure:"metrics" yaml:"metrics"`
	// ImageSchemes lists the image source schemes accepted in served
	// scenes. Local files are never read for the server.
	ImageSchemes []string `mapstructure:"imageschemes" yaml:"imageSchemes"`
	// ImageHosts, when set, limits remote image sources to these hosts.
	ImageHosts []string `mapstructure:"imagehosts" yaml:"imageHosts,omitempty"`
}

// LogSettings configures the process logger.
type LogSettings struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Grid:  grid.DefaultConfig(),
		Ruler: ruler.DefaultConfig(),
		Editor: EditorSettings{
			MinZoom:         canvas.DefaultMinZoom,
			MaxZoom:         canvas.DefaultMaxZoom,
			DuplicateOffset: canvas.DefaultDuplicateOffset,
			FitMargin:       canvas.DefaultFitMargin,
		},
		Export: ExportSettings{
			Format:       export.FormatPNG,
			Multiplier:   1,
			Quality:      export.DefaultJPEGQuality,
			CacheTTL:     generate.DefaultCacheTTL,
			FetchTimeout: generate.DefaultLoadTimeout,
			MaxImageSize: generate.DefaultMaxBytes,
			MaxPixels:    export.DefaultMaxPixels,
		},
		Server: ServerSettings{
			Listen:       ":8080",
			BodyLimit:    "8M",
			Metrics:      true,
			ImageSchemes: []string{generate.SchemeData, generate.SchemeHTTPS},
		},
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// SearchPaths returns the directories searched for the config file.
func SearchPaths() []string {
	paths := []string{"."}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, Name))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", Name))
	}
	return append(paths, filepath.Join("/etc", Name))
}

// New returns a viper instance with defaults, search paths and
// environment overrides registered. Callers may bind flags to it before
// calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName(Name)
	v.SetConfigType("yaml")
	for _, p := range SearchPaths() {
		v.AddConfigPath(p)
	}
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads settings through v. A non-empty file overrides the search
// paths. A missing config file in the search paths is not an error; the
// defaults apply.
func Load(v *viper.Viper, file string) (*Settings, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Used returns the path of the file Load read, or "" when only defaults
// and overrides applied.
func Used(v *viper.Viper) string {
	return v.ConfigFileUsed()
}

func setDefaults(v *viper.Viper, d Settings) {
	g := d.Grid
	v.SetDefault("grid.enabled", g.Enabled)
	v.SetDefault("grid.size", g.Size)
	v.SetDefault("grid.subdivisions", g.Subdivisions)
	v.SetDefault("grid.type", string(g.Type))
	v.SetDefault("grid.snaptogrid", g.SnapToGrid)
	v.SetDefault("grid.snaptosubgrid", g.SnapToSubGrid)
	v.SetDefault("grid.snaptolerance", g.SnapTolerance)
	v.SetDefault("grid.majorlinecolor", g.MajorLineColor)
	v.SetDefault("grid.majorlineopacity", g.MajorLineOpacity)
	v.SetDefault("grid.minorlinecolor", g.MinorLineColor)
	v.SetDefault("grid.minorlineopacity", g.MinorLineOpacity)
	v.SetDefault("grid.showorigin", g.ShowOrigin)

	r := d.Ruler
	v.SetDefault("ruler.enabled", r.Enabled)
	v.SetDefault("ruler.unit", string(r.Unit))
	v.SetDefault("ruler.precision", r.Precision)
	v.SetDefault("ruler.thickness", r.Thickness)
	v.SetDefault("ruler.showguides", r.ShowGuides)
	v.SetDefault("ruler.backgroundcolor", r.BackgroundColor)
	v.SetDefault("ruler.tickcolor", r.TickColor)

	v.SetDefault("editor.minzoom", d.Editor.MinZoom)
	v.SetDefault("editor.maxzoom", d.Editor.MaxZoom)
	v.SetDefault("editor.duplicateoffset", d.Editor.DuplicateOffset)
	v.SetDefault("editor.fitmargin", d.Editor.FitMargin)

	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("export.multiplier", d.Export.Multiplier)
	v.SetDefault("export.quality", d.Export.Quality)
	v.SetDefault("export.cachettl", d.Export.CacheTTL)
	v.SetDefault("export.fetchtimeout", d.Export.FetchTimeout)
	v.SetDefault("export.maximagesize", d.Export.MaxImageSize)
	v.SetDefault("export.maxpixels", d.Export.MaxPixels)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.bodylimit", d.Server.BodyLimit)
	v.SetDefault("server.metrics", d.Server.Metrics)
	v.SetDefault("server.imageschemes", d.Server.ImageSchemes)
	v.SetDefault("server.imagehosts", d.Server.ImageHosts)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// CanvasOptions returns the scene manager options these settings imply.
func (s *Settings) CanvasOptions() []canvas.Option {
	return []canvas.Option{
		canvas.WithGrid(s.Grid),
		canvas.WithZoomLimits(s.Editor.MinZoom, s.Editor.MaxZoom),
		canvas.WithDuplicateOffset(s.Editor.DuplicateOffset),
		canvas.WithFitMargin(s.Editor.FitMargin),
	}
}

// ExportOptions returns the default export options.
func (s *Settings) ExportOptions() export.Options {
	return export.Options{
		Multiplier: s.Export.Multiplier,
		Quality:    s.Export.Quality,
		MaxPixels:  s.Export.MaxPixels,
	}
}

// LoaderConfig returns the image loader configuration.
func (s *Settings) LoaderConfig() generate.LoaderConfig {
	return generate.LoaderConfig{
		Timeout:      s.Export.FetchTimeout,
		CacheTTL:     s.Export.CacheTTL,
		MaxBytes:     s.Export.MaxImageSize,
		MaxDimension: generate.DefaultMaxDimension,
	}
}

// ServerLoaderConfig returns the image loader configuration for scenes
// posted to the preview service: no local files and no private networks.
func (s *Settings) ServerLoaderConfig() generate.LoaderConfig {
	cfg := s.LoaderConfig()
	cfg.Schemes = s.Server.ImageSchemes
	cfg.Hosts = s.Server.ImageHosts
	return generate.RestrictedLoaderConfig(cfg)
}

// SlogLevel parses Log.Level. Unknown levels read as info.
func (s *Settings) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
