// Package weathermap turns map configs into rendered weathermap images. It
// ties the config, the monitoring client and the rendering engine together
// and is shared by the CLI and the Terraform provider.
package weathermap

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ankek/terraform-provider-weathermap/internal/config"
	"github.com/ankek/terraform-provider-weathermap/internal/interfaces"
	"github.com/ankek/terraform-provider-weathermap/internal/mapping"
	"github.com/ankek/terraform-provider-weathermap/internal/validation"
	"github.com/ankek/terraform-provider-weathermap/internal/zabbix"
)

// Connector opens a monitoring session for the zabbix section of a config.
type Connector func(zbx config.Zabbix) (interfaces.Monitor, error)

// Request describes one render.
type Request struct {
	ConfigPath string
	OutputPath string
	IconDir    string // optional; icons are looked up here first
	NoIcons    bool   // draw every node as a bare label
	FontPath   string // optional TrueType font; Go Mono when empty
	Upload     bool   // publish the image under the map name
}

// Result summarizes a render.
type Result struct {
	NodeCount    int64
	LinkCount    int64
	SkippedLinks int64 // links without a host or items
	OutputPath   string
	SHA256       string
	ImageID      string // set when uploaded
}

// Generator renders weathermaps.
type Generator struct {
	loader  *config.Loader
	connect Connector
	paths   interfaces.PathValidator
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithConnector replaces the Zabbix client, mainly for tests.
func WithConnector(c Connector) Option {
	return func(g *Generator) {
		g.connect = c
	}
}

// WithLoader replaces the config loader.
func WithLoader(l *config.Loader) Option {
	return func(g *Generator) {
		g.loader = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.log = l
	}
}

// WithClock sets the clock used for the legend timestamp.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithPathValidator replaces the path checks.
func WithPathValidator(v interfaces.PathValidator) Option {
	return func(g *Generator) {
		g.paths = v
	}
}

// NewGenerator creates a generator talking to Zabbix by default.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		loader: config.NewLoader(),
		paths:  validation.Paths{},
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.connect == nil {
		g.connect = ZabbixConnector(g.log)
	}
	return g
}

// ZabbixConnector returns a Connector backed by the Zabbix JSON-RPC client.
func ZabbixConnector(log *slog.Logger) Connector {
	return func(zbx config.Zabbix) (interfaces.Monitor, error) {
		if zbx.URL == "" {
			return nil, fmt.Errorf("zabbix url is not configured")
		}
		return zabbix.New(zbx.URL, zbx.Login, zbx.Password, zabbix.WithLogger(log)), nil
	}
}

// Generate loads the config, polls every monitored link, renders the map,
// optionally uploads it and writes the PNG.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := g.validate(req); err != nil {
		return nil, err
	}

	cfg, err := g.loader.Load(req.ConfigPath)
	if err != nil {
		return nil, err
	}

	fonts, err := loadFonts(req.FontPath)
	if err != nil {
		return nil, err
	}

	var monitor interfaces.Monitor
	if needsMonitor(cfg, req) {
		if monitor, err = g.connect(cfg.Zabbix); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}
	}

	built, err := g.Build(ctx, cfg, monitor, BuildOptions{
		Icons: &mapping.IconLoader{Dir: req.IconDir, Disabled: req.NoIcons},
		Fonts: fonts,
	})
	if err != nil {
		return nil, err
	}

	data, err := built.Map.PNG()
	if err != nil {
		return nil, fmt.Errorf("failed to render map: %w", err)
	}
	sum := sha256.Sum256(data)

	result := &Result{
		NodeCount:    int64(len(built.Map.Nodes)),
		LinkCount:    int64(len(built.Map.Links)),
		SkippedLinks: int64(built.Skipped),
		OutputPath:   req.OutputPath,
		SHA256:       hex.EncodeToString(sum[:]),
	}

	// upload first so a failed upload leaves no image behind
	if req.Upload {
		id, err := monitor.UploadImage(ctx, cfg.Map.Name, data)
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", cfg.Map.Name, err)
		}
		result.ImageID = id
	}

	if err := os.WriteFile(req.OutputPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", req.OutputPath, err)
	}

	g.log.Info("weathermap generated",
		"map", cfg.Map.Name,
		"output", req.OutputPath,
		"nodes", result.NodeCount,
		"links", result.LinkCount,
		"uploaded", req.Upload)
	return result, nil
}

func (g *Generator) validate(req Request) error {
	if err := g.paths.ValidateConfigPath(req.ConfigPath); err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}
	if err := g.paths.ValidateImagePath(req.OutputPath); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if req.IconDir != "" {
		if err := g.paths.ValidateInputPath(req.IconDir, true); err != nil {
			return fmt.Errorf("invalid icon directory: %w", err)
		}
	}
	if req.FontPath != "" {
		if err := g.paths.ValidateInputPath(req.FontPath, false); err != nil {
			return fmt.Errorf("invalid font path: %w", err)
		}
	}
	return nil
}

func needsMonitor(cfg *config.Config, req Request) bool {
	if req.Upload {
		return true
	}
	for _, l := range cfg.Links {
		if l.Monitored() {
			return true
		}
	}
	return false
}

func loadFonts(path string) (*mapping.Fonts, error) {
	if path == "" {
		return mapping.NewFonts(nil)
	}
	ttf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	return mapping.NewFonts(ttf)
}
