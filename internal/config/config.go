// Package config loads, validates and writes weathermap map configurations.
//
// A map config has fixed sections (zabbix, map, table, link, palette) and
// one section per node ("node-<id>") and per link ("link-<id>"). YAML, HCL
// and legacy INI files are supported; all decode into Config.
package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/ankek/terraform-provider-weathermap/internal/mapping"
)

const (
	NodePrefix = "node-"
	LinkPrefix = "link-"

	DefaultFontSize  = 10
	DefaultLinkWidth = 10
	DefaultBandwidth = 100
)

// Zabbix holds the monitoring server credentials.
type Zabbix struct {
	URL      string `koanf:"url" yaml:"url"`
	Login    string `koanf:"login" yaml:"login"`
	Password string `koanf:"password" yaml:"password"`
}

// MapSection sizes the rendered image.
type MapSection struct {
	Name     string `koanf:"name" yaml:"name"`
	BGColor  string `koanf:"bgcolor" yaml:"bgcolor,omitempty"`
	FontSize int    `koanf:"fontsize" yaml:"fontsize"`
	Width    int    `koanf:"width" yaml:"width"`
	Height   int    `koanf:"height" yaml:"height"`
}

// TableSection places the legend.
type TableSection struct {
	Show bool `koanf:"show" yaml:"show"`
	X    int  `koanf:"x" yaml:"x"`
	Y    int  `koanf:"y" yaml:"y"`
}

// LinkDefaults apply to links that leave width or bandwidth unset.
type LinkDefaults struct {
	Bandwidth int64   `koanf:"bandwidth" yaml:"bandwidth"`
	Width     float64 `koanf:"width" yaml:"width"`
}

// Node is a "node-*" section.
type Node struct {
	ID    string `koanf:"-" yaml:"-"`
	Name  string `koanf:"name" yaml:"name"`
	Label string `koanf:"label" yaml:"label,omitempty"`
	Icon  string `koanf:"icon" yaml:"icon,omitempty"`
	X     int    `koanf:"x" yaml:"x"`
	Y     int    `koanf:"y" yaml:"y"`
}

// Link is a "link-*" section. Node1 and Node2 name node sections.
type Link struct {
	ID        string  `koanf:"-" yaml:"-"`
	Node1     string  `koanf:"node1" yaml:"node1"`
	Node2     string  `koanf:"node2" yaml:"node2"`
	Name1     string  `koanf:"name1" yaml:"name1,omitempty"`
	Name2     string  `koanf:"name2" yaml:"name2,omitempty"`
	Copy      bool    `koanf:"copy" yaml:"copy,omitempty"`
	Hostname  string  `koanf:"hostname" yaml:"hostname"`
	ItemIn    string  `koanf:"itemin" yaml:"itemin"`
	ItemOut   string  `koanf:"itemout" yaml:"itemout"`
	Width     float64 `koanf:"width" yaml:"width,omitempty"`
	Bandwidth int64   `koanf:"bandwidth" yaml:"bandwidth,omitempty"`
}

// Monitored reports whether the link names a host and both items.
func (l *Link) Monitored() bool {
	return l.Hostname != "" && l.ItemIn != "" && l.ItemOut != ""
}

// Config is a complete map configuration.
type Config struct {
	Zabbix  Zabbix
	Map     MapSection
	Table   TableSection
	Link    LinkDefaults
	Palette []string // nine colors; empty means the default palette
	Nodes   map[string]*Node
	Links   map[string]*Link
}

// New returns an empty config carrying the section defaults.
func New() *Config {
	return &Config{
		Map:   MapSection{FontSize: DefaultFontSize},
		Link:  LinkDefaults{Bandwidth: DefaultBandwidth, Width: DefaultLinkWidth},
		Nodes: make(map[string]*Node),
		Links: make(map[string]*Link),
	}
}

// NodeIDs returns the node section names in sorted order.
func (c *Config) NodeIDs() []string {
	return sortedKeys(c.Nodes)
}

// LinkIDs returns the link section names in sorted order.
func (c *Config) LinkIDs() []string {
	return sortedKeys(c.Links)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LinkWidth returns the arrow width of l, falling back to the link section.
func (c *Config) LinkWidth(l *Link) float64 {
	if l.Width > 0 {
		return l.Width
	}
	return c.Link.Width
}

// LinkBandwidth returns the capacity of l, falling back to the link section.
func (c *Config) LinkBandwidth(l *Link) int64 {
	if l.Bandwidth > 0 {
		return l.Bandwidth
	}
	return c.Link.Bandwidth
}

// ColorPalette parses the palette section.
func (c *Config) ColorPalette() (mapping.Palette, error) {
	if len(c.Palette) == 0 {
		return mapping.DefaultPalette(), nil
	}
	return mapping.ParsePalette(c.Palette)
}

// Background parses map.bgcolor. An empty color means transparent.
func (c *Config) Background() (color.Color, error) {
	if c.Map.BGColor == "" {
		return nil, nil
	}
	col, err := mapping.ParseColor(c.Map.BGColor)
	if err != nil {
		return nil, fmt.Errorf("map bgcolor: %w", err)
	}
	return col, nil
}

// DefaultPaletteHex returns the default palette as config strings.
func DefaultPaletteHex() []string {
	p := mapping.DefaultPalette()
	out := make([]string, 0, len(p))
	for _, c := range p {
		out = append(out, fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
	}
	return out
}

func nodeSection(id string) string {
	if strings.HasPrefix(id, NodePrefix) {
		return id
	}
	return NodePrefix + id
}

func linkSection(id string) string {
	if strings.HasPrefix(id, LinkPrefix) {
		return id
	}
	return LinkPrefix + id
}
