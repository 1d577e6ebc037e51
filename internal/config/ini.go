package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"gopkg.in/ini.v1"
)

// iniSections must be present in an INI map config.
var iniSections = []string{"zabbix", "map", "table", "link", "palette"}

// loadINI reads the legacy INI form of a map config:
//
//	[map]
//	name = core
//	width = 800
//	height = 600
//
//	[palette]
//	0 = #908C8C
//	...
//	8 = #FF0000
//
//	[node-1]
//	name = r1
//	x = 100
//	y = 100
//
// Section and option names are case-insensitive. Values are taken verbatim,
// so "#" starts a comment only at the beginning of a line. Empty options
// keep their defaults.
func (l *Loader) loadINI(path string) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:         true,
		IgnoreInlineComment: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, name := range iniSections {
		if !f.HasSection(name) {
			return nil, fmt.Errorf("section [%s] is not present in the config", name)
		}
	}

	cfg := New()
	for _, sec := range f.Sections() {
		name := sec.Name()
		switch {
		case name == "zabbix":
			err = decodeSection(sec, map[string]any{
				"url":      &cfg.Zabbix.URL,
				"login":    &cfg.Zabbix.Login,
				"password": &cfg.Zabbix.Password,
			})
		case name == "map":
			err = decodeSection(sec, map[string]any{
				"name":     &cfg.Map.Name,
				"bgcolor":  &cfg.Map.BGColor,
				"fontsize": &cfg.Map.FontSize,
				"width":    &cfg.Map.Width,
				"height":   &cfg.Map.Height,
			})
		case name == "table":
			err = decodeSection(sec, map[string]any{
				"show": &cfg.Table.Show,
				"x":    &cfg.Table.X,
				"y":    &cfg.Table.Y,
			})
		case name == "link":
			err = decodeSection(sec, map[string]any{
				"width":     &cfg.Link.Width,
				"bandwidth": &cfg.Link.Bandwidth,
			})
		case name == "palette":
			cfg.Palette, err = iniPalette(sec)
		case strings.HasPrefix(name, NodePrefix):
			n := &Node{ID: name}
			err = decodeSection(sec, map[string]any{
				"name":  &n.Name,
				"label": &n.Label,
				"icon":  &n.Icon,
				"x":     &n.X,
				"y":     &n.Y,
			})
			cfg.Nodes[n.ID] = n
		case strings.HasPrefix(name, LinkPrefix):
			ln := &Link{ID: name}
			err = decodeSection(sec, map[string]any{
				"node1":     &ln.Node1,
				"node2":     &ln.Node2,
				"name1":     &ln.Name1,
				"name2":     &ln.Name2,
				"copy":      &ln.Copy,
				"hostname":  &ln.Hostname,
				"itemin":    &ln.ItemIn,
				"itemout":   &ln.ItemOut,
				"width":     &ln.Width,
				"bandwidth": &ln.Bandwidth,
			})
			ln.Node1 = nodeSection(ln.Node1)
			ln.Node2 = nodeSection(ln.Node2)
			cfg.Links[ln.ID] = ln
		}
		if err != nil {
			return nil, err
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeSection assigns each known option of sec to its target pointer.
// Unknown options are ignored.
func decodeSection(sec *ini.Section, targets map[string]any) error {
	for _, key := range sec.Keys() {
		target, ok := targets[key.Name()]
		if !ok || strings.TrimSpace(key.String()) == "" {
			continue
		}

		var err error
		switch t := target.(type) {
		case *string:
			*t = key.String()
		case *int:
			*t, err = key.Int()
		case *int64:
			*t, err = key.Int64()
		case *float64:
			*t, err = key.Float64()
		case *bool:
			*t, err = key.Bool()
		default:
			err = fmt.Errorf("unsupported target %T", target)
		}
		if err != nil {
			return fmt.Errorf("[%s] %s: %w", sec.Name(), key.Name(), err)
		}
	}
	return nil
}

// iniPalette orders the [palette] options by tier number.
func iniPalette(sec *ini.Section) ([]string, error) {
	tiers := make(map[string]any, len(sec.Keys()))
	for _, key := range sec.Keys() {
		tiers[key.Name()] = key.String()
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]any{"palette": tiers}, "."), nil); err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	return paletteFrom(k)
}
