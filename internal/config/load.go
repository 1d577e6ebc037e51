package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes the variables that override the zabbix section,
// e.g. WEATHERMAP_ZABBIX_PASSWORD.
const EnvPrefix = "WEATHERMAP_"

// Loader reads map configs. Values are layered: section defaults, then the
// file, then environment variables.
type Loader struct {
	envPrefix string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{envPrefix: EnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads path, choosing the format by extension (.hcl, .ini or YAML),
// and validates the result.
func (l *Loader) Load(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		cfg, err = l.loadHCL(path)
	case ".ini":
		cfg, err = l.loadINI(path)
	default:
		cfg, err = l.loadYAML(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load reads and validates path with the default loader.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

func (l *Loader) loadYAML(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := k.Load(l.envProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	cfg := New()
	sections := []struct {
		key    string
		target any
	}{
		{"zabbix", &cfg.Zabbix},
		{"map", &cfg.Map},
		{"table", &cfg.Table},
		{"link", &cfg.Link},
	}
	for _, s := range sections {
		if err := k.Unmarshal(s.key, s.target); err != nil {
			return nil, fmt.Errorf("section %s: %w", s.key, err)
		}
	}

	palette, err := paletteFrom(k)
	if err != nil {
		return nil, err
	}
	cfg.Palette = palette

	for key := range k.Raw() {
		switch {
		case strings.HasPrefix(key, NodePrefix):
			n := &Node{ID: key}
			if err := k.Unmarshal(key, n); err != nil {
				return nil, fmt.Errorf("section %s: %w", key, err)
			}
			cfg.Nodes[key] = n
		case strings.HasPrefix(key, LinkPrefix):
			ln := &Link{ID: key}
			if err := k.Unmarshal(key, ln); err != nil {
				return nil, fmt.Errorf("section %s: %w", key, err)
			}
			cfg.Links[key] = ln
		}
	}

	return cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"map.fontsize":   DefaultFontSize,
		"table.show":     false,
		"link.width":     DefaultLinkWidth,
		"link.bandwidth": DefaultBandwidth,
	}
}

// paletteFrom accepts the palette either as a list or as a mapping keyed
// by tier number.
func paletteFrom(k *koanf.Koanf) ([]string, error) {
	if !k.Exists("palette") {
		return nil, nil
	}

	switch v := k.Get("palette").(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, c := range v {
			out = append(out, fmt.Sprint(c))
		}
		return out, nil
	case map[string]any:
		tiers := make([]int, 0, len(v))
		byTier := make(map[int]string, len(v))
		for key, c := range v {
			i, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("palette: tier %q is not a number", key)
			}
			tiers = append(tiers, i)
			byTier[i] = fmt.Sprint(c)
		}
		sort.Ints(tiers)
		out := make([]string, 0, len(tiers))
		for _, i := range tiers {
			out = append(out, byTier[i])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("palette: unsupported value %T", v)
	}
}

// envProvider maps PREFIX_ZABBIX_URL to zabbix.url and ignores every
// variable outside the zabbix section.
func (l *Loader) envProvider() *env.Env {
	return env.ProviderWithValue(l.envPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, l.envPrefix))
		section, option, ok := strings.Cut(key, "_")
		if !ok || section != "zabbix" || value == "" {
			return "", nil
		}
		return section + "." + option, value
	})
}

// applyEnv overrides the zabbix section of cfg from the environment.
func (l *Loader) applyEnv(cfg *Config) error {
	k := koanf.New(".")
	if err := k.Load(l.envProvider(), nil); err != nil {
		return fmt.Errorf("failed to load env: %w", err)
	}
	if k.Exists("zabbix.url") {
		cfg.Zabbix.URL = k.String("zabbix.url")
	}
	if k.Exists("zabbix.login") {
		cfg.Zabbix.Login = k.String("zabbix.login")
	}
	if k.Exists("zabbix.password") {
		cfg.Zabbix.Password = k.String("zabbix.password")
	}
	return nil
}
