package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Marshal encodes cfg as a YAML document with sections in a fixed order:
// map, zabbix, table, palette, link, then nodes and links sorted by name.
func (c *Config) Marshal() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, v any) error {
		val := &yaml.Node{}
		if err := val.Encode(v); err != nil {
			return fmt.Errorf("section %s: %w", key, err)
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, val)
		return nil
	}

	palette := c.Palette
	if len(palette) == 0 {
		palette = DefaultPaletteHex()
	}

	sections := []struct {
		key string
		v   any
	}{
		{"map", c.Map},
		{"zabbix", c.Zabbix},
		{"table", c.Table},
		{"palette", palette},
		{"link", c.Link},
	}
	for _, s := range sections {
		if err := add(s.key, s.v); err != nil {
			return nil, err
		}
	}
	for _, id := range c.NodeIDs() {
		if err := add(id, c.Nodes[id]); err != nil {
			return nil, err
		}
	}
	for _, id := range c.LinkIDs() {
		if err := add(id, c.Links[id]); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
