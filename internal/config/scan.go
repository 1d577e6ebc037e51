package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ScannedMap is a monitoring-side map reduced to what a config needs.
type ScannedMap struct {
	Name     string
	Width    int
	Height   int
	Elements []ScannedElement
	Links    []ScannedLink
}

// ScannedElement is a map element with the size of its icon, so the
// node can be centered where the icon was drawn.
type ScannedElement struct {
	ID         string
	Name       string
	X, Y       int // top-left corner of the icon
	IconWidth  int
	IconHeight int
}

// ScannedLink joins two elements by id.
type ScannedLink struct {
	ID       string
	Element1 string
	Element2 string
}

// newSectionID returns a short random section suffix.
var newSectionID = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// FromScannedMap builds a fresh config for m. Links get no host or items;
// those are filled in by hand or merged from a previous config.
func FromScannedMap(zbx Zabbix, m ScannedMap) (*Config, error) {
	cfg := New()
	cfg.Zabbix = zbx
	cfg.Map.Name = m.Name
	cfg.Map.Width = m.Width
	cfg.Map.Height = m.Height
	cfg.Table = TableSection{X: m.Width - 100, Y: m.Height - 300}
	cfg.Palette = DefaultPaletteHex()

	names := make(map[string]string, len(m.Elements))
	for _, e := range m.Elements {
		id := NodePrefix + e.ID
		names[e.ID] = e.Name
		cfg.Nodes[id] = &Node{
			ID:   id,
			Name: e.Name,
			X:    e.X + e.IconWidth/2,
			Y:    e.Y + e.IconHeight/2,
		}
	}

	for _, l := range m.Links {
		name1, ok1 := names[l.Element2]
		name2, ok2 := names[l.Element1]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("link %s joins unknown elements %s and %s", l.ID, l.Element1, l.Element2)
		}
		id := LinkPrefix + l.ID
		cfg.Links[id] = &Link{
			ID:    id,
			Node1: NodePrefix + l.Element2,
			Node2: NodePrefix + l.Element1,
			Name1: name1,
			Name2: name2,
		}
	}
	return cfg, nil
}

// Merge carries hand edits from prev into c: the table, palette and link
// sections, node labels and icons, and link hosts, items, widths and
// bandwidths for sections present in both. Links marked copy in prev exist
// only in the config, so they are duplicated into c together with their
// nodes under fresh section names.
func (c *Config) Merge(prev *Config) error {
	c.Table = prev.Table
	if len(prev.Palette) > 0 {
		c.Palette = append([]string(nil), prev.Palette...)
	}
	c.Link = prev.Link

	for id, n := range c.Nodes {
		old, ok := prev.Nodes[id]
		if !ok {
			continue
		}
		if old.Label != "" {
			n.Label = old.Label
		}
		if old.Icon != "" {
			n.Icon = old.Icon
		}
	}

	for id, l := range c.Links {
		old, ok := prev.Links[id]
		if !ok {
			continue
		}
		l.Hostname = old.Hostname
		l.ItemIn = old.ItemIn
		l.ItemOut = old.ItemOut
		if old.Width > 0 {
			l.Width = old.Width
		}
		if old.Bandwidth > 0 {
			l.Bandwidth = old.Bandwidth
		}
	}

	var errs []error
	for _, id := range prev.LinkIDs() {
		old := prev.Links[id]
		if !old.Copy {
			continue
		}
		if err := c.copyLink(prev, old); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Config) copyLink(prev *Config, old *Link) error {
	n1, ok1 := prev.Nodes[old.Node1]
	n2, ok2 := prev.Nodes[old.Node2]
	if !ok1 || !ok2 {
		return fmt.Errorf("copy %s: unknown node %q or %q", old.ID, old.Node1, old.Node2)
	}

	dup1 := *n1
	dup1.ID = NodePrefix + newSectionID()
	dup2 := *n2
	dup2.ID = NodePrefix + newSectionID()
	c.Nodes[dup1.ID] = &dup1
	c.Nodes[dup2.ID] = &dup2

	link := *old
	link.ID = LinkPrefix + newSectionID()
	link.Node1 = dup1.ID
	link.Node2 = dup2.ID
	c.Links[link.ID] = &link
	return nil
}
