package weathermap

import (
	"context"
	"fmt"

	"github.com/ankek/terraform-provider-weathermap/internal/config"
	"github.com/ankek/terraform-provider-weathermap/internal/interfaces"
	"github.com/ankek/terraform-provider-weathermap/internal/mapping"
)

// BuildOptions supply the rendering resources of a map.
type BuildOptions struct {
	Icons *mapping.IconLoader
	Fonts *mapping.Fonts // nil selects the default font
}

// Built is a map ready to render.
type Built struct {
	Map     *mapping.Map
	Skipped int
}

// Build turns cfg into a fed map. Nodes and links are created in section
// order; links without a host or items are left out. Rates are polled one
// link at a time and cancellation is checked between links.
func (g *Generator) Build(ctx context.Context, cfg *config.Config, rates interfaces.RateSource, opts BuildOptions) (*Built, error) {
	palette, err := cfg.ColorPalette()
	if err != nil {
		return nil, err
	}
	background, err := cfg.Background()
	if err != nil {
		return nil, err
	}

	nodesByID := make(map[string]*mapping.Node, len(cfg.Nodes))
	nodes := make([]*mapping.Node, 0, len(cfg.Nodes))
	for _, id := range cfg.NodeIDs() {
		n := cfg.Nodes[id]
		node, err := mapping.NewNode(mapping.NodeSpec{
			Name:     id,
			X:        n.X,
			Y:        n.Y,
			Label:    n.Label,
			Icon:     n.Icon,
			FontSize: cfg.Map.FontSize,
		}, opts.Icons)
		if err != nil {
			return nil, err
		}
		nodesByID[id] = node
		nodes = append(nodes, node)
	}

	var (
		links   []*mapping.Link
		skipped int
	)
	for _, id := range cfg.LinkIDs() {
		l := cfg.Links[id]
		if !l.Monitored() {
			g.log.Debug("skipping unmonitored link", "link", id)
			skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rates == nil {
			return nil, fmt.Errorf("link %s: no rate source", id)
		}

		link, err := mapping.NewLink(nodesByID[l.Node1], nodesByID[l.Node2], mapping.LinkSpec{
			Name:     id,
			Capacity: cfg.LinkBandwidth(l),
			Width:    cfg.LinkWidth(l),
			FontSize: cfg.Map.FontSize,
			Palette:  palette,
		})
		if err != nil {
			return nil, err
		}

		in, out, err := rates.ItemRates(ctx, l.Hostname, l.ItemIn, l.ItemOut)
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", id, err)
		}
		link.Feed(in, out)
		links = append(links, link)
	}

	var table *mapping.Table
	if cfg.Table.Show {
		table = mapping.NewTable(mapping.TableSpec{
			X:             cfg.Table.X,
			Y:             cfg.Table.Y,
			Palette:       palette,
			ShowTimestamp: true,
			Now:           g.now,
		})
	}

	m := mapping.NewMap(mapping.MapSpec{
		Width:      cfg.Map.Width,
		Height:     cfg.Map.Height,
		Background: background,
	}, nodes, links, table,
		mapping.WithCanvasFactory(mapping.RasterCanvasFactory(opts.Fonts)),
		mapping.WithLogger(g.log))

	return &Built{Map: m, Skipped: skipped}, nil
}
