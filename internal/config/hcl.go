package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var hclSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "palette"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "zabbix"},
		{Type: "map"},
		{Type: "table"},
		{Type: "link_defaults"},
		{Type: "node", LabelNames: []string{"id"}},
		{Type: "link", LabelNames: []string{"id"}},
	},
}

// loadHCL reads the HCL form of a map config:
//
//	map {
//	  name   = "core"
//	  width  = 800
//	  height = 600
//	}
//
//	node "r1" {
//	  x = 100
//	  y = 100
//	}
//
// Block labels become "node-" and "link-" section names.
func (l *Loader) loadHCL(path string) (*Config, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("HCL parse errors: %s", diags.Error())
	}

	content, diags := file.Body.Content(hclSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse body: %s", diags.Error())
	}

	cfg := New()
	if attr, ok := content.Attributes["palette"]; ok {
		if err := decodePalette(attr, &cfg.Palette); err != nil {
			return nil, err
		}
	}

	for _, block := range content.Blocks {
		var err error
		switch block.Type {
		case "zabbix":
			err = decodeBlock(block, map[string]any{
				"url":      &cfg.Zabbix.URL,
				"login":    &cfg.Zabbix.Login,
				"password": &cfg.Zabbix.Password,
			})
		case "map":
			err = decodeBlock(block, map[string]any{
				"name":     &cfg.Map.Name,
				"bgcolor":  &cfg.Map.BGColor,
				"fontsize": &cfg.Map.FontSize,
				"width":    &cfg.Map.Width,
				"height":   &cfg.Map.Height,
			})
		case "table":
			err = decodeBlock(block, map[string]any{
				"show": &cfg.Table.Show,
				"x":    &cfg.Table.X,
				"y":    &cfg.Table.Y,
			})
		case "link_defaults":
			err = decodeBlock(block, map[string]any{
				"width":     &cfg.Link.Width,
				"bandwidth": &cfg.Link.Bandwidth,
			})
		case "node":
			n := &Node{ID: nodeSection(block.Labels[0])}
			err = decodeBlock(block, map[string]any{
				"name":  &n.Name,
				"label": &n.Label,
				"icon":  &n.Icon,
				"x":     &n.X,
				"y":     &n.Y,
			})
			cfg.Nodes[n.ID] = n
		case "link":
			ln := &Link{ID: linkSection(block.Labels[0])}
			err = decodeBlock(block, map[string]any{
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

// decodeBlock assigns each attribute of block to its target pointer.
func decodeBlock(block *hcl.Block, targets map[string]any) error {
	name := block.Type
	if len(block.Labels) > 0 {
		name += " " + block.Labels[0]
	}

	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return fmt.Errorf("%s: %s", name, diags.Error())
	}

	for attrName, attr := range attrs {
		target, ok := targets[attrName]
		if !ok {
			return fmt.Errorf("%s: unsupported attribute %q", name, attrName)
		}
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("%s.%s: %s", name, attrName, diags.Error())
		}
		if val.IsNull() {
			continue
		}
		if err := gocty.FromCtyValue(val, target); err != nil {
			return fmt.Errorf("%s.%s: %w", name, attrName, err)
		}
	}
	return nil
}

func decodePalette(attr *hcl.Attribute, out *[]string) error {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("palette: %s", diags.Error())
	}
	list, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return fmt.Errorf("palette: %w", err)
	}
	return gocty.FromCtyValue(list, out)
}
