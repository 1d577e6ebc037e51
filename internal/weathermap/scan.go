package weathermap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ankek/terraform-provider-weathermap/internal/config"
	"github.com/ankek/terraform-provider-weathermap/internal/interfaces"
	"github.com/ankek/terraform-provider-weathermap/internal/validation"
)

// ScanRequest names a map on the monitoring server and where to keep its
// config.
type ScanRequest struct {
	MapName   string
	ConfigDir string
	Zabbix    config.Zabbix
}

// Scan builds a config from a monitoring-side map and saves it as
// <ConfigDir>/<MapName>.yaml. Hand edits in an existing file of that name
// are merged into the new config. It returns the written path.
func (g *Generator) Scan(ctx context.Context, req ScanRequest) (string, error) {
	if req.MapName == "" {
		return "", fmt.Errorf("map name cannot be empty")
	}
	if err := g.paths.ValidateInputPath(req.ConfigDir, true); err != nil {
		return "", fmt.Errorf("invalid config directory: %w", err)
	}
	path := filepath.Join(req.ConfigDir, req.MapName+".yaml")
	if err := validation.ValidateOutputPath(path); err != nil {
		return "", fmt.Errorf("invalid config path: %w", err)
	}

	monitor, err := g.connect(req.Zabbix)
	if err != nil {
		return "", fmt.Errorf("failed to connect: %w", err)
	}

	scanned, err := scanMap(ctx, monitor, req.MapName)
	if err != nil {
		return "", err
	}
	cfg, err := config.FromScannedMap(req.Zabbix, *scanned)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		prev, err := g.loader.Load(path)
		if err != nil {
			return "", fmt.Errorf("failed to load previous config: %w", err)
		}
		if err := cfg.Merge(prev); err != nil {
			return "", fmt.Errorf("failed to merge previous config: %w", err)
		}
		g.log.Debug("merged previous config", "path", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to access %s: %w", path, err)
	}

	if err := cfg.Save(path); err != nil {
		return "", err
	}
	g.log.Info("map scanned",
		"map", req.MapName,
		"path", path,
		"nodes", len(cfg.Nodes),
		"links", len(cfg.Links))
	return path, nil
}

// scanMap reads the map and resolves element names and icon sizes.
func scanMap(ctx context.Context, scanner interfaces.MapScanner, name string) (*config.ScannedMap, error) {
	m, err := scanner.MapByName(ctx, name)
	if err != nil {
		return nil, err
	}

	out := &config.ScannedMap{
		Name:   m.Name,
		Width:  int(m.Width),
		Height: int(m.Height),
	}

	type size struct{ w, h int }
	iconSizes := make(map[string]size)
	for _, e := range m.Elements {
		elemName, err := scanner.ElementName(ctx, int(e.ElementType), e.ElementID)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", e.SelementID, err)
		}

		s, ok := iconSizes[e.IconIDOff]
		if !ok {
			w, h, err := scanner.ImageSize(ctx, e.IconIDOff)
			if err != nil {
				return nil, fmt.Errorf("element %s icon: %w", e.SelementID, err)
			}
			s = size{w, h}
			iconSizes[e.IconIDOff] = s
		}

		out.Elements = append(out.Elements, config.ScannedElement{
			ID:         e.SelementID,
			Name:       elemName,
			X:          int(e.X),
			Y:          int(e.Y),
			IconWidth:  s.w,
			IconHeight: s.h,
		})
	}

	for _, l := range m.Links {
		out.Links = append(out.Links, config.ScannedLink{
			ID:       l.LinkID,
			Element1: l.SelementID1,
			Element2: l.SelementID2,
		})
	}
	return out, nil
}
