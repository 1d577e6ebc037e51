package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks the whole config and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		errs = append(errs, fmt.Errorf("map: size %dx%d must be positive", c.Map.Width, c.Map.Height))
	}
	if _, err := c.Background(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Palette) > 0 {
		if _, err := c.ColorPalette(); err != nil {
			errs = append(errs, fmt.Errorf("palette: %w", err))
		}
	}
	if c.Link.Width < 0 {
		errs = append(errs, fmt.Errorf("link: width %g must not be negative", c.Link.Width))
	}

	for _, id := range c.LinkIDs() {
		l := c.Links[id]
		for _, ref := range []string{l.Node1, l.Node2} {
			if _, ok := c.Nodes[ref]; !ok {
				errs = append(errs, fmt.Errorf("%s: unknown node %q", id, ref))
			}
		}
		if c.LinkBandwidth(l) <= 0 {
			errs = append(errs, fmt.Errorf("%s: bandwidth must be positive", id))
		}
		if l.Width < 0 {
			errs = append(errs, fmt.Errorf("%s: width %g must not be negative", id, l.Width))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
