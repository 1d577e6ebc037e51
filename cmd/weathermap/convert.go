package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ankek/terraform-provider-weathermap/internal/config"
	"github.com/ankek/terraform-provider-weathermap/internal/validation"
)

func newConvertCmd() *cobra.Command {
	var (
		mapFile string
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a legacy INI map config to YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateConfigPath(mapFile); err != nil {
				return err
			}
			if outFile == "" {
				outFile = convertedPath(mapFile)
			}
			if filepath.Clean(outFile) == filepath.Clean(mapFile) {
				return fmt.Errorf("output %s would overwrite the input", outFile)
			}
			if err := validation.ValidateOutputPath(outFile); err != nil {
				return err
			}

			cfg, err := config.Load(mapFile)
			if err != nil {
				return err
			}
			if err := cfg.Save(outFile); err != nil {
				return err
			}

			slog.Debug("converted map config", "from", mapFile, "to", outFile,
				"nodes", len(cfg.Nodes), "links", len(cfg.Links))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mapFile, "map", "m", "", "Map config to convert")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "YAML output path (default: next to the input with a .yaml extension)")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}

// convertedPath swaps the extension of path for .yaml.
func convertedPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
}
