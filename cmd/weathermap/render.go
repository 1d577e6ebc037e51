package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/ankek/terraform-provider-weathermap/internal/weathermap"
)

const (
	defaultConfigDir = "mapcfgs"
	defaultImageDir  = "mapimgs"
	defaultIconDir   = "icons"
)

type renderOptions struct {
	mapFile  string
	cfgDir   string
	imgDir   string
	iconDir  string
	noIcons  bool
	fontPath string
	upload   bool
	quiet    bool
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a map config into a PNG image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := opts.request()

			var s *spinner.Spinner
			if !opts.quiet {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
				s.Suffix = fmt.Sprintf(" Rendering %s...", filepath.Base(req.ConfigPath))
				s.Start()
			}

			res, err := weathermap.NewGenerator().Generate(cmd.Context(), req)

			if s != nil {
				s.Stop()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d nodes, %d links", res.OutputPath, res.NodeCount, res.LinkCount)
			if res.SkippedLinks > 0 {
				fmt.Fprintf(out, " (%d unmonitored)", res.SkippedLinks)
			}
			fmt.Fprintln(out)
			if res.ImageID != "" {
				fmt.Fprintf(out, "uploaded as image %s\n", res.ImageID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.mapFile, "map", "m", "", "Map config file name, relative to --cfg unless it is a path")
	cmd.Flags().StringVarP(&opts.cfgDir, "cfg", "c", defaultConfigDir, "Config directory")
	cmd.Flags().StringVarP(&opts.imgDir, "img", "i", defaultImageDir, "Image output directory")
	cmd.Flags().StringVar(&opts.iconDir, "icons", defaultIconDir, "Icon directory, skipped when it does not exist")
	cmd.Flags().BoolVar(&opts.noIcons, "no-icons", false, "Draw nodes without icons")
	cmd.Flags().StringVar(&opts.fontPath, "font", "", "TrueType font file")
	cmd.Flags().BoolVarP(&opts.upload, "upload", "u", false, "Upload the image to Zabbix")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Disable progress spinner")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}

// request maps the flags to a render request. The image is named after
// the config file with a .png extension.
func (o *renderOptions) request() weathermap.Request {
	cfgPath := o.mapFile
	if !strings.ContainsRune(o.mapFile, os.PathSeparator) {
		cfgPath = filepath.Join(o.cfgDir, o.mapFile)
	}
	base := strings.TrimSuffix(filepath.Base(o.mapFile), filepath.Ext(o.mapFile))

	return weathermap.Request{
		ConfigPath: cfgPath,
		OutputPath: filepath.Join(o.imgDir, base+".png"),
		IconDir:    existingDir(o.iconDir),
		NoIcons:    o.noIcons,
		FontPath:   o.fontPath,
		Upload:     o.upload,
	}
}

// existingDir returns dir if it is a directory and "" otherwise, so icon
// references fall back to plain paths.
func existingDir(dir string) string {
	if dir == "" {
		return ""
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}
	return dir
}
