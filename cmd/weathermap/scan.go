package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ankek/terraform-provider-weathermap/internal/config"
	"github.com/ankek/terraform-provider-weathermap/internal/weathermap"
)

func newScanCmd() *cobra.Command {
	var (
		mapName string
		cfgDir  string
		zbx     config.Zabbix
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Create or update a map config from a Zabbix map",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// flags win over the environment, which may come from --env-file
			fillFromEnv(&zbx.URL, config.EnvPrefix+"ZABBIX_URL")
			fillFromEnv(&zbx.Login, config.EnvPrefix+"ZABBIX_LOGIN")
			fillFromEnv(&zbx.Password, config.EnvPrefix+"ZABBIX_PASSWORD")
			if zbx.URL == "" || zbx.Login == "" {
				return fmt.Errorf("zabbix url and login are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := weathermap.NewGenerator().Scan(cmd.Context(), weathermap.ScanRequest{
				MapName:   mapName,
				ConfigDir: cfgDir,
				Zabbix:    zbx,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mapName, "scan", "s", "", "Map name in Zabbix")
	cmd.Flags().StringVarP(&cfgDir, "cfg", "c", defaultConfigDir, "Config directory")
	cmd.Flags().StringVarP(&zbx.URL, "zabbix", "z", "", "Zabbix API url")
	cmd.Flags().StringVarP(&zbx.Login, "login", "l", "", "Zabbix login")
	cmd.Flags().StringVarP(&zbx.Password, "pwd", "p", "", "Zabbix password")
	_ = cmd.MarkFlagRequired("scan")
	return cmd
}

func fillFromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}
