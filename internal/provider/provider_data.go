package provider

import (
	"log/slog"

	"github.com/ankek/terraform-provider-weathermap/internal/config"
	"github.com/ankek/terraform-provider-weathermap/internal/interfaces"
	"github.com/ankek/terraform-provider-weathermap/internal/weathermap"
)

// providerData is handed to resources and data sources by Configure.
type providerData struct {
	zabbix config.Zabbix // non-empty fields override map configs
	log    *slog.Logger
}

// override fills zbx with the provider level settings.
func (d *providerData) override(zbx config.Zabbix) config.Zabbix {
	if d.zabbix.URL != "" {
		zbx.URL = d.zabbix.URL
	}
	if d.zabbix.Login != "" {
		zbx.Login = d.zabbix.Login
	}
	if d.zabbix.Password != "" {
		zbx.Password = d.zabbix.Password
	}
	return zbx
}

// generator returns a Generator using the provider credentials. A nil
// receiver, as seen before Configure, uses the map config alone.
func (d *providerData) generator() *weathermap.Generator {
	if d == nil {
		return weathermap.NewGenerator()
	}

	connect := weathermap.ZabbixConnector(d.log)
	return weathermap.NewGenerator(
		weathermap.WithLogger(d.log),
		weathermap.WithConnector(func(zbx config.Zabbix) (interfaces.Monitor, error) {
			return connect(d.override(zbx))
		}),
	)
}
