// Package provider exposes weathermap rendering to Terraform: a resource
// that renders a map config into a PNG and a data source that classifies
// a single traffic rate.
package provider

import (
	"context"
	"log/slog"
	"os"
	"regexp"

	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/ankek/terraform-provider-weathermap/internal/config"
)

// Ensure WeathermapProvider satisfies various provider interfaces.
var _ provider.Provider = &WeathermapProvider{}

var urlPattern = regexp.MustCompile(`^https?://`)

// WeathermapProvider defines the provider implementation.
type WeathermapProvider struct {
	// version is set to the provider version on release, "dev" when the
	// provider is built and ran locally, and "test" when running acceptance
	// testing.
	version string
}

// WeathermapProviderModel describes the provider data model.
type WeathermapProviderModel struct {
	ZabbixURL      types.String `tfsdk:"zabbix_url"`
	ZabbixLogin    types.String `tfsdk:"zabbix_login"`
	ZabbixPassword types.String `tfsdk:"zabbix_password"`
}

func (p *WeathermapProvider) Metadata(ctx context.Context, req provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "weathermap"
	resp.Version = p.version
}

func (p *WeathermapProvider) Schema(ctx context.Context, req provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		Description: "The Weathermap provider renders network weathermaps whose link colors follow traffic measured by Zabbix.",
		Attributes: map[string]schema.Attribute{
			"zabbix_url": schema.StringAttribute{
				Description: "Zabbix API endpoint, overriding the zabbix section of map configs. Can also be set via WEATHERMAP_ZABBIX_URL environment variable.",
				Optional:    true,
				Validators: []validator.String{
					stringvalidator.RegexMatches(urlPattern, "must be an http or https URL"),
				},
			},
			"zabbix_login": schema.StringAttribute{
				Description: "Zabbix user name. Can also be set via WEATHERMAP_ZABBIX_LOGIN environment variable.",
				Optional:    true,
			},
			"zabbix_password": schema.StringAttribute{
				Description: "Zabbix password. Can also be set via WEATHERMAP_ZABBIX_PASSWORD environment variable.",
				Optional:    true,
				Sensitive:   true,
			},
		},
	}
}

func (p *WeathermapProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	var data WeathermapProviderModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	for name, v := range map[string]types.String{
		"zabbix_url":      data.ZabbixURL,
		"zabbix_login":    data.ZabbixLogin,
		"zabbix_password": data.ZabbixPassword,
	} {
		if v.IsUnknown() {
			resp.Diagnostics.AddAttributeError(path.Root(name),
				"Unknown Zabbix setting",
				"The provider cannot talk to Zabbix with an unknown "+name+". Set it statically or via the environment.")
		}
	}
	if resp.Diagnostics.HasError() {
		return
	}

	pd := &providerData{
		zabbix: config.Zabbix{
			URL:      stringOrEnv(data.ZabbixURL, config.EnvPrefix+"ZABBIX_URL"),
			Login:    stringOrEnv(data.ZabbixLogin, config.EnvPrefix+"ZABBIX_LOGIN"),
			Password: stringOrEnv(data.ZabbixPassword, config.EnvPrefix+"ZABBIX_PASSWORD"),
		},
		log: slog.Default(),
	}

	// Make credentials available to resources and data sources
	resp.DataSourceData = pd
	resp.ResourceData = pd
}

func (p *WeathermapProvider) Resources(ctx context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		NewMapResource,
	}
}

func (p *WeathermapProvider) DataSources(ctx context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{
		NewUtilizationDataSource,
	}
}

func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &WeathermapProvider{
			version: version,
		}
	}
}

func stringOrEnv(v types.String, key string) string {
	if !v.IsNull() && v.ValueString() != "" {
		return v.ValueString()
	}
	return os.Getenv(key)
}
