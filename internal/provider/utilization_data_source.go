package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework-validators/int64validator"
	"github.com/hashicorp/terraform-plugin-framework-validators/listvalidator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/ankek/terraform-provider-weathermap/internal/mapping"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &UtilizationDataSource{}

// UtilizationDataSource classifies one traffic rate against a capacity
// the way links are colored on the map.
type UtilizationDataSource struct{}

func NewUtilizationDataSource() datasource.DataSource {
	return &UtilizationDataSource{}
}

// UtilizationDataSourceModel describes the data source data model.
type UtilizationDataSourceModel struct {
	ID       types.String `tfsdk:"id"`
	Rate     types.Int64  `tfsdk:"rate"`
	Capacity types.Int64  `tfsdk:"capacity"`
	Palette  types.List   `tfsdk:"palette"`
	Index    types.Int64  `tfsdk:"index"`
	Percent  types.Int64  `tfsdk:"percent"`
	Label    types.String `tfsdk:"label"`
	Color    types.String `tfsdk:"color"`
}

func (d *UtilizationDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_utilization"
}

func (d *UtilizationDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Classifies a traffic rate into the utilization tier, label and color used on weathermaps.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Data source identifier",
			},
			"rate": schema.Int64Attribute{
				MarkdownDescription: "Traffic rate in bits per second.",
				Required:            true,
				Validators: []validator.Int64{
					int64validator.AtLeast(0),
				},
			},
			"capacity": schema.Int64Attribute{
				MarkdownDescription: "Link capacity in kilobits per second.",
				Required:            true,
				Validators: []validator.Int64{
					int64validator.AtLeast(1),
				},
			},
			"palette": schema.ListAttribute{
				MarkdownDescription: fmt.Sprintf("%d colors, lowest tier first. The stock palette is used when unset.", mapping.PaletteSize),
				ElementType:         types.StringType,
				Optional:            true,
				Validators: []validator.List{
					listvalidator.SizeBetween(mapping.PaletteSize, mapping.PaletteSize),
					listvalidator.ValueStringsAre(stringvalidator.LengthAtLeast(1)),
				},
			},
			"index": schema.Int64Attribute{
				MarkdownDescription: "Palette tier, 0 to 8.",
				Computed:            true,
			},
			"percent": schema.Int64Attribute{
				MarkdownDescription: "Utilization in percent, rounded up.",
				Computed:            true,
			},
			"label": schema.StringAttribute{
				MarkdownDescription: "Rate label as drawn on the map, e.g. `123.35M`.",
				Computed:            true,
			},
			"color": schema.StringAttribute{
				MarkdownDescription: "Tier color as `#RRGGBB`.",
				Computed:            true,
			},
		},
	}
}

func (d *UtilizationDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data UtilizationDataSourceModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	palette := mapping.DefaultPalette()
	if !data.Palette.IsNull() {
		var colors []string
		resp.Diagnostics.Append(data.Palette.ElementsAs(ctx, &colors, false)...)
		if resp.Diagnostics.HasError() {
			return
		}
		p, err := mapping.ParsePalette(colors)
		if err != nil {
			resp.Diagnostics.AddAttributeError(path.Root("palette"), "Invalid palette", err.Error())
			return
		}
		palette = p
	}

	u := mapping.Classify(data.Rate.ValueInt64(), data.Capacity.ValueInt64())

	data.ID = types.StringValue(fmt.Sprintf("%d/%d", data.Rate.ValueInt64(), data.Capacity.ValueInt64()))
	data.Index = types.Int64Value(int64(u.Index))
	data.Percent = types.Int64Value(int64(u.Percent))
	data.Label = types.StringValue(u.Label)
	data.Color = types.StringValue(mapping.HexColor(palette.Color(u.Index)))

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}
