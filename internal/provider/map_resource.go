package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/booldefault"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/ankek/terraform-provider-weathermap/internal/weathermap"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ resource.Resource = &MapResource{}
var _ resource.ResourceWithConfigure = &MapResource{}
var _ resource.ResourceWithImportState = &MapResource{}

var pngPattern = regexp.MustCompile(`\.png$`)

func NewMapResource() resource.Resource {
	return &MapResource{}
}

// MapResource renders a map config into a PNG on every create and update.
type MapResource struct {
	data *providerData
}

// MapResourceModel describes the resource data model.
type MapResourceModel struct {
	ID           types.String `tfsdk:"id"`
	ConfigPath   types.String `tfsdk:"config_path"`
	OutputPath   types.String `tfsdk:"output_path"`
	IconDir      types.String `tfsdk:"icon_dir"`
	FontPath     types.String `tfsdk:"font_path"`
	Upload       types.Bool   `tfsdk:"upload"`
	NodeCount    types.Int64  `tfsdk:"node_count"`
	LinkCount    types.Int64  `tfsdk:"link_count"`
	SkippedLinks types.Int64  `tfsdk:"skipped_links"`
	SHA256       types.String `tfsdk:"sha256"`
	ImageID      types.String `tfsdk:"image_id"`
}

func (r *MapResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_map"
}

func (r *MapResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Renders a weathermap from a YAML or HCL map config, polling Zabbix for the traffic of every monitored link.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Resource identifier, the output path.",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"config_path": schema.StringAttribute{
				MarkdownDescription: "Path to the map config (`.yaml`, `.yml`, `.hcl` or legacy `.ini`).",
				Required:            true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
			},
			"output_path": schema.StringAttribute{
				MarkdownDescription: "Path where the PNG image will be saved.",
				Required:            true,
				Validators: []validator.String{
					stringvalidator.RegexMatches(pngPattern, "must end in .png"),
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"icon_dir": schema.StringAttribute{
				MarkdownDescription: "Directory searched for node icons before the icon reference is used as a path.",
				Optional:            true,
			},
			"font_path": schema.StringAttribute{
				MarkdownDescription: "TrueType font for labels. Go Mono is used when unset.",
				Optional:            true,
			},
			"upload": schema.BoolAttribute{
				MarkdownDescription: "Upload the image to Zabbix under the map name. Default is false.",
				Optional:            true,
				Computed:            true,
				Default:             booldefault.StaticBool(false),
			},
			"node_count": schema.Int64Attribute{
				MarkdownDescription: "Number of nodes drawn.",
				Computed:            true,
			},
			"link_count": schema.Int64Attribute{
				MarkdownDescription: "Number of links drawn.",
				Computed:            true,
			},
			"skipped_links": schema.Int64Attribute{
				MarkdownDescription: "Number of links left out because they have no host or items.",
				Computed:            true,
			},
			"sha256": schema.StringAttribute{
				MarkdownDescription: "SHA-256 of the rendered PNG.",
				Computed:            true,
			},
			"image_id": schema.StringAttribute{
				MarkdownDescription: "Zabbix image id when `upload` is set.",
				Computed:            true,
			},
		},
	}
}

func (r *MapResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}

	data, ok := req.ProviderData.(*providerData)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Resource Configure Type",
			fmt.Sprintf("Expected *providerData, got: %T. Please report this issue to the provider developers.", req.ProviderData),
		)
		return
	}
	r.data = data
}

func (r *MapResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data MapResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(r.render(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *MapResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data MapResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	// Check if output file still exists
	if _, err := os.Stat(data.OutputPath.ValueString()); errors.Is(err, fs.ErrNotExist) {
		resp.State.RemoveResource(ctx)
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *MapResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var data MapResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(r.render(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *MapResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data MapResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if err := os.Remove(data.OutputPath.ValueString()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		resp.Diagnostics.AddError("Failed to remove map image", err.Error())
	}
}

func (r *MapResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	resource.ImportStatePassthroughID(ctx, path.Root("id"), req, resp)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("output_path"), req.ID)...)
}

// render generates the image described by data and fills the computed
// attributes.
func (r *MapResource) render(ctx context.Context, data *MapResourceModel) diag.Diagnostics {
	var diags diag.Diagnostics

	result, err := r.data.generator().Generate(ctx, weathermap.Request{
		ConfigPath: data.ConfigPath.ValueString(),
		OutputPath: data.OutputPath.ValueString(),
		IconDir:    data.IconDir.ValueString(),
		FontPath:   data.FontPath.ValueString(),
		Upload:     data.Upload.ValueBool(),
	})
	if err != nil {
		diags.AddError("Failed to generate weathermap", err.Error())
		return diags
	}

	data.ID = types.StringValue(result.OutputPath)
	data.NodeCount = types.Int64Value(result.NodeCount)
	data.LinkCount = types.Int64Value(result.LinkCount)
	data.SkippedLinks = types.Int64Value(result.SkippedLinks)
	data.SHA256 = types.StringValue(result.SHA256)
	data.ImageID = types.StringValue(result.ImageID)
	return diags
}
