package mcp

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/ka2n/firms/api"
	"github.com/ka2n/firms/api/catalog"
	"github.com/ka2n/firms/api/firms"
	"github.com/ka2n/firms/api/source"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"github.com/morikuni/failure/v2"
)

var validate = validator.New()

func InitTools(session *api.Session) []server.ServerTool {
	tools := []server.ServerTool{}

	tools = append(tools, newServerTool(FireSummary(session)))
	tools = append(tools, newServerTool(ListCountries(session)))
	tools = append(tools, newServerTool(DataAvailability(session)))
	tools = append(tools, newServerTool(MapKeyStatus(session)))

	return tools
}

// decodeArgs decodes tool arguments into out and validates it
func decodeArgs(ctx context.Context, in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return err
	}
	return validate.StructCtx(ctx, out)
}

// toolError reports err as a tool level error with its user facing message
func toolError(err error) *mcp.CallToolResult {
	if msg := failure.MessageOf(err); msg != "" {
		return mcp.NewToolResultError(msg.String())
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func FireSummary(session *api.Session) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"fire_summary",
			mcp.WithDescription("Fetch NASA FIRMS fire detections for countries and summarize them by date and by country"),
			mcp.WithString("mode", mcp.Description("online (FIRMS API) or offline (local MODIS archive)"), mcp.Enum("online", "offline")),
			mcp.WithArray("countries", mcp.Description("Country codes (CHN) or names (China). Defaults to China and the United States"),
				mcp.Items(map[string]any{"type": "string"})),
			mcp.WithBoolean("world", mcp.Description("Whole world instead of countries")),
			mcp.WithString("source", mcp.Description("Online data source, e.g. MODIS_SP or VIIRS_SNPP_NRT")),
			mcp.WithString("date", mcp.Description("Online anchor date YYYY-MM-DD, defaults to the newest available")),
			mcp.WithNumber("days", mcp.Description("Online day range, 1 to 10")),
			mcp.WithNumber("begin_year", mcp.Description("Offline first year")),
			mcp.WithNumber("end_year", mcp.Description("Offline last year")),
			mcp.WithBoolean("geocode", mcp.Description("Derive countries from coordinates when records have none")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				Mode      string   `mapstructure:"mode" validate:"omitempty,oneof=online offline"`
				Countries []string `mapstructure:"countries" validate:"omitempty,dive,required"`
				World     bool     `mapstructure:"world"`
				Source    string   `mapstructure:"source"`
				Date      string   `mapstructure:"date" validate:"omitempty,datetime=2006-01-02"`
				Days      int      `mapstructure:"days" validate:"omitempty,min=1,max=10"`
				BeginYear int      `mapstructure:"begin_year" validate:"omitempty,min=2000"`
				EndYear   int      `mapstructure:"end_year" validate:"omitempty,min=2000"`
				Geocode   bool     `mapstructure:"geocode"`
			}
			var args ToolArguments
			if err := decodeArgs(ctx, req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			sel, err := session.Selection(ctx, api.UserInput{
				Offline:   args.Mode == "offline",
				World:     args.World,
				Countries: args.Countries,
				Source:    args.Source,
				Date:      args.Date,
				DayRange:  args.Days,
				BeginYear: args.BeginYear,
				EndYear:   args.EndYear,
				Geocode:   args.Geocode,
			})
			if err != nil {
				return toolError(err), nil
			}
			result, err := session.Run(ctx, sel)
			if err != nil {
				return toolError(err), nil
			}
			return jsonResult(result.Summary())
		}
}

func ListCountries(session *api.Session) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"list_countries",
			mcp.WithDescription("List the FIRMS country codes and names, sorted by name"),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			cat, err := session.Catalog(ctx)
			if err != nil {
				return toolError(err), nil
			}
			return jsonResult(struct {
				Countries []catalog.Country `json:"countries"`
			}{cat.Countries()})
		}
}

func DataAvailability(session *api.Session) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"data_availability",
			mcp.WithDescription("Show the date range the FIRMS API has for a data source"),
			mcp.WithString("source", mcp.Description("Data source, defaults to MODIS_SP")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				Source string `mapstructure:"source"`
			}
			var args ToolArguments
			if err := decodeArgs(ctx, req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			src := source.Default
			if args.Source != "" {
				s, err := source.Parse(args.Source)
				if err != nil {
					return toolError(err), nil
				}
				src = s
			}

			a, err := session.Availability(ctx, "", src)
			if err != nil {
				return toolError(err), nil
			}
			return jsonResult(map[string]string{
				"data_id":  a.DataID,
				"min_date": a.MinDate.Format(firms.DateLayout),
				"max_date": a.MaxDate.Format(firms.DateLayout),
			})
		}
}

func MapKeyStatus(session *api.Session) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"mapkey_status",
			mcp.WithDescription("Show the transaction usage of the configured FIRMS MAP_KEY"),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			status, err := session.MapKeyStatus(ctx, "")
			if err != nil {
				return toolError(err), nil
			}
			return jsonResult(status)
		}
}
