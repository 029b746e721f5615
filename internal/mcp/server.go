package mcp

import (
	"context"
	"errors"
	"fmt"

	"insightgen/internal/aiops"
	"insightgen/internal/generator"
	"insightgen/internal/inventory"
	"insightgen/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators the tools act through.
type Deps struct {
	Client       aiops.Client
	Runner       *service.Runner
	Pool         *inventory.PoolLoader
	TargetDomain string
}

// GenerateInput selects the run config for generate_insights.
type GenerateInput struct {
	ConfigPath string `json:"config_path" jsonschema:"path to the run config JSON; templates are read from forecast/, current/ and past/ next to it"`
}

// ClearInput guards clear_insights.
type ClearInput struct {
	Confirm bool `json:"confirm,omitempty" jsonschema:"must be true to delete every insight on the platform"`
}

// ClearOutput reports the result of clear_insights.
type ClearOutput struct {
	Cleared  bool   `json:"cleared"`
	Endpoint string `json:"endpoint"`
	DryRun   bool   `json:"dry_run"`
}

// MigrateInput names the domain to copy insights from.
type MigrateInput struct {
	SourceDomain string `json:"source_domain" jsonschema:"domain to read insights from, e.g. tenant-a.example.com"`
}

// DevicesInput takes no arguments.
type DevicesInput struct{}

// DevicesOutput lists the shared device pool.
type DevicesOutput struct {
	Count     int                `json:"count"`
	Selection string             `json:"selection"`
	Devices   []inventory.Device `json:"devices"`
}

// ErrNotConfirmed is returned by clear_insights without confirm=true.
var ErrNotConfirmed = errors.New("clear_insights deletes ALL insights; call again with confirm=true")

// NewServer registers the insight tools on a new MCP server.
func NewServer(deps Deps, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "insightgen", Version: version}, nil)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "generate_insights",
			Description: "Generate synthetic AI-Ops insights from templates and post them to the platform. Returns per-window posted/failed counts.",
		},
		func(ctx context.Context, _ *mcp.CallToolRequest, in GenerateInput) (*mcp.CallToolResult, generator.Summary, error) {
			return handleGenerate(ctx, deps, in)
		},
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "clear_insights",
			Description: "Delete every insight behind the configured endpoint. Requires confirm=true.",
		},
		func(ctx context.Context, _ *mcp.CallToolRequest, in ClearInput) (*mcp.CallToolResult, ClearOutput, error) {
			return handleClear(ctx, deps, in)
		},
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "migrate_insights",
			Description: "Copy up to 300 insights from a source domain to the configured target domain (AIOPS_DOMAIN).",
		},
		func(ctx context.Context, _ *mcp.CallToolRequest, in MigrateInput) (*mcp.CallToolResult, service.MigrationResult, error) {
			return handleMigrate(ctx, deps, in)
		},
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_devices",
			Description: "List the devices generated insights can name as impacted resources.",
		},
		func(ctx context.Context, _ *mcp.CallToolRequest, _ DevicesInput) (*mcp.CallToolResult, DevicesOutput, error) {
			return handleDevices(ctx, deps)
		},
	)

	return server
}

// Serve runs the server over stdio until the client disconnects or ctx ends.
func Serve(ctx context.Context, server *mcp.Server) error {
	log.Info().Msg("Serving MCP tools over stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}

func handleGenerate(ctx context.Context, deps Deps, in GenerateInput) (*mcp.CallToolResult, generator.Summary, error) {
	if in.ConfigPath == "" {
		return nil, generator.Summary{}, fmt.Errorf("config_path is required")
	}
	log.Info().Str("tool", "generate_insights").Str("config", in.ConfigPath).Msg("Tool called")
	sum, err := deps.Runner.Generate(ctx, in.ConfigPath, nil)
	if err != nil {
		return nil, generator.Summary{}, err
	}
	return nil, sum, nil
}

func handleClear(ctx context.Context, deps Deps, in ClearInput) (*mcp.CallToolResult, ClearOutput, error) {
	if !in.Confirm {
		return nil, ClearOutput{}, ErrNotConfirmed
	}
	log.Info().Str("tool", "clear_insights").Msg("Tool called")
	out := ClearOutput{Endpoint: deps.Client.Endpoint(), DryRun: deps.Client.DryRun()}
	out.Cleared = service.NewClearer(deps.Client).Clear(ctx)
	if !out.Cleared {
		return nil, out, fmt.Errorf("failed to clear insights at %s", out.Endpoint)
	}
	return nil, out, nil
}

func handleMigrate(ctx context.Context, deps Deps, in MigrateInput) (*mcp.CallToolResult, service.MigrationResult, error) {
	log.Info().Str("tool", "migrate_insights").Str("source", in.SourceDomain).Msg("Tool called")
	res, err := service.NewMigrator(deps.Client, deps.TargetDomain).Migrate(ctx, in.SourceDomain)
	if err != nil {
		return nil, res, err
	}
	if !res.Success() {
		return nil, res, fmt.Errorf("migration finished with %d of %d insights failed", res.Failed, res.Fetched)
	}
	return nil, res, nil
}

func handleDevices(ctx context.Context, deps Deps) (*mcp.CallToolResult, DevicesOutput, error) {
	dir, err := deps.Pool.Directory(ctx, generator.NewRand(0))
	if err != nil {
		return nil, DevicesOutput{}, err
	}
	return nil, DevicesOutput{
		Count:     dir.Count(),
		Selection: string(dir.Policy()),
		Devices:   dir.Devices(),
	}, nil
}
