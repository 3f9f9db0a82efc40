package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	// Ping tool - test/placeholder
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Test tool - responds with pong or echoes input",
	}, NewPingHandler(deps))

	// Generate tool - conversational program generation through the oracle
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_program",
		Description: "Generate or extend an NC program from a plain-language machining request",
	}, NewGenerateProgramHandler(deps))

	// Emit tool - deterministic emission from an explicit setup
	mcp.AddTool(server, &mcp.Tool{
		Name:        "emit_program",
		Description: "Emit deterministic NC program text from a machining setup, no oracle involved",
	}, NewEmitProgramHandler(deps))

	// Simulate tool - toolpath statistics for a setup or stored program
	mcp.AddTool(server, &mcp.Tool{
		Name:        "simulate_toolpath",
		Description: "Build the toolpath for a setup or stored program and report per-operation path statistics",
	}, NewSimulateToolpathHandler(deps))

	// List tool - stored program listing and search
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_programs",
		Description: "List stored programs, optionally filtered by a search query",
	}, NewListProgramsHandler(deps))

	// Get tool - retrieve one stored program by ID, slug, or name
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_program",
		Description: "Retrieve a stored program's metadata, NC text, and optionally its setup",
	}, NewGetProgramHandler(deps))

	// Delete tool - remove stored programs
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_program",
		Description: "Delete stored programs by ID, slug, or name",
	}, NewDeleteProgramHandler(deps))

	// Stats tool - store aggregates plus runtime metrics
	mcp.AddTool(server, &mcp.Tool{
		Name:        "machining_stats",
		Description: "Show stored program counts and server runtime statistics",
	}, NewMachiningStatsHandler(deps))
}
