//go:build integration

package tools_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbuchner/millwright/internal/profile"
	"github.com/mbuchner/millwright/internal/service"
	"github.com/mbuchner/millwright/internal/tools"
)

func TestServerTools(t *testing.T) {
	logger := testLogger()

	// Create server
	impl := &mcp.Implementation{
		Name:    "test-millwright",
		Version: "0.0.1-test",
	}
	server := mcp.NewServer(impl, nil)

	// Register tools without a database; the oracle is faked so
	// generate_program works over the wire too.
	deps := &tools.Dependencies{
		Generate: service.NewGenerateService(&fakeOracle{setup: testSetup()}, nil, profile.Default(), nil),
		Logger:   logger,
	}
	tools.RegisterAll(server, deps)

	// Create in-memory transports
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Run server in background
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run(ctx, serverTransport)
	}()

	// Give server time to start
	time.Sleep(50 * time.Millisecond)

	// Create client and connect
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect successfully")
	defer session.Close()

	t.Run("tools/list returns the full toolset", func(t *testing.T) {
		result, err := session.ListTools(ctx, nil)
		require.NoError(t, err)
		require.Len(t, result.Tools, 8)

		var pingTool *mcp.Tool
		for _, tool := range result.Tools {
			if tool.Name == "ping" {
				pingTool = tool
				break
			}
		}
		require.NotNil(t, pingTool, "ping tool should exist")
		assert.Equal(t, "Test tool - responds with pong or echoes input", pingTool.Description)
	})

	t.Run("ping returns pong", func(t *testing.T) {
		params := &mcp.CallToolParams{
			Name:      "ping",
			Arguments: map[string]any{},
		}
		result, err := session.CallTool(ctx, params)
		require.NoError(t, err)
		require.Len(t, result.Content, 1)

		textContent, ok := result.Content[0].(*mcp.TextContent)
		require.True(t, ok, "content should be TextContent")
		assert.Equal(t, "pong", textContent.Text)
		assert.False(t, result.IsError)
	})

	t.Run("ping echoes input", func(t *testing.T) {
		params := &mcp.CallToolParams{
			Name:      "ping",
			Arguments: map[string]any{"echo": "hello world"},
		}
		result, err := session.CallTool(ctx, params)
		require.NoError(t, err)
		require.Len(t, result.Content, 1)

		textContent, ok := result.Content[0].(*mcp.TextContent)
		require.True(t, ok, "content should be TextContent")
		assert.Equal(t, "hello world", textContent.Text)
		assert.False(t, result.IsError)
	})

	t.Run("emit_program over the wire", func(t *testing.T) {
		params := &mcp.CallToolParams{
			Name:      "emit_program",
			Arguments: map[string]any{"setup": setupArg(t, testSetup())},
		}
		result, err := session.CallTool(ctx, params)
		require.NoError(t, err)
		require.False(t, result.IsError)
		require.Len(t, result.Content, 1)

		textContent, ok := result.Content[0].(*mcp.TextContent)
		require.True(t, ok, "content should be TextContent")
		assert.Contains(t, textContent.Text, "POCKET4")
	})

	t.Run("generate_program over the wire", func(t *testing.T) {
		params := &mcp.CallToolParams{
			Name:      "generate_program",
			Arguments: map[string]any{"request": "pocket the plate center"},
		}
		result, err := session.CallTool(ctx, params)
		require.NoError(t, err)
		require.False(t, result.IsError)
		require.Len(t, result.Content, 1)

		textContent, ok := result.Content[0].(*mcp.TextContent)
		require.True(t, ok, "content should be TextContent")

		var out tools.GenerateProgramResult
		require.NoError(t, json.Unmarshal([]byte(textContent.Text), &out))
		assert.Len(t, out.SessionID, 8)
		assert.Equal(t, 1, out.Operations)
	})

	// Cleanup
	cancel()

	select {
	case err := <-serverErr:
		if err != nil {
			t.Logf("server stopped with: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("server did not stop within timeout")
	}
}
