package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so a voice or chat agent can
call the order, policy and product lookups.

The index is loaded once at startup. If it cannot be loaded the server
still starts and every lookup answers that the knowledge base is offline.

By default the server communicates over stdio using JSON-RPC. Use --port
to serve streamable HTTP instead.

Examples:
  # Stdio mode (default)
  shopdesk mcp serve

  # HTTP mode
  shopdesk mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	retrieval := getRetrievalService(cmd.Context(), settings)
	tools, err := getToolRegistry(cmd.Context(), settings)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Tools:     tools,
		Retrieval: retrieval,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s (index %s)\n", addr, retrieval.State())
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
