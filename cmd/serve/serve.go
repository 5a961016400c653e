package serve

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/paularlott/cli"

	"github.com/equipctl/equipctl/internal/client"
	"github.com/equipctl/equipctl/internal/config"
	"github.com/equipctl/equipctl/internal/log"
	"github.com/equipctl/equipctl/internal/mcp"
)

// Command returns the MCP server command
func Command() *cli.Command {
	return &cli.Command{
		Name:        "mcp",
		Usage:       "Start the MCP server",
		Description: "Expose the equipment collection as MCP tools over HTTP",
		Flags: append(config.GetFlags(),
			&cli.StringFlag{
				Name:         "listen",
				Usage:        "Address to listen on",
				DefaultValue: config.DefaultMCPListenAddr,
				EnvVars:      []string{"EQUIPCTL_MCP_LISTEN_ADDR"},
			},
			&cli.StringFlag{
				Name:    "auth-token",
				Usage:   "Bearer token required on MCP requests (empty disables auth)",
				EnvVars: []string{"EQUIPCTL_MCP_AUTH_TOKEN"},
			},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}
			if addr := cmd.GetString("listen"); addr != "" {
				cfg.MCPListenAddr = addr
			}
			if token := cmd.GetString("auth-token"); token != "" {
				cfg.MCPAuthToken = token
			}

			c := client.New(cfg.BaseURL, cfg.RequestTimeout)
			mcpServer := mcp.NewServer(c, cfg.MCPAuthToken)

			mux := http.NewServeMux()
			mux.HandleFunc("/mcp", mcpServer.GetHTTPHandler())

			server := &http.Server{
				Addr:    cfg.MCPListenAddr,
				Handler: mux,
			}

			// Handle shutdown gracefully
			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
				<-sigChan
				log.Info("Shutting down MCP server...")
				server.Close()
			}()

			log.Info("Starting MCP server", "addr", cfg.MCPListenAddr, "endpoint", cfg.BaseURL)
			log.Info("MCP available", "url", "http://localhost"+cfg.MCPListenAddr+"/mcp")
			if cfg.IsMCPAuthEnabled() {
				log.Info("MCP authentication enabled")
			}
			mcpServer.LogStartup()

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("MCP server error", "error", err)
				return err
			}

			log.Info("MCP server stopped")
			return nil
		},
	}
}
