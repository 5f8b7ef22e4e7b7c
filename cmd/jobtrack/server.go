package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/jobtrack/internal/api"
	"github.com/kalambet/jobtrack/internal/config"
	"github.com/kalambet/jobtrack/internal/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tracker API on the loopback interface (foreground)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runServer)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdin/stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runMCP)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show record counts and server status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(showStatus)
	},
}

func serverAddr(c config.Config) string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// serverRunning probes /health on the configured address.
func serverRunning(addr string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func runServer(a *app) error {
	fmt.Fprintf(stderr, "jobtrack version %s\n", version)

	addr := serverAddr(cfg)
	if serverRunning(addr) {
		printWarning("jobtrack is already running on %s", addr)
		return fmt.Errorf("server already running on %s", addr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr: addr,
		Handler: api.NewAppHandler(api.AppDeps{
			State:         a.state,
			Token:         cfg.API.Token,
			MaxImportSize: int64(cfg.Import.MaxFileSize),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		printSuccess("jobtrack listening on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mcpSrv := api.NewMCPServer(api.MCPDeps{State: a.state, Version: version})
	stdioSrv := server.NewStdioServer(mcpSrv)

	slog.Info("MCP server started (stdio transport)")
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

func showStatus(a *app) error {
	counts := a.state.Counts()
	for _, k := range tracker.Kinds {
		printStatus(k.Title(), "%d", counts[k])
	}

	if a.store != nil {
		entries, err := a.store.Entries()
		if err != nil {
			printWarning("reading storage entries: %v", err)
		}
		for _, e := range entries {
			printStatus("Updated "+e.Key, "%s (%d bytes)", e.UpdatedAt.Local().Format(time.DateTime), e.Size)
		}
		printStatus("Data dir", "%s", cfg.Storage.DataDir)
	} else {
		printStatus("Storage", "in-memory")
	}

	addr := serverAddr(cfg)
	if serverRunning(addr) {
		printStatus("Server", "running on %s", addr)
	} else {
		printStatus("Server", "stopped")
	}
	return nil
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.ValidKeys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the API bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), cfg.API.Token)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configTokenCmd)
}
