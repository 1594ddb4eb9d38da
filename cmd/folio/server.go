package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/folio/internal/answer"
	"github.com/kalambet/folio/internal/api"
	"github.com/kalambet/folio/internal/chat"
	"github.com/kalambet/folio/internal/config"
	"github.com/kalambet/folio/internal/proxy"
	"github.com/kalambet/folio/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the folio HTTP server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")
		return runServer(withMCP)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show folio server and OpenRouter status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "also serve MCP over stdio")
}

func setupLogging(level string) {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// proxyTimeout parses the configured OpenRouter timeout, falling back to the
// default when the value is missing or invalid.
func proxyTimeout(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("invalid proxy timeout, using default", "value", value, "default", proxy.DefaultTimeout)
		return proxy.DefaultTimeout
	}
	return d
}

func newProxyClient(cfg config.Config) *proxy.Client {
	c := proxy.NewClientWithBaseURL(cfg.Proxy.OpenRouterAPIKey, cfg.Proxy.BaseURL)
	c.SetTimeout(proxyTimeout(cfg.Proxy.Timeout))
	return c
}

// newHTTPServer builds the API server. Request contexts are not derived from
// the signal context; in-flight requests are drained by Shutdown.
func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func runServer(withMCP bool) error {
	fmt.Fprintf(stderr, "folio version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing storage", "error", err)
		}
	}()

	proxyClient := newProxyClient(cfg)
	if !proxyClient.HasAPIKey() {
		slog.Warn("OpenRouter API key not configured; questions will be answered with a notice",
			"env", "FOLIO_OPENROUTER_API_KEY")
	}
	svc := chat.NewService(store, answer.NewGenerator(proxyClient, cfg.Proxy.Model))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := newHTTPServer(addr, api.NewHandler(api.Deps{
		Chat:        svc,
		Portfolio:   store,
		Env:         cfg.App.Env,
		CORSOrigins: cfg.Server.CORSOriginList(),
	}))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Fprintf(stderr, "folio listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if withMCP {
		mcpSrv := api.NewMCPServer(api.MCPDeps{Chat: svc, Portfolio: store, Version: version})
		stdioSrv := server.NewStdioServer(mcpSrv)
		g.Go(func() error {
			slog.Info("MCP server started (stdio transport)")
			if err := stdioSrv.Listen(gCtx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("MCP stdio server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		fmt.Fprintln(stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type probeResult struct {
	label  string
	format string
	args   []any
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	results := make([]probeResult, 2)

	var g errgroup.Group
	g.Go(func() error {
		results[0] = probeServer(ctx, &http.Client{Timeout: 2 * time.Second}, serverURL)
		return nil
	})
	g.Go(func() error {
		results[1] = probeOpenRouter(ctx, newProxyClient(cfg))
		return nil
	})
	g.Wait()

	for _, r := range results {
		printStatus(r.label, r.format, r.args...)
	}
	printStatus("Model", "%s", cfg.Proxy.Model)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func probeServer(ctx context.Context, client *http.Client, serverURL string) probeResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+"/health", nil)
	if err != nil {
		return probeResult{"Server", "error (%v)", []any{err}}
	}
	resp, err := client.Do(req)
	if err != nil {
		return probeResult{"Server", "stopped", nil}
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return probeResult{"Server", "error (HTTP %d)", []any{resp.StatusCode}}
	}
	return probeResult{"Server", "running at %s", []any{serverURL}}
}

func probeOpenRouter(ctx context.Context, c *proxy.Client) probeResult {
	if !c.HasAPIKey() {
		return probeResult{"OpenRouter", "API key not configured", nil}
	}
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	models, err := c.ListModels(probeCtx)
	if err != nil {
		return probeResult{"OpenRouter", "unreachable (%v)", []any{err}}
	}
	return probeResult{"OpenRouter", "reachable, %d models", []any{len(models)}}
}
