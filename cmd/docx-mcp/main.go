package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/docx-tools-mcp/internal/config"
	"github.com/ironsheep/docx-tools-mcp/internal/logging"
	"github.com/ironsheep/docx-tools-mcp/internal/ocr"
	"github.com/ironsheep/docx-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:   "docx-mcp",
		Short: "MCP server for creating and editing Word documents",
		Long: `docx-mcp serves tools for creating, reading and editing .docx files over
the Model Context Protocol.

With --transport stdio (the default) it talks JSON-RPC on stdin/stdout; logs
go to stderr. With --transport sse it serves HTTP with server-sent events.

Settings can also come from DOCX_MCP_TRANSPORT, DOCX_MCP_HOST, DOCX_MCP_PORT,
DOCX_MCP_LOG_LEVEL and DOCX_MCP_LOG_FILE, or a .env file. Flags win.`,
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
		cfg = config.Default()
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Transport, "transport", cfg.Transport, "transport to serve: stdio or sse")
	flags.StringVar(&cfg.Host, "host", cfg.Host, "listen host for the sse transport")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "listen port for the sse transport")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also write JSON logs to this rotated file")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting docx-tools-mcp",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.String("transport", cfg.Transport),
		zap.Bool("ocr", ocr.Available()))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.WithLogger(log), server.WithVersion(Version))

	switch cfg.Transport {
	case config.TransportSSE:
		err = srv.ServeSSE(ctx, cfg.Addr())
	default:
		err = srv.Run(ctx)
	}
	if err != nil && ctx.Err() == nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
