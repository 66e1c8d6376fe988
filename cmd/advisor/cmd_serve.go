package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cprima/methodology-advisor/internal/engine"
	"github.com/cprima/methodology-advisor/internal/mcp/service"
	"github.com/cprima/methodology-advisor/internal/platform/config"
	"github.com/cprima/methodology-advisor/internal/platform/otel"
)

type serveConfig struct {
	Source    string `env:"METHODOLOGY_ADVISOR_SOURCE" envDefault:"methodology.json"`
	Transport string `env:"METHODOLOGY_ADVISOR_TRANSPORT" envDefault:"stdio"`
	HTTPAddr  string `env:"METHODOLOGY_ADVISOR_HTTP_ADDR" envDefault:"localhost:8081"`
}

var serveFlags struct {
	source    string
	transport string
	httpAddr  string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Compile the methodology document and serve it over MCP",
	Long: `Runs the full ingest, validate, and compile pipeline and then serves the
evaluate_gate, migrate_state, diff_catalogs, and suggest_advisory tools
plus the catalog resources. Any startup-tier failure aborts before the
transport is opened. Flags override environment variables.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVarP(&serveFlags.source, "source", "s", "", "Methodology document path")
	f.StringVarP(&serveFlags.transport, "transport", "t", "", "MCP transport: stdio or http")
	f.StringVar(&serveFlags.httpAddr, "http-addr", "", "Bind address for the http transport")
}

func runServe(cmd *cobra.Command, _ []string) error {
	var cfg serveConfig
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}
	if serveFlags.source != "" {
		cfg.Source = serveFlags.source
	}
	if serveFlags.transport != "" {
		cfg.Transport = serveFlags.transport
	}
	if serveFlags.httpAddr != "" {
		cfg.HTTPAddr = serveFlags.httpAddr
	}

	ctx := cmd.Context()

	shutdown, err := otel.Setup(ctx, "methodology-advisor")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	eng, err := engine.New(ctx, cfg.Source)
	if err != nil {
		return err
	}

	// SIGHUP swaps in a freshly compiled catalog; in-flight requests keep
	// the artifact they started with.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for range hup {
			if err := eng.Reload(ctx); err != nil {
				log.Printf("reload rejected, still serving the old catalog: %v", err)
			}
		}
	}()

	return service.Run(ctx, service.Config{
		Transport: service.TransportKind(cfg.Transport),
		HTTPAddr:  cfg.HTTPAddr,
	}, eng)
}
