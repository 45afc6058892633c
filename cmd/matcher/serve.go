package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-matcher/internal/server"
	"github.com/jonathan/candidate-matcher/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes endpoints for running matches and reading match history.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := wire(ctx, cfg, log, wireOptions{persist: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	serverCfg := cfg.Server
	if servePort > 0 {
		serverCfg.Port = servePort
	}

	srv := server.New(server.Config{
		Addr:            serverCfg.Addr(),
		AllowedOrigins:  serverCfg.AllowedOrigins,
		RateLimit:       ratelimit.NewConfig(serverCfg.RateLimit, serverCfg.RateBurst),
		ShutdownTimeout: serverCfg.ShutdownTimeout,
	}, server.Deps{
		Matcher: rt.engine,
		Runs:    rt.db,
		Health:  rt.db,
		Logger:  log,
	})

	return srv.Start(ctx)
}
