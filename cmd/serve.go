package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/emotion-timeline/orchestrator"
	"github.com/maastricht-university/emotion-timeline/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /analyze over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.addr, or :$PORT)")
	bind(serveCmd, "server.addr", "addr")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := conf.Server.Addr
	if port := os.Getenv("PORT"); port != "" && !cmd.Flags().Changed("addr") {
		addr = ":" + port
	}

	p := orchestrator.NewPipeline(conf, log)
	app := server.New(p, conf.Server, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}
