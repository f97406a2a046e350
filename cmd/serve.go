package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/linebot-module/internal/api"
	"github.com/ziadkadry99/linebot-module/internal/line"
	"github.com/ziadkadry99/linebot-module/internal/metrics"
	"github.com/ziadkadry99/linebot-module/internal/router"
	"github.com/ziadkadry99/linebot-module/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long: `Starts the HTTP server that receives LINE webhook events on
/api/v1/webhook and serves the REST endpoints, /health and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		for _, w := range cfg.Warnings() {
			logger.Warn(w)
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		h, err := newHandler(cfg)
		if err != nil {
			return err
		}

		client := newClient(cfg, logger, m)
		a := api.New(api.Options{
			ChannelSecret: cfg.LineChannelSecret,
			Version:       Version,
			Gateway:       client,
			Converter:     line.NewConverter(logger.Named("converter")),
			Router:        router.New(client, logger.Named("router"), m),
			Handler:       h,
			Logger:        logger.Named("api"),
			Metrics:       m,
		})

		srv := server.New(server.Config{
			Addr:    cfg.Addr(),
			Version: Version,
		}, a, logger.Named("server"), reg)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdownErr := make(chan error, 1)
		go func() {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			shutdownErr <- srv.Shutdown(sctx)
		}()

		logger.Info("starting linebot",
			zap.String("version", Version),
			zap.String("addr", cfg.Addr()),
			zap.Bool("debug", cfg.Debug),
			zap.String("handler", string(cfg.Handler)),
		)
		if cfg.NgrokURL != "" {
			logger.Info("public webhook url", zap.String("url", cfg.NgrokURL+server.APIPrefix+"/webhook"))
		}

		if err := srv.Start(); err != nil {
			return err
		}
		if err := <-shutdownErr; err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
