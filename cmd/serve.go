package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agridash/internal/dashboard"
	"github.com/KaramelBytes/agridash/internal/dataset"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}

		cache := dataset.NewCache(datasetOptions(c))
		// load eagerly so a bad data directory shows up in the log at startup;
		// the dashboard keeps serving the failure page
		if _, err := cache.Get(); err != nil {
			slog.Error("dataset unavailable; pages will report the failure", "error", err)
		}

		srv := dashboard.New(cache, dashboard.Options{
			Analysis:  c.AnalysisOptions(),
			Image:     c.ImageOptions(),
			StartYear: c.StartYear,
			EndYear:   c.EndYear,
			Logger:    slog.Default(),
		})
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
}
