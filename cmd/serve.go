package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillforge/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := openRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		addr := rt.cfg.HTTP.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}

		srv := api.NewServer(addr, api.RouterConfig{
			Logger:        rt.log,
			Metrics:       rt.metrics,
			CORSOrigins:   rt.cfg.HTTP.CORSOrigins,
			SkillHandler:  api.NewSkillHandler(rt.log, rt.engine),
			HealthHandler: api.NewHealthHandler(rt.store),
		})

		rt.log.Info("listening", "addr", addr)
		if err := srv.Run(ctx, rt.cfg.HTTP.ShutdownTimeout); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		rt.log.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides SKILLFORGE_HTTP_ADDR)")
}
