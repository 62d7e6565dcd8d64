package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/promptcanvas/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the canvas API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				app.Config.Server.Addr = addr
			}

			srv := server.New(server.Options{
				Addr:            app.Config.Server.Addr,
				CORSOrigins:     app.Config.Server.CORSOrigins,
				ReadTimeout:     app.Config.Server.ReadTimeout,
				WriteTimeout:    app.Config.Server.WriteTimeout,
				ShutdownTimeout: app.Config.Server.ShutdownTimeout,
			}, &server.Handlers{
				Resolver:   app.Resolver,
				Classifier: app.Classifier,
				Engine:     app.Engine,
				Generator:  app.Generator,
				Sessions:   app.Sessions,
				Registry:   app.Registry,
				Log:        app.Log,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
