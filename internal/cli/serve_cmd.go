package cli

import (
	"fmt"

	"github.com/alexanderramin/learnerbot/internal/httpapi"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat and progress HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			var origins []string
			if app.Config != nil {
				origins = app.Config.Server.CORSOrigins
				if addr == "" {
					addr = app.Config.Server.Addr
				}
			}
			if addr == "" {
				addr = "127.0.0.1:8080"
			}

			logger := app.logger()
			srv := httpapi.NewServer(httpapi.RouterConfig{
				Handler:     httpapi.NewHandler(app.Chat, app.Progress, logger),
				Logger:      logger,
				CORSOrigins: origins,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", addr)
			return srv.Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
