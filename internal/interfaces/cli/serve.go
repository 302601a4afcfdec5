package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veritype/veritype/internal/app"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
)

// NewServeCmd creates the serve command, which runs the HTTP API with the
// loaded configuration until interrupted.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the VeriType HTTP API",
		Long: "Run the HTTP API with the loaded configuration. Optional components\n" +
			"(redis result cache, kafka event stream, oracle) are wired when enabled\n" +
			"in the configuration. The server drains in-flight requests on SIGINT or\n" +
			"SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			a, err := app.New(cliCtx.Config, Version, cliCtx.Logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cliCtx.Logger.Info("starting server",
				logging.Int("port", cliCtx.Config.Server.Port),
				logging.String("version", Version))
			return a.Run(ctx)
		},
	}
}
