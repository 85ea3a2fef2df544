package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/competency-dashboard/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC and HTTP servers",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("grpc-port", 0, "gRPC port, overrides GRPC_PORT")
	serveCmd.Flags().String("http-addr", "", "HTTP listen address, overrides HTTP_ADDR")
	serveCmd.Flags().Bool("no-cache", false, "Disable the Redis cache")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if port, _ := cmd.Flags().GetInt("grpc-port"); port != 0 {
		cfg.GRPCPort = port
	}
	if addr, _ := cmd.Flags().GetString("http-addr"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.CacheEnabled = false
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	application, err := app.NewApp(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", zap.Error(err))
		return err
	}
	return application.Run(cmd.Context())
}
