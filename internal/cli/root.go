package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/competency-dashboard/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Competency analytics dashboard server",
	Long: `Serves normalized competency analytics views over gRPC and HTTP.

Getting Started:
  dashboard migrate --seed seed.json   Create the schema and load a snapshot
  dashboard serve                      Start the gRPC and HTTP servers
  dashboard transform heatmap < payload.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver, overrides DB_DRIVER (sqlite3 or pgx)")
	rootCmd.PersistentFlags().String("db-path", "", "Database path or DSN, overrides DB_PATH")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.LoadFromEnv()
	if driver, _ := cmd.Flags().GetString("db-driver"); driver != "" {
		cfg.DBDriver = driver
	}
	if path, _ := cmd.Flags().GetString("db-path"); path != "" {
		cfg.DBPath = path
	}
	return cfg
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
