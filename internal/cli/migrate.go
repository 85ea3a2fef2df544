package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/competency-dashboard/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and optionally load a seed snapshot",
	Long: `Creates the dashboard tables if they do not exist.

With --seed, loads a JSON file of the form
  {"regions": {"North": ["ICU"]}, "competencies": <section response>, "topics": [<topic response>, ...]}
where the responses are analytics API bodies. Rows are upserted, so a seed can be re-applied.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().String("seed", "", "Seed snapshot file (- for stdin)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	db, repo, err := app.OpenRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	seedPath, _ := cmd.Flags().GetString("seed")
	if seedPath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	}

	data, err := readInput(cmd, seedPath)
	if err != nil {
		return fmt.Errorf("reading seed: %w", err)
	}
	snap, err := parseSeed(data)
	if err != nil {
		return err
	}
	if err := repo.Import(ctx, snap); err != nil {
		return fmt.Errorf("importing seed: %w", err)
	}

	logger.Info("seed imported",
		zap.Int("units", len(snap.Regions)),
		zap.Int("competencies", len(snap.Competencies)),
		zap.Int("topics", len(snap.Topics)),
		zap.Int("section_scores", len(snap.SectionScores)),
		zap.Int("topic_scores", len(snap.TopicScores)))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d competencies, %d topics, %d unit scores\n",
		len(snap.Competencies), len(snap.Topics), len(snap.SectionScores)+len(snap.TopicScores))
	return nil
}
