package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/godilite/competency-dashboard/internal/app"
	"github.com/godilite/competency-dashboard/internal/service"
)

var transformCmd = &cobra.Command{
	Use:   "transform VIEW",
	Short: "Normalize a raw analytics payload into a dashboard view",
	Long: `Reads an analytics API response and prints the requested view as JSON.

Views: ` + strings.Join(service.Views, ", ") + `

sub-radar and sub-chart expect a topic-level response, every other view a section-level one.
Region selections and bubble matrices read the region map from the database.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: service.Views,
	RunE:      runTransform,
}

func init() {
	transformCmd.Flags().StringP("file", "f", "", "Payload file (default stdin)")
	transformCmd.Flags().StringSlice("units", nil, "Units to include")
	transformCmd.Flags().StringSlice("regions", nil, "Regions to include")
	transformCmd.Flags().StringSlice("sections", nil, "Competency ids for bar and radar charts")
	transformCmd.Flags().StringSlice("topics", nil, "Sub-competency ids for sub-competency views")
	transformCmd.Flags().String("section", "", "Competency id for heat maps and distributions")
	transformCmd.Flags().String("metric", "", "score or percentile")
	transformCmd.Flags().Bool("pretty", false, "Indent the output (default when stdout is a terminal)")
	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	view := args[0]
	if !slices.Contains(service.Views, view) {
		return fmt.Errorf("unknown view %q (want one of %s)", view, strings.Join(service.Views, ", "))
	}

	path, _ := cmd.Flags().GetString("file")
	payload, err := readInput(cmd, path)
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}

	q := service.Query{}
	q.Units, _ = cmd.Flags().GetStringSlice("units")
	q.Regions, _ = cmd.Flags().GetStringSlice("regions")
	q.Sections, _ = cmd.Flags().GetStringSlice("sections")
	q.Topics, _ = cmd.Flags().GetStringSlice("topics")
	q.Section, _ = cmd.Flags().GetString("section")
	q.Metric, _ = cmd.Flags().GetString("metric")

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

	result, err := app.NewService(repo, nil, cfg, logger).Transform(ctx, view, payload, q)
	if err != nil {
		return err
	}

	pretty, _ := cmd.Flags().GetBool("pretty")
	return writeView(cmd.OutOrStdout(), service.Render(result), pretty || stdoutIsTerminal(cmd))
}

func writeView(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func stdoutIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

