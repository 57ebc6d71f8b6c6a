package commands

import (
	"os"
	"time"

	"github.com/theappraisallane/jira-to-analytics/internal/calendar"
	"github.com/theappraisallane/jira-to-analytics/internal/config"
	"github.com/theappraisallane/jira-to-analytics/internal/jira"
	"github.com/theappraisallane/jira-to-analytics/internal/logging"
	"github.com/theappraisallane/jira-to-analytics/internal/report"
	"github.com/theappraisallane/jira-to-analytics/internal/stagedates"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose    bool
	configPath string
	outputPath string

	cfg        *config.AppConfig
	jiraClient jira.Client
)

var rootCmd = &cobra.Command{
	Use:   "jira-to-analytics",
	Short: "jira-to-analytics extracts per-stage dates from Jira issue histories",
	Long: `An extraction tool that fetches issues with their full changelogs from Jira,
reconstructs the date each issue entered every workflow stage (simulating
business-day durations for active stages), and writes a CSV report for
flow-analytics tooling.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		jiraClient = jira.NewClient(cfg.Jira)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("jira-to-analytics starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract()
	},
}

func runExtract() error {
	extract, err := config.LoadExtract(configPath)
	if err != nil {
		return err
	}

	issues, err := jiraClient.SearchAllIssues(extract.Query())
	if err != nil {
		return err
	}
	log.Info().Int("count", len(issues)).Msg("Fetched issues")

	cal := calendar.NewWithHolidays(extract.HolidayDates())
	active := extract.ActiveSet()
	asOf := time.Now()

	rows := make([]report.Row, len(issues))
	var g errgroup.Group
	g.SetLimit(8)
	for i, issue := range issues {
		i, issue := i, issue
		g.Go(func() error {
			dates, err := stagedates.GetStageDates(issue, extract.Workflow, active, cal, asOf)
			if err != nil {
				log.Warn().Err(err).Str("issue", issue.Key).Msg("Skipping issue with invalid data")
				dates = make([]string, extract.Workflow.Len())
			}
			rows[i] = report.Row{Key: issue.Key, Dates: dates}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := report.WriteCSV(out, extract.Workflow, rows); err != nil {
		return err
	}

	log.Info().Str("path", outputPath).Int("rows", len(rows)).Msg("Wrote stage-date report")
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the extraction definition (YAML)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "stage-dates.csv", "path of the CSV report to write")
}
