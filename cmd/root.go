package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autoqa-reporter",
	Short: "Uploads automated QA test-run artifacts to ReportPortal",
	Long: `autoqa-reporter reports recorded test trajectories to ReportPortal.

A trajectory is the per-turn artifact tree an execution agent writes while
driving the application under test: API call payloads, screenshots, and an
optional screen recording. The reporter derives the pass/fail verdict from the
last turn's API response, then uploads a TEST item with one STEP per turn,
application logs, and the recording.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(launchCmd)
}
