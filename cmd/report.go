package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/janhq/autoqa-reporter/internal/reporter"
	"github.com/janhq/autoqa-reporter/internal/reportportal"
)

var (
	reportTrajectoryDir string
	reportTestPath      string
	reportVideoPath     string
	reportForceStopped  bool
	reportNightly       bool
	reportMaxTurns      int
	reportMaxLogFiles   int
	reportLaunchID      string
	reportLaunchName    string
	reportExitCode      bool
	reportVerbose       bool

	reportRPConfig     RPConfig
	reportAttrConfig   AttributeConfig
	reportMirrorConfig MirrorConfig
)

// reportResult is the JSON summary printed to stdout after the upload.
type reportResult struct {
	Test          string `json:"test"`
	Status        string `json:"status"`
	LaunchID      string `json:"launch_id"`
	TrajectoryDir string `json:"trajectory_dir"`
	ForceStopped  bool   `json:"force_stopped,omitempty"`
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Upload one test run's trajectory to ReportPortal",
	Long: `Upload a recorded trajectory as a TEST item with one STEP per turn.

The verdict is derived from the last turn's API response. When no launch id is
given, a launch is started for this run and finished afterwards. Per-artifact
failures never abort the upload; they become ERROR/WARNING entries on the item.`,
	Example: `  autoqa-reporter report --trajectory-dir trajectories/chat/send_message \
      --test-path tests/chat/send_message.txt \
      --rp-endpoint https://reportportal.example.com --rp-project jan --rp-token $RP_TOKEN

  autoqa-reporter report --trajectory-dir traj --test-path t.txt --launch-id $LAUNCH \
      --video recordings/run.mp4 --nightly --attribute os=linux`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	client, err := buildRPClient(&reportRPConfig, reportVerbose)
	if err != nil {
		return err
	}

	attributes, err := buildAttributes(&reportAttrConfig)
	if err != nil {
		return err
	}

	mirror, err := buildMirrorProvider(&reportMirrorConfig)
	if err != nil {
		return err
	}

	ctx := context.Background()

	launchID := reportLaunchID
	ownLaunch := launchID == ""
	if ownLaunch {
		launchID, err = client.StartLaunch(ctx, reportportal.StartLaunchRequest{
			Name:        launchName(reportLaunchName),
			StartTime:   reportportal.Timestamp(),
			Description: fmt.Sprintf("Automated E2E test run for %s", reportTestPath),
			Attributes:  attributes,
		})
		if err != nil {
			return err
		}
	}

	status := reporter.New(client, mirror, reportVerbose).Run(ctx, reporter.Params{
		LaunchID:      launchID,
		TestPath:      reportTestPath,
		TrajectoryDir: reportTrajectoryDir,
		VideoPath:     reportVideoPath,
		ForceStopped:  reportForceStopped,
		Nightly:       reportNightly,
		MaxTurns:      reportMaxTurns,
		MaxLogFiles:   reportMaxLogFiles,
		Attributes:    attributes,
	})

	if ownLaunch {
		if err := client.FinishLaunch(ctx, launchID, reportportal.Timestamp()); err != nil {
			// The results are already uploaded; an unfinished launch is
			// recoverable from the ReportPortal UI.
			fmt.Fprintf(os.Stderr, "[RP] Error finishing launch: %v\n", err)
		}
	}

	result := &reportResult{
		Test:          reporter.FormatTestName(reportTestPath),
		Status:        status,
		LaunchID:      launchID,
		TrajectoryDir: reportTrajectoryDir,
		ForceStopped:  reportForceStopped,
	}
	jsonOutput, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	fmt.Println(string(jsonOutput))

	if reportExitCode && status != reportportal.StatusPassed {
		os.Exit(1)
	}
	return nil
}

// launchName returns the configured name or an auto-generated timestamped one.
func launchName(name string) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("E2E Test Run - %s", time.Now().Format("20060102_150405"))
}

func init() {
	reportCmd.Flags().StringVar(&reportTrajectoryDir, "trajectory-dir", "", "Trajectory directory written by the execution agent (required)")
	reportCmd.Flags().StringVar(&reportTestPath, "test-path", "", "Test case source path, used to derive the item name (required)")
	reportCmd.Flags().StringVar(&reportVideoPath, "video", "", "Screen recording file to attach (optional)")
	reportCmd.Flags().BoolVar(&reportForceStopped, "force-stopped", false, "Mark the run as force-stopped at the turn limit")
	reportCmd.Flags().BoolVar(&reportNightly, "nightly", envDefaultBool("JAN_NIGHTLY", false), "Collect logs of the nightly application variant (env: JAN_NIGHTLY)")
	reportCmd.Flags().IntVar(&reportMaxTurns, "max-turns", envDefaultInt("MAX_TURNS", 30), "Configured turn limit, reported in the forced-stop reason (env: MAX_TURNS)")
	reportCmd.Flags().IntVar(&reportMaxLogFiles, "max-log-files", 5, "Maximum number of application log files to upload")
	reportCmd.Flags().StringVar(&reportLaunchID, "launch-id", envDefault("RP_LAUNCH_ID", ""), "Existing launch to report into (env: RP_LAUNCH_ID); a new launch is started when empty")
	reportCmd.Flags().StringVar(&reportLaunchName, "launch-name", envDefault("LAUNCH_NAME", ""), "Launch name when starting a new launch (env: LAUNCH_NAME, default: auto-generated)")
	reportCmd.Flags().BoolVar(&reportExitCode, "exit-code", false, "Exit nonzero when the final status is FAILED")
	reportCmd.Flags().BoolVarP(&reportVerbose, "verbose", "v", false, "Show upload diagnostics on stderr")

	_ = reportCmd.MarkFlagRequired("trajectory-dir")
	_ = reportCmd.MarkFlagRequired("test-path")

	SetupRPFlags(reportCmd, &reportRPConfig)
	SetupAttributeFlags(reportCmd, &reportAttrConfig)
	SetupMirrorFlags(reportCmd, &reportMirrorConfig)
}
