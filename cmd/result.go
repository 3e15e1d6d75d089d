package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/janhq/autoqa-reporter/internal/trajectory"
)

var resultTrajectoryDir string

var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Extract the verdict from a trajectory without uploading",
	Long: `Extract the pass/fail verdict from a trajectory's last API response and
print it. Exits 0 on PASSED and 1 otherwise, so it can gate CI steps directly.`,
	Example: `  autoqa-reporter result --trajectory-dir trajectories/chat/send_message`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		verdict, err := trajectory.ExtractVerdict(resultTrajectoryDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}

		if verdict == trajectory.VerdictPassed {
			fmt.Println("PASSED")
			return nil
		}
		fmt.Println("FAILED")
		os.Exit(1)
		return nil
	},
}

func init() {
	resultCmd.Flags().StringVar(&resultTrajectoryDir, "trajectory-dir", "", "Trajectory directory to inspect (required)")
	_ = resultCmd.MarkFlagRequired("trajectory-dir")
}
