package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/janhq/autoqa-reporter/internal/reportportal"
)

var (
	launchStartName        string
	launchStartDescription string
	launchStartVerbose     bool
	launchStartRPConfig    RPConfig
	launchStartAttrConfig  AttributeConfig

	launchFinishID       string
	launchFinishVerbose  bool
	launchFinishRPConfig RPConfig
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Manage ReportPortal launches around a test session",
}

var launchStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a launch and print its id",
	Long: `Start a ReportPortal launch and print its id to stdout. Pass the id to
"report --launch-id" so a whole test session shares one launch, then close it
with "launch finish".`,
	Example: `  LAUNCH=$(autoqa-reporter launch start --launch-name "Nightly E2E" --attribute os=linux)
  autoqa-reporter report --launch-id "$LAUNCH" ...
  autoqa-reporter launch finish --launch-id "$LAUNCH"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		client, err := buildRPClient(&launchStartRPConfig, launchStartVerbose)
		if err != nil {
			return err
		}

		attributes, err := buildAttributes(&launchStartAttrConfig)
		if err != nil {
			return err
		}

		launchID, err := client.StartLaunch(context.Background(), reportportal.StartLaunchRequest{
			Name:        launchName(launchStartName),
			StartTime:   reportportal.Timestamp(),
			Description: launchStartDescription,
			Attributes:  attributes,
		})
		if err != nil {
			return err
		}

		fmt.Println(launchID)
		return nil
	},
}

var launchFinishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Finish a launch",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		client, err := buildRPClient(&launchFinishRPConfig, launchFinishVerbose)
		if err != nil {
			return err
		}

		return client.FinishLaunch(context.Background(), launchFinishID, reportportal.Timestamp())
	},
}

func init() {
	launchStartCmd.Flags().StringVar(&launchStartName, "launch-name", envDefault("LAUNCH_NAME", ""), "Launch name (env: LAUNCH_NAME, default: auto-generated)")
	launchStartCmd.Flags().StringVar(&launchStartDescription, "description", "", "Launch description")
	launchStartCmd.Flags().BoolVarP(&launchStartVerbose, "verbose", "v", false, "Show request diagnostics on stderr")
	SetupRPFlags(launchStartCmd, &launchStartRPConfig)
	SetupAttributeFlags(launchStartCmd, &launchStartAttrConfig)

	launchFinishCmd.Flags().StringVar(&launchFinishID, "launch-id", envDefault("RP_LAUNCH_ID", ""), "Launch id to finish (env: RP_LAUNCH_ID, required)")
	launchFinishCmd.Flags().BoolVarP(&launchFinishVerbose, "verbose", "v", false, "Show request diagnostics on stderr")
	_ = launchFinishCmd.MarkFlagRequired("launch-id")
	SetupRPFlags(launchFinishCmd, &launchFinishRPConfig)

	launchCmd.AddCommand(launchStartCmd)
	launchCmd.AddCommand(launchFinishCmd)
}
