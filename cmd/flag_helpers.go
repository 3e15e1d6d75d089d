package cmd

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// envDefault returns the environment variable value or the fallback.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// SetupRPFlags adds ReportPortal connection flags to a command
func SetupRPFlags(cmd *cobra.Command, config *RPConfig) {
	cmd.Flags().StringVar(&config.Endpoint, "rp-endpoint", envDefault("RP_ENDPOINT", ""), "ReportPortal endpoint URL (env: RP_ENDPOINT)")
	cmd.Flags().StringVar(&config.Project, "rp-project", envDefault("RP_PROJECT", "default_personal"), "ReportPortal project name (env: RP_PROJECT)")
	cmd.Flags().StringVar(&config.Token, "rp-token", envDefault("RP_TOKEN", ""), "ReportPortal API token (env: RP_TOKEN)")
	cmd.Flags().StringVar(&config.Timeout, "rp-timeout", "60s", "Total timeout per ReportPortal call including retries")
	cmd.Flags().IntVar(&config.Retries, "rp-retries", 3, "Maximum ReportPortal retry attempts (0 = no retries)")
	cmd.Flags().StringVar(&config.RetryDelay, "rp-retry-delay", "1s", "Initial delay between ReportPortal retries")
}

// SetupAttributeFlags adds attribute flags to a command
func SetupAttributeFlags(cmd *cobra.Command, config *AttributeConfig) {
	cmd.Flags().StringVar(&config.JSON, "attributes", "", "Attributes as JSON object string")
	cmd.Flags().StringArrayVar(&config.KV, "attribute", nil, "Attribute key=value pair (can be used multiple times)")
	cmd.Flags().StringVar(&config.File, "attributes-file", "", "Path to JSON file containing attributes")
}

// SetupMirrorFlags adds recording-mirror flags to a command
func SetupMirrorFlags(cmd *cobra.Command, config *MirrorConfig) {
	cmd.Flags().StringVar(&config.Provider, "mirror-provider", "", "Recording mirror provider type (e.g., minio)")
	cmd.Flags().StringVar(&config.Config, "mirror-config", "", "Mirror configuration as JSON string")
	cmd.Flags().StringArrayVar(&config.ConfigKV, "mirror-config-kv", nil, "Mirror config key=value pairs (can be used multiple times)")
	cmd.Flags().StringVar(&config.ConfigFile, "mirror-config-file", "", "Path to JSON file containing mirror configuration")
}
