package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesoscale/mesoscaler/internal/config"
)

// configTemplate is the starter file written by 'config init'.
const configTemplate = `# mesoscaler configuration.
# Every value can be overridden with an AS_-prefixed environment variable,
# e.g. AS_MARATHON_URL or AS_SCALING_MAX_INSTANCES.

marathon:
  # Base URL of the DC/OS master or Marathon endpoint.
  url: https://dcos-master.example.com
  # Marathon application to monitor and scale.
  app_id: /my/app
  timeout_seconds: 10
  insecure_skip_verify: false
  # Credentials for DC/OS clusters; leave empty for open Marathon.
  auth:
    user_id: ""
    password: ""
    private_key_file: ""

scaling:
  # Trigger mode: cpu, mem, sqs, and, or.
  trigger_mode: cpu
  # Band thresholds per dimension; combinators take two pairs, [cpu, memory].
  min_range: [20]
  max_range: [80]
  multiplier: 1.5
  min_instances: 1
  max_instances: 10
  scale_up_factor: 3
  cool_down_factor: 3
  interval_seconds: 60

# Queue settings for the sqs trigger mode.
queue:
  url: ""
  name: ""
  region: ""

telemetry:
  enabled: false
  listen_addr: ":9102"

logging:
  level: info
  # Empty logs to stderr; set a directory to enable the logs command.
  dir: ""
  max_size_mb: 10
  max_backups: 5
`

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the mesoscaler configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Show prints the merged configuration after defaults, the config file,
and environment variables have been applied. Credential values are redacted.`,
	Args: cobra.NoArgs,
	Run:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	Run:   runConfigPath,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ConfigFile()

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file may carry cluster credentials, keep it private.
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) {
	keys := viper.AllKeys()
	sort.Strings(keys)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, key := range keys {
		if key == "config" {
			continue
		}
		value := viper.Get(key)
		if redactedKey(key) && viper.GetString(key) != "" {
			value = "<redacted>"
		}
		fmt.Fprintf(w, "%s\t%v\n", key, value)
	}
	_ = w.Flush()
}

func runConfigPath(cmd *cobra.Command, args []string) {
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintln(cmd.OutOrStdout(), used)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFile())
}

// redactedKey reports whether a configuration key holds a credential.
// Key file paths are not redacted, only credential material itself.
func redactedKey(key string) bool {
	return strings.HasSuffix(key, "password") ||
		strings.HasSuffix(key, "secret_key") ||
		strings.HasSuffix(key, "private_key")
}
