// Package cmd implements the mesoscaler command line interface.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesoscale/mesoscaler/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mesoscaler",
	Short: "Autoscaler for Marathon applications on DC/OS",
	Long: `Mesoscaler watches one Marathon application and scales it between
configured bounds. Each cycle it samples a signal (task CPU, task memory,
or SQS queue depth), classifies the reading against a band, and scales
once the reading has sat outside the band for enough consecutive cycles.

Run 'mesoscaler run' to start the scaling loop, or 'mesoscaler check'
to verify the configuration and cluster connectivity first.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file (default %s)", config.ConfigFile()))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// logLevel is the configured level, forced to debug when --verbose or
// AS_VERBOSE is set.
func logLevel(cfg *config.Config) string {
	if viper.GetBool("verbose") {
		return "debug"
	}
	return cfg.Logging.Level
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.ConfigDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// AS_MARATHON_URL overrides marathon.url, and so on.
	viper.SetEnvPrefix("AS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; environment variables and flags
	// can carry the whole configuration.
	_ = viper.ReadInConfig()
}
