// Package commands implements the CLI commands for portion.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/portion/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "portion",
	Short: "Scrape recipes and scale their ingredients to a single serving",
	Long: `Portion reads the schema.org Recipe metadata embedded in recipe pages,
divides every ingredient quantity by the recipe yield and stores the
result as exact fractions.

Examples:
  # Scrape a recipe into rec.csv
  portion scrape -u "https://www.food.com/recipe/palak-paneer-13965"

  # Scrape a list of pages into SQLite, scaled for two
  portion scrape --input urls.yaml --format sqlite -o recipes.db --servings 2

  # Scale a single ingredient line offline
  portion scale "1 1/2 cups milk" --yield 4`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.portion.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Bool("log-json", false, "log in JSON format")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".portion")
		viper.SetConfigType("yaml")
	}

	// Environment variables (PORTION_SERVINGS, PORTION_FETCH_MODE, ...)
	viper.SetEnvPrefix("PORTION")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// initLogger configures logging from the global flags.
func initLogger() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "path", used)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
