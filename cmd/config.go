package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"yt-subtitles-loader/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration settings",
	Long: `Read and update individual settings of the configuration file.

Keys use dotted names such as server.address or cleanup.max_age_minutes.

Examples:
  yt-subtitles-loader config list
  yt-subtitles-loader config get paths.temp_directory
  yt-subtitles-loader config set cache.enabled true
  yt-subtitles-loader config reset server.burst`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its current value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigListWithDependencies(cfg, cfgFile, DefaultOutput)
	},
}

// RunConfigListWithDependencies runs the list command with injected dependencies
func RunConfigListWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "KEY\tVALUE")
	for _, e := range mgr.List() {
		fmt.Fprintf(w, "%s\t%s\n", e.Key, e.Value)
	}

	return w.Flush()
}

// --- GET command ---

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigGetWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
	},
}

// RunConfigGetWithDependencies runs the get command with injected dependencies
func RunConfigGetWithDependencies(cfg *config.Config, configPath, key string, out OutputWriter) error {
	value, err := config.NewConfigManager(cfg, configPath).Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, value)
	return nil
}

// --- SET command ---

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting and save the config file",
	Long: `Change a setting and save the config file. The value is validated before
anything is written.

Examples:
  yt-subtitles-loader config set server.requests_per_second 5
  yt-subtitles-loader config set ytdlp.path /usr/local/bin/yt-dlp`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigSetWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
	},
}

// RunConfigSetWithDependencies runs the set command with injected dependencies
func RunConfigSetWithDependencies(cfg *config.Config, configPath, key, value string, out OutputWriter) error {
	if err := config.NewConfigManager(cfg, configPath).Set(key, value); err != nil {
		return err
	}
	fmt.Fprintf(out, "Set %s = %s\n", key, value)
	return nil
}

// --- RESET command ---

var configResetCmd = &cobra.Command{
	Use:   "reset <key>",
	Short: "Restore a setting to its default value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigResetWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
	},
}

// RunConfigResetWithDependencies runs the reset command with injected dependencies
func RunConfigResetWithDependencies(cfg *config.Config, configPath, key string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.Reset(key); err != nil {
		return err
	}
	value, err := mgr.Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Reset %s = %s\n", key, value)
	return nil
}
