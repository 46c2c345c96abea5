package cmd

import (
	"fmt"
	"os"
	"strconv"

	"yt-subtitles-loader/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates the config file.

This command guides you through locating yt-dlp, choosing the working
directory for downloaded subtitles, logging, the HTTP API and the result
cache. Press enter to accept the suggested value.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	if configPath == "" {
		configPath = config.DefaultPath
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(fmt.Sprintf("%s already exists. Overwrite?", configPath), false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to yt-subtitles-loader setup!")
	fmt.Fprintln(out)

	cfg := config.Defaults()

	if err := promptYtDlp(prompter, cfg); err != nil {
		return err
	}
	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptLogging(prompter, cfg); err != nil {
		return err
	}
	if err := promptServer(prompter, cfg); err != nil {
		return err
	}
	if err := promptCache(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptYtDlp(prompter Prompter, cfg *config.Config) error {
	path, err := prompter.Input("Path to yt-dlp (leave empty to search bundle and PATH)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.YtDlp.Path = path

	if path != "" {
		return nil
	}

	bundle, err := prompter.Input("Directory with bundled yt-dlp builds (optional)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.YtDlp.BundleDirectory = bundle

	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	temp, err := prompter.Input("Where should subtitle files be downloaded?", cfg.Paths.TempDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if temp != "" {
		cfg.Paths.TempDirectory = temp
	}

	maxAge, err := prompter.Input("Remove leftover subtitle files after how many minutes?", strconv.Itoa(cfg.Cleanup.MaxAgeMinutes))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if maxAge != "" {
		minutes, err := strconv.Atoi(maxAge)
		if err != nil || minutes <= 0 {
			return fmt.Errorf("max age must be a positive number of minutes")
		}
		cfg.Cleanup.MaxAgeMinutes = minutes
	}

	return nil
}

func promptLogging(prompter Prompter, cfg *config.Config) error {
	level, err := prompter.Select("Log level?", []string{"debug", "info", "warn", "error"}, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Log.Level = level

	format, err := prompter.Select("Log format?", []string{"auto", "text", "json"}, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Log.Format = format

	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	address, err := prompter.Input("HTTP API listen address?", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if address != "" {
		cfg.Server.Address = address
	}
	return nil
}

func promptCache(prompter Prompter, cfg *config.Config) error {
	enabled, err := prompter.Confirm("Cache extracted subtitles?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Cache.Enabled = enabled
	if !enabled {
		return nil
	}

	path, err := prompter.Input("Cache database file?", cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if path != "" {
		cfg.Cache.Path = path
	}

	return nil
}
