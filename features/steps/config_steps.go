//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yt-subtitles-loader/cmd"
	"yt-subtitles-loader/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	output     *bytes.Buffer
	err        error
}

// SharedConfigContext is reset before each scenario via After hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = ""
		testCtx.cfg = nil
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	// Reset context after each scenario
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedConfigContext = &configContext{}
		return c, nil
	})

	ctx.Step(`^a config file "([^"]*)" containing:$`, testCtx.aConfigFileContaining)
	ctx.Step(`^no config file "([^"]*)"$`, testCtx.noConfigFile)
	ctx.Step(`^I load the configuration$`, testCtx.iLoadTheConfiguration)
	ctx.Step(`^I attempt to load the configuration$`, testCtx.iAttemptToLoadTheConfiguration)
	ctx.Step(`^the setting "([^"]*)" should be "([^"]*)"$`, testCtx.theSettingShouldBe)
	ctx.Step(`^loading should fail mentioning "([^"]*)"$`, testCtx.loadingShouldFailMentioning)

	ctx.Step(`^I run config list$`, testCtx.iRunConfigList)
	ctx.Step(`^I run config get "([^"]*)"$`, testCtx.iRunConfigGet)
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, testCtx.iRunConfigSet)
	ctx.Step(`^I run config reset "([^"]*)"$`, testCtx.iRunConfigReset)
	ctx.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	ctx.Step(`^the command should fail with an unknown key error$`, testCtx.theCommandShouldFailWithAnUnknownKeyError)
	ctx.Step(`^the command should fail with an invalid value error$`, testCtx.theCommandShouldFailWithAnInvalidValueError)
	ctx.Step(`^the saved setting "([^"]*)" should be "([^"]*)"$`, testCtx.theSavedSettingShouldBe)
}

func (c *configContext) aConfigFileContaining(name string, content *godog.DocString) error {
	c.configPath = filepath.Join(c.tempDir, name)
	return os.WriteFile(c.configPath, []byte(content.Content), 0644)
}

func (c *configContext) noConfigFile(name string) error {
	c.configPath = filepath.Join(c.tempDir, name)
	return nil
}

func (c *configContext) iLoadTheConfiguration() error {
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return fmt.Errorf("unexpected error loading config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *configContext) iAttemptToLoadTheConfiguration() error {
	c.cfg, c.err = config.LoadOrDefault(c.configPath)
	return nil
}

func (c *configContext) theSettingShouldBe(key, expected string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	got, err := config.NewConfigManager(c.cfg, c.configPath).Get(key)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected %s %q, got %q", key, expected, got)
	}
	return nil
}

func (c *configContext) loadingShouldFailMentioning(text string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error loading config")
	}
	if !strings.Contains(c.err.Error(), text) {
		return fmt.Errorf("expected error mentioning %q, got %q", text, c.err.Error())
	}
	return nil
}

func (c *configContext) loaded() (*config.Config, error) {
	if c.cfg == nil {
		if err := c.iLoadTheConfiguration(); err != nil {
			return nil, err
		}
	}
	return c.cfg, nil
}

func (c *configContext) iRunConfigList() error {
	cfg, err := c.loaded()
	if err != nil {
		return err
	}
	c.err = cmd.RunConfigListWithDependencies(cfg, c.configPath, c.output)
	return c.err
}

func (c *configContext) iRunConfigGet(key string) error {
	cfg, err := c.loaded()
	if err != nil {
		return err
	}
	c.err = cmd.RunConfigGetWithDependencies(cfg, c.configPath, key, c.output)
	return nil
}

func (c *configContext) iRunConfigSet(key, value string) error {
	cfg, err := c.loaded()
	if err != nil {
		return err
	}
	c.err = cmd.RunConfigSetWithDependencies(cfg, c.configPath, key, value, c.output)
	return nil
}

func (c *configContext) iRunConfigReset(key string) error {
	cfg, err := c.loaded()
	if err != nil {
		return err
	}
	c.err = cmd.RunConfigResetWithDependencies(cfg, c.configPath, key, c.output)
	return nil
}

func (c *configContext) theOutputShouldContain(expected string) error {
	if c.err != nil {
		return fmt.Errorf("command failed: %w", c.err)
	}
	if !strings.Contains(c.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, c.output.String())
	}
	return nil
}

func (c *configContext) theCommandShouldFailWithAnUnknownKeyError() error {
	if !errors.Is(c.err, config.ErrUnknownKey) {
		return fmt.Errorf("expected unknown key error, got %v", c.err)
	}
	return nil
}

func (c *configContext) theCommandShouldFailWithAnInvalidValueError() error {
	if !errors.Is(c.err, config.ErrInvalidValue) {
		return fmt.Errorf("expected invalid value error, got %v", c.err)
	}
	return nil
}

func (c *configContext) theSavedSettingShouldBe(key, expected string) error {
	saved, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	got, err := config.NewConfigManager(saved, c.configPath).Get(key)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected saved %s %q, got %q", key, expected, got)
	}
	return nil
}
