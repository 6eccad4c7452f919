package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/veil/internal/config"
	"github.com/jmylchreest/veil/internal/theme"
)

var configOpts struct {
	yaml  bool
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration: the config file merged over the
defaults. Output is TOML unless --yaml is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check a config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long: `Write the default configuration to the config path. An existing file
is left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	RunE:  runConfigThemes,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configValidateCmd, configInitCmd, configThemesCmd)

	configShowCmd.Flags().BoolVar(&configOpts.yaml, "yaml", false,
		"Print YAML instead of TOML")
	configInitCmd.Flags().BoolVar(&configOpts.force, "force", false,
		"Overwrite an existing config file")
}

// configPath returns the path in use: --config, else the default.
func configPath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	c := getConfig()

	var (
		data []byte
		err  error
	)
	if configOpts.yaml {
		data, err = yaml.Marshal(c)
	} else {
		data, err = toml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// PersistentPreRunE already validated the --config file.
	path := configPath()
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if c.Theme.CSS != "" {
		if _, err := theme.Resolve(c.Theme.CSS); err != nil {
			return fmt.Errorf("theme: %w", err)
		}
	}
	fmt.Printf("%s: ok\n", path)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if _, err := os.Stat(path); err == nil && !configOpts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	logger.Info("wrote default config", "path", path)
	fmt.Println(path)
	return nil
}

func runConfigThemes(cmd *cobra.Command, args []string) error {
	themes, err := theme.ListAvailableThemes()
	if err != nil {
		return err
	}

	current := getConfig().Theme.CSS
	if current == "" {
		current = theme.DefaultThemeName
	}
	for _, t := range themes {
		marker := " "
		if t.Name == current {
			marker = "*"
		}
		source := t.Path
		if t.Bundled {
			source = "(bundled)"
		}
		fmt.Printf("%s %-16s %s\n", marker, t.Name, source)
	}
	return nil
}
