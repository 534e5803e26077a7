package cli

import (
	"errors"
	"fmt"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mydehq/lrcfetch/internal/config"
	"github.com/mydehq/lrcfetch/internal/provider"
	"github.com/mydehq/lrcfetch/internal/ui"
)

var flagResetYes bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and modify the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		color := false
		if f, ok := cmd.OutOrStdout().(interface{ Fd() uintptr }); ok {
			color = isatty.IsTerminal(f.Fd())
		}
		out, err := ui.RenderConfig(cfgManager.Get(), color)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the configuration file path",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configPath())
	},
}

var configResetCmd = &cobra.Command{
	Use:         "reset",
	Short:       "Restore the default configuration",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if !flagResetYes && ui.IsTerminal() {
			ok, err := ui.Confirm("Reset configuration?", fmt.Sprintf("Overwrite %s with the defaults", path))
			if err != nil && !errors.Is(err, ui.ErrUserBack) {
				return err
			}
			if !ok {
				logger.Info(ui.StyleDim.Render("Reset cancelled"))
				return nil
			}
		}

		m := config.NewManager(config.Default(), path, config.WithLogger(logger.Logger))
		if err := m.Reset(); err != nil {
			return err
		}
		logger.Success(fmt.Sprintf("%s: %s", ui.StyleHeader.Render("Configuration reset"), ui.StylePath.Render(path)))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value (e.g. plugins.lrclib.timeout 10)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := cfgManager.Set(key, value); err != nil {
			return err
		}
		if err := cfgManager.Save(); err != nil {
			return err
		}
		logger.Success(fmt.Sprintf("%s %s", ui.StyleHeader.Render("Set "+key+":"), ui.StylePattern.Render(value)))
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.IsTerminal() {
			return errors.New("config edit needs a terminal; use config set instead")
		}

		registry, err := provider.Load(provider.Builtin(), provider.WithLogger(logger.Logger))
		if err != nil {
			return err
		}
		cfgManager.MergeDefaults(registry.Plugins())

		edited, confirmed, err := ui.RunConfigEditor(cfgManager.Get(), registry.Plugins())
		if errors.Is(err, ui.ErrCancelled) {
			logger.Info(ui.StyleDim.Render("Edit cancelled"))
			return nil
		}
		if err != nil || !confirmed {
			return err
		}

		if err := cfgManager.Replace(edited); err != nil {
			return err
		}
		if err := cfgManager.Save(); err != nil {
			return err
		}
		logger.Success(fmt.Sprintf("%s: %s", ui.StyleHeader.Render("Configuration saved"), ui.StylePath.Render(cfgManager.Path())))

		if err := cfgManager.ValidatePlugins(registry.Plugins()); err != nil {
			logger.Warn("Provider settings are incomplete", "error", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd, configResetCmd, configSetCmd, configEditCmd)

	configResetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Do not ask for confirmation")
}
