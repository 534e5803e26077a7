package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mydehq/lrcfetch/internal/config"
	"github.com/mydehq/lrcfetch/internal/provider"
	"github.com/mydehq/lrcfetch/internal/types"
	"github.com/mydehq/lrcfetch/internal/ui"
)

var pluginCmd = &cobra.Command{
	Use:     "plugin",
	Aliases: []string{"plugins"},
	Short:   "Inspect installed lyrics providers",
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := provider.Load(provider.Builtin(), provider.WithLogger(logger.Logger))
		if err != nil {
			return err
		}

		if ui.IsTerminal() {
			fmt.Fprintln(cmd.OutOrStdout(), ui.PluginTable(registry.Plugins()))
			return nil
		}
		for _, line := range registry.Describe() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

var pluginInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show a provider's description and effective settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := provider.Load(provider.Builtin(), provider.WithLogger(logger.Logger))
		if err != nil {
			return err
		}
		p, ok := registry.Lookup(args[0])
		if !ok {
			return fmt.Errorf("no provider named %q (installed: %s)", args[0], strings.Join(registry.Names(), ", "))
		}

		d := p.Descriptor()
		keyStyle := ui.StyleHeader.Width(14)
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Name:"), ui.StyleCommand.Render(d.Name))
		if d.Description != "" {
			fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Description:"), d.Description)
		}
		if d.Pattern != nil {
			fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Pattern:"), ui.StylePattern.Render(d.Pattern.String()))
		}
		fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Lyrics:"), strings.Join(d.LyricsTypes.Names(), ", "))
		fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Supports:"), strings.Join(d.Capabilities.Names(), ", "))

		effective := cfgManager.ForPlugin(p)
		if len(effective) == 0 {
			return nil
		}

		descriptions := map[string]string{}
		for _, f := range d.ConfigSchema {
			descriptions[f.Key] = f.Description
		}
		keys := make([]string, 0, len(effective))
		for k := range effective {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(out, keyStyle.Render("Settings:"))
		for _, k := range keys {
			line := fmt.Sprintf("  %s = %v", ui.StyleCommand.Render(k), effective[k])
			if desc := descriptions[k]; desc != "" {
				line += "  " + ui.StyleDim.Render(desc)
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var pluginSetCmd = &cobra.Command{
	Use:   "set <name> <key> <value>",
	Short: "Set a provider setting (e.g. plugin set lrclib timeout 10)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := provider.Load(provider.Builtin(), provider.WithLogger(logger.Logger))
		if err != nil {
			return err
		}
		p, ok := registry.Lookup(args[0])
		if !ok {
			return fmt.Errorf("no provider named %q (installed: %s)", args[0], strings.Join(registry.Names(), ", "))
		}

		d := p.Descriptor()
		key, value := args[1], args[2]
		if !knownSetting(p, key) {
			logger.Warn("Setting is not declared by the provider", "provider", d.Name, "key", key)
		}

		cfgManager.SetPlugin(d.Name, key, config.Coerce(value))
		if err := cfgManager.ValidatePlugin(p); err != nil {
			logger.Warn("Provider settings are incomplete", "error", err)
		}
		if err := cfgManager.Save(); err != nil {
			return err
		}
		logger.Success(fmt.Sprintf("%s %s", ui.StyleHeader.Render("Set "+d.Key()+"."+key+":"), ui.StylePattern.Render(value)))
		return nil
	},
}

func knownSetting(p types.Plugin, key string) bool {
	if _, ok := p.DefaultConfig()[key]; ok {
		return true
	}
	for _, f := range p.Descriptor().ConfigSchema {
		if f.Key == key {
			return true
		}
	}
	return false
}

func init() {
	RootCmd.AddCommand(pluginCmd)
	pluginCmd.AddCommand(pluginListCmd, pluginInfoCmd, pluginSetCmd)
}
