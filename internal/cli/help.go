package cli

import (
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mydehq/lrcfetch/internal/ui"
)

const coloredUsageTmpl = `{{Header "Usage:"}}
  {{if .Runnable}}{{Usage .UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{Command .CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{Header "Aliases:"}}
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{Header "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{Header "Available Commands:"}}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{Command (printf "%-15s" .Name)}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{Header "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces | Flags}}{{end}}{{if .HasAvailableInheritedFlags}}

{{Header "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces | Flags}}{{end}}{{if .HasHelpSubCommands}}

{{Header "Additional help topics:"}}{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{Command (printf "%-15s" .Name)}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

{{Header "Use"}} {{Command (printf "%s [command] --help" .CommandPath)}} {{Header "for more information about a command."}}{{end}}
`

var (
	reFlagName = regexp.MustCompile(`(-\w|--[\w-]+)`)
	reRequired = regexp.MustCompile(`<[a-zA-Z0-9_-]+>`)
	reOptional = regexp.MustCompile(`\[[a-zA-Z0-9_-]+\]`)
	reCmdName  = regexp.MustCompile(`^\w+`)
)

func colorizeHelp(cmd *cobra.Command) {
	cobra.AddTemplateFunc("Header", func(s string) string {
		out := ui.StyleHeader.Render(s)
		if s == "Usage:" {
			return "\n" + out
		}
		return out
	})
	cobra.AddTemplateFunc("Command", func(s string) string { return ui.StyleCommand.Render(s) })

	cobra.AddTemplateFunc("Flags", func(s string) string {
		s = reFlagName.ReplaceAllStringFunc(s, func(m string) string { return ui.StyleFlag.Render(m) })
		return strings.ReplaceAll(s, ", ", ui.StyleDim.Render(", "))
	})

	// <args> blue, [args] dim, command name cyan
	cobra.AddTemplateFunc("Usage", func(s string) string {
		s = reRequired.ReplaceAllStringFunc(s, func(m string) string { return ui.StylePath.Render(m) })
		s = reOptional.ReplaceAllStringFunc(s, func(m string) string { return ui.StyleDim.Render(m) })
		return reCmdName.ReplaceAllStringFunc(s, func(m string) string { return ui.StyleCommand.Render(m) })
	})

	cmd.SetUsageTemplate(coloredUsageTmpl)
}
