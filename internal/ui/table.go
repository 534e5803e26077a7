package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mydehq/lrcfetch/internal/types"
)

// PluginTable renders the installed providers with their URL patterns,
// lyrics types and capabilities.
func PluginTable(plugins []types.Plugin) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("#", "NAME", "PATTERN", "LYRICS", "SUPPORTS", "AUTH").
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Inherit(StyleHeader)
			case col == 1:
				return base.Inherit(StyleCommand)
			case col == 2:
				return base.Inherit(StylePattern)
			}
			return base
		})

	for i, p := range plugins {
		d := p.Descriptor()
		pattern := ""
		if d.Pattern != nil {
			pattern = d.Pattern.String()
		}
		auth := "no"
		if d.RequiresAuth {
			auth = "yes"
		}
		t.Row(
			strconv.Itoa(i+1),
			d.Name,
			pattern,
			strings.Join(d.LyricsTypes.Names(), ", "),
			strings.Join(d.Capabilities.Names(), ", "),
			auth,
		)
	}
	return t.String()
}
