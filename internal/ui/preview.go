package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/mydehq/lrcfetch/internal/config"
)

// RenderConfig returns cfg as YAML, highlighted when color is true.
func RenderConfig(cfg *config.Config, color bool) (string, error) {
	data, err := config.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if !color {
		return string(data), nil
	}
	return HighlightYAML(string(data)), nil
}

// showPreviewAndConfirm shows the highlighted document and asks to save it.
func showPreviewAndConfirm(cfg *config.Config) (bool, error) {
	preview, err := RenderConfig(cfg, true)
	if err != nil {
		return false, fmt.Errorf("failed to preview config: %w", err)
	}

	confirmed := true
	err = RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Configuration Preview").
				Description(fmt.Sprintf("\n%s\n", preview)),

			huh.NewConfirm().
				Title("Write configuration?").
				Value(&confirmed),
		),
	))
	if err != nil {
		return false, err
	}
	return confirmed, nil
}

// Confirm asks a yes/no question, defaulting to no.
func Confirm(title, description string) (bool, error) {
	ok := false
	err := RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&ok),
		),
	))
	if err != nil {
		return false, HandleAbort(err)
	}
	return ok, nil
}
