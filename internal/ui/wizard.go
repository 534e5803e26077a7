package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/mydehq/lrcfetch/internal/config"
	"github.com/mydehq/lrcfetch/internal/types"
)

// PromptURL asks for a track, album or playlist URL.
func PromptURL(installed []string) (string, error) {
	var url string
	desc := "\nTrack, album or playlist URL"
	if len(installed) > 0 {
		desc += "\nProviders: " + StyleDim.Render(strings.Join(installed, ", "))
	}

	err := RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Enter URL").
				Description(desc).
				Value(&url).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("URL cannot be empty")
					}
					return nil
				}),
		),
	))
	if err != nil {
		return "", HandleAbort(err)
	}
	return strings.TrimSpace(url), nil
}

// pluginFields holds the string form of one plugin's schema fields.
type pluginFields struct {
	key    string
	name   string
	schema []types.ConfigField
	values map[string]*string
}

func newPluginFields(p types.Plugin, stored types.PluginConfig) *pluginFields {
	d := p.Descriptor()
	pf := &pluginFields{key: d.Key(), name: d.Name, schema: d.ConfigSchema, values: map[string]*string{}}
	for _, f := range d.ConfigSchema {
		s := ""
		if v, ok := stored[f.Key]; ok && v != nil {
			s = fmt.Sprint(v)
		}
		pf.values[f.Key] = &s
	}
	return pf
}

// apply writes the edited values into cfg. Cleared fields are removed so
// the provider default applies again.
func (pf *pluginFields) apply(cfg *config.Config) {
	section := cfg.Plugins[pf.key]
	if section == nil {
		section = types.PluginConfig{}
	}
	for _, f := range pf.schema {
		v := strings.TrimSpace(*pf.values[f.Key])
		if v == "" {
			delete(section, f.Key)
			continue
		}
		section[f.Key] = config.Coerce(v)
	}
	cfg.Plugins[pf.key] = section
}

func (pf *pluginFields) group() *huh.Group {
	fields := make([]huh.Field, 0, len(pf.schema))
	for _, f := range pf.schema {
		fields = append(fields, huh.NewInput().
			Title(f.Key).
			Description(f.Description).
			Value(pf.values[f.Key]))
	}
	return huh.NewGroup(fields...).Title(pf.name)
}

// RunConfigEditor walks through the general settings, file naming, lyrics
// output and every plugin's ConfigSchema, then previews the result. It
// returns the edited copy and whether the user chose to save it.
//
// esc goes back one step; on the first step it cancels.
func RunConfigEditor(current *config.Config, plugins []types.Plugin) (*config.Config, bool, error) {
	cfg := current.Clone()

	var sections []*pluginFields
	for _, p := range plugins {
		if len(p.Descriptor().ConfigSchema) == 0 {
			continue
		}
		sections = append(sections, newPluginFields(p, cfg.Plugins[p.Descriptor().Key()]))
	}

	level := cfg.Logger.Level
	if level == "" {
		level = "info"
	}

	step := 0
	for {
		ClearAndPrintBanner("config edit")

		var form *huh.Form
		switch step {
		case 0:
			form = huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("Download path").
					Description("\nDirectory lyrics are saved to").
					Value(&cfg.DownloadPath).
					Validate(required("download path")),
				huh.NewConfirm().
					Title("Create album/playlist folders?").
					Value(&cfg.CreateFolder),
				huh.NewConfirm().
					Title("Overwrite existing files?").
					Value(&cfg.ForceDownload),
				huh.NewConfirm().
					Title("Transliterate file names to ASCII?").
					Value(&cfg.ASCIIFilenames),
			))

		case 1:
			form = huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("File name").
					Description("\n{track_number} {name} {artist} {album_name} {explicit}").
					Value(&cfg.FileName).
					Validate(required("file name")),
				huh.NewInput().
					Title("Album folder").
					Description("\n{name} {artists}").
					Value(&cfg.AlbumFolderName),
				huh.NewInput().
					Title("Playlist folder").
					Description("\n{name} {owner}").
					Value(&cfg.PlaylistFolderName),
			))

		case 2:
			form = huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title("Save synced lyrics?").
					Description("Plain text is saved when off").
					Value(&cfg.SyncedLyrics),
				huh.NewConfirm().
					Title("Use Enhanced LRC for word-synced lyrics?").
					Value(&cfg.EnhancedLRC),
				huh.NewSelect[string]().
					Title("Log level").
					Options(huh.NewOptions("debug", "info", "warn", "error")...).
					Value(&level),
			))

		case 3:
			if len(sections) == 0 {
				step++
				continue
			}
			groups := make([]*huh.Group, 0, len(sections))
			for _, s := range sections {
				groups = append(groups, s.group())
			}
			form = huh.NewForm(groups...)

		case 4:
			cfg.Logger.Level = level
			for _, s := range sections {
				s.apply(cfg)
			}
			if err := config.Validate(cfg); err != nil {
				return nil, false, err
			}

			confirmed, err := showPreviewAndConfirm(cfg)
			if err != nil {
				if errors.Is(HandleAbort(err), ErrUserBack) {
					step = 3
					if len(sections) == 0 {
						step = 2
					}
					continue
				}
				return nil, false, HandleAbort(err)
			}
			if !confirmed && logger != nil {
				logger.Info(StyleDim.Render("Config unchanged"))
			}
			return cfg, confirmed, nil
		}

		if err := RunForm(form); err != nil {
			err = HandleAbort(err)
			if errors.Is(err, ErrUserBack) && step > 0 {
				step--
				continue
			}
			if errors.Is(err, ErrUserBack) {
				return nil, false, ErrCancelled
			}
			return nil, false, err
		}
		step++
	}
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
