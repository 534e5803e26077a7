package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mydehq/lrcfetch"
	"github.com/mydehq/lrcfetch/internal/api"
	"github.com/mydehq/lrcfetch/internal/types"
	"github.com/mydehq/lrcfetch/internal/ui"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Fetch lyrics for a track, album or playlist URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  fetchRunE,
}

func fetchRunE(cmd *cobra.Command, args []string) error {
	url := ""
	if len(args) > 0 {
		url = args[0]
	}
	return runFetch(cmd.Context(), url)
}

func init() {
	RootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVarP(&flagDirectory, "directory", "d", "", "Save lyrics to this directory instead of downloadPath")
	fetchCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Overwrite existing lyrics files")
}

func runFetch(ctx context.Context, url string) error {
	var spin *ui.Spinner

	opts := []api.Option{
		api.WithConfigManager(cfgManager),
		api.WithLogger(logger.Logger),
		api.WithEvents(func(e lrcfetch.Event) {
			switch e.Type {
			case lrcfetch.EventProgress:
				if spin != nil {
					spin.Update(e.Message)
				}
				logger.Debug(e.Message)
			case lrcfetch.EventSuccess:
				logger.Success(ui.ColorizeEvent(e.Message))
			case lrcfetch.EventWarning:
				logger.Warn(e.Message)
			case lrcfetch.EventError:
				logger.Error(e.Message)
			default:
				logger.Info(e.Message)
			}
		}),
	}
	if flagDirectory != "" {
		opts = append(opts, api.WithDirectory(flagDirectory))
	}
	if flagForce {
		opts = append(opts, api.WithForce())
	}

	client, err := api.New(opts...)
	if err != nil {
		return err
	}

	if url == "" {
		if !ui.IsTerminal() {
			return errors.New("a URL is required when not running in a terminal")
		}
		url, err = ui.PromptURL(client.Registry().Names())
		if err != nil {
			if errors.Is(err, ui.ErrCancelled) || errors.Is(err, ui.ErrUserBack) {
				logger.Info(ui.StyleDim.Render("Cancelled"))
				return errNothingSaved
			}
			return err
		}
	}

	spin = ui.StartSpinner("Resolving provider")
	logger.SetOutput(spin.Writer())
	report, err := client.Download(ctx, url)
	spin.Stop()
	logger.SetOutput(os.Stderr)

	if merr := client.WriteMetrics(); merr != nil {
		logger.Warn("Failed to write metrics", "error", merr)
	}

	if err != nil {
		reportFailure(client, url, err)
		return errNothingSaved
	}

	printSummary(report)
	if len(report.Saved) == 0 {
		return errNothingSaved
	}
	return nil
}

// reportFailure logs a failed fetch with a hint for the common causes.
func reportFailure(client *api.Client, url string, err error) {
	logger.Error("Failed to fetch lyrics", "url", url, "error", err)

	switch lrcfetch.KindOf(err) {
	case types.KindNoMatchingProvider:
		logger.Info(ui.StyleHeader.Render("Installed providers:"))
		for i, p := range client.Registry().Plugins() {
			d := p.Descriptor()
			pattern := ""
			if d.Pattern != nil {
				pattern = d.Pattern.String()
			}
			logger.Print(fmt.Sprintf("  %s %s %s",
				ui.StyleDim.Render(fmt.Sprintf("%d.", i+1)),
				ui.StyleCommand.Render(d.Name),
				ui.StylePattern.Render(pattern),
			))
		}
	case types.KindConfiguration:
		logger.Info(fmt.Sprintf("Run %s to update provider settings", ui.StyleCommand.Render("lrcfetch config edit")))
	}
}

func printSummary(r *api.Report) {
	if r.Op != "" && r.Op != types.OpFetch {
		label, name := "Album:", ""
		if r.Op == types.OpFetchPlaylist {
			label = "Playlist:"
		}
		if r.Collection != nil {
			name = r.Collection.Name
		}
		logger.Info(fmt.Sprintf("%s %s", ui.StyleHeader.Render(label), ui.StylePath.Render(name)))
		for _, p := range r.Saved {
			logger.Print("  " + ui.StyleCommand.Render("✔ ") + p)
		}
		for _, p := range r.Skipped {
			logger.Print("  " + ui.StylePattern.Render("- ") + ui.StyleDim.Render(p))
		}
		for _, title := range r.Failed {
			logger.Print("  " + ui.StyleFlag.Render("✘ ") + title)
		}
	}

	if len(r.Saved) == 0 && len(r.Skipped) > 0 {
		logger.Warn("Lyrics already exist, use --force to overwrite", "dir", r.Dir)
	}

	logger.Info("Summary",
		"saved", lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Render(fmt.Sprint(len(r.Saved))),
		"skipped", lipgloss.NewStyle().Foreground(lipgloss.Color("192")).Render(fmt.Sprint(len(r.Skipped))),
		"failed", lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Render(fmt.Sprint(len(r.Failed))),
	)
}
