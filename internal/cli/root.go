package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mydehq/lrcfetch/internal/config"
	"github.com/mydehq/lrcfetch/internal/ui"
)

var (
	flagDirectory string
	flagForce     bool
	flagVerbose   bool
	flagQuiet     bool
	flagConfig    string

	logger = ui.NewLogger(os.Stderr)

	// cfgManager is loaded before every command not marked skipConfig.
	cfgManager *config.Manager
)

// errNothingSaved ends a fetch that saved no file. Its cause was already
// reported, so Execute only sets the exit code.
var errNothingSaved = errors.New("no lyrics saved")

// skipConfig marks commands that must work without a readable config file.
const skipConfig = "skipConfig"

var RootCmd = &cobra.Command{
	Use:   "lrcfetch [url]",
	Short: "Fetch synced lyrics and save them as LRC files",
	Long: "Fetch lyrics for a track, album or playlist URL and save them as LRC files.\n" +
		"The provider is chosen by matching the URL against each installed provider's pattern.",
	SilenceErrors: true,
	SilenceUsage:  true,
	Args:          cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: fetchRunE,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	if !errors.Is(err, errNothingSaved) {
		logger.Error(err)
	}
	os.Exit(1)
}

func init() {
	RootCmd.Flags().StringVarP(&flagDirectory, "directory", "d", "", "Save lyrics to this directory instead of downloadPath")
	RootCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Overwrite existing lyrics files")
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output")
	RootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress output except errors")
	RootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Custom configuration file path")

	ui.SetLogger(logger)
	colorizeHelp(RootCmd)
}

// setup applies the flag log level, loads the config and then applies its
// logger settings. Flags win over the config.
func setup(cmd *cobra.Command) error {
	if err := logger.Apply("", "", flagVerbose, flagQuiet); err != nil {
		return err
	}
	if cmd.Annotations[skipConfig] != "" {
		return nil
	}

	m, err := config.Load(flagConfig, config.WithLogger(logger.Logger))
	if err != nil {
		return err
	}
	cfgManager = m

	lc := m.Get().Logger
	return logger.Apply(lc.Level, lc.Format, flagVerbose, flagQuiet)
}

// configPath is the file config commands operate on.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultPath()
}
