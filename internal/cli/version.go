package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mydehq/lrcfetch/internal/version"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: map[string]string{skipConfig: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			fmt.Fprintf(cmd.OutOrStdout(), "lrcfetch %s\n", version.String())
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "lrcfetch %s\n", version.Get())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
