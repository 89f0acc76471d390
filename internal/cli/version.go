package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goPriceOracle/internal/node"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version information for priced including build details and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "priced version %s\n", node.Version)
		if node.GitCommit != "" {
			fmt.Fprintf(out, "Git commit hash: %s\n", node.GitCommit)
		}
		if node.BuildTime != "" {
			fmt.Fprintf(out, "Build timestamp: %s\n", node.BuildTime)
		}
		fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
		fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
