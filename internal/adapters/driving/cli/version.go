package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "Print the shopdesk version, the index format it reads and writes, and the Go runtime.",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("shopdesk version %s\n", version)
		cmd.Printf("index format %d, %s %s/%s\n", domain.IndexFormatVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
