// Package cli implements the shopdesk command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	cfgFile string
	verbose bool
	quiet   bool
)

var out = styles.Default()

var rootCmd = &cobra.Command{
	Use:   "shopdesk",
	Short: "Knowledge base lookups for voice customer support",
	Long: `shopdesk builds a vector index from a company knowledge document and
answers order, policy and product lookups against it.

Build the index once with 'shopdesk index build', then query it directly,
call the lookup tools, or expose them to an agent with 'shopdesk mcp serve'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetQuiet(quiet)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.shopdesk/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational log lines")
}

// SetVersion sets the version reported by 'shopdesk version'.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}
