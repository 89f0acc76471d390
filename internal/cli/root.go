package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LeJamon/goPriceOracle/internal/config"
	"github.com/LeJamon/goPriceOracle/internal/node"
)

var (
	// Global flags
	configFile string
	debug      bool
	verbose    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "priced",
	Short: "priced - on-chain price oracle node",
	Long: `priced runs a single-node devnet that keeps an on-chain price oracle.
Every block an off-chain worker fetches the spot price from a public HTTP
feed, signs a set_prices request and queues it for the next block, where
registered signers' prices are stored and periodically snapshotted into a
moving average.`,
	Version:      node.Version,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (default: ./priced.toml if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
}

// loadConfig reads --conf, or priced.toml from the working directory, on
// top of defaults and PRICED_ environment variables.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadConfig(configFile)
	}
	return config.LoadDefaultConfig()
}

// newLogger applies the [log] section and the verbosity flags.
func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	if err := cfg.Apply(logger); err != nil {
		return nil, err
	}
	switch {
	case verbose:
		logger.SetLevel(logrus.TraceLevel)
	case debug:
		logger.SetLevel(logrus.DebugLevel)
	case quiet:
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger, nil
}
