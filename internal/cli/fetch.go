package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LeJamon/goPriceOracle/internal/node"
	"github.com/LeJamon/goPriceOracle/internal/offchain/fetcher"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the price once from the configured feed",
	Long: `Run one fetch against the configured [feed] and print the price as the
16.16 fixed-point value the node would submit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		f, err := fetcher.New(node.FetcherConfig(cfg.Feed), fetcher.WithLogger(logger))
		if err != nil {
			return err
		}

		p, err := f.FetchPrice(cmd.Context())
		if err != nil {
			logger.WithError(err).WithField("endpoint", f.Endpoint()).Error("fetch failed")
			return err
		}
		logger.WithFields(logrus.Fields{"endpoint": f.Endpoint(), "bits": p.Bits()}).Debug("fetched")
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (bits 0x%08X)\n", cfg.Feed.Symbol, p.String(), p.Bits())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
