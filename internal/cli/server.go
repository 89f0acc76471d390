package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LeJamon/goPriceOracle/internal/node"
)

var (
	// Node flags
	listenAddr string
	dataDir    string
	memoryDB   bool
)

// nodeCmd represents the node command (default action)
var nodeCmd = &cobra.Command{
	Use:     "node",
	Aliases: []string{"server"},
	Short:   "Start the oracle node",
	Long: `Start the priced node which provides:
- a devnet producing a block every block_interval
- the off-chain price worker (fetch, sign, submit)
- HTTP JSON-RPC and WebSocket price subscriptions
- Prometheus metrics and a health check endpoint

This is the default command when no subcommand is specified.`,
	RunE: runNode,
}

func init() {
	rootCmd.AddCommand(nodeCmd)

	// Set node as the default command
	rootCmd.RunE = runNode

	// Node-specific flags
	nodeCmd.Flags().StringVar(&listenAddr, "listen", "", "RPC listen address (overrides rpc.listen)")
	nodeCmd.Flags().StringVar(&dataDir, "data-dir", "", "data directory (overrides node.data_dir)")
	nodeCmd.Flags().BoolVar(&memoryDB, "memory", false, "keep state in memory only")
}

func runNode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.RPC.Listen = listenAddr
	}
	if dataDir != "" {
		cfg.Node.DataDir = dataDir
	}
	if memoryDB {
		cfg.Node.Backend = "memory"
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := node.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build node: %w", err)
	}
	defer func() {
		if err := n.Close(); err != nil {
			logger.WithError(err).Error("close node")
		}
	}()

	addr, err := n.Listen()
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"version":  node.Version,
		"config":   cfg.GetConfigPath(),
		"backend":  cfg.Node.Backend,
		"interval": cfg.Node.BlockInterval,
		"feed":     cfg.Feed.URL,
		"symbol":   cfg.Feed.Symbol,
	}).Info("starting priced")
	if addr != "" {
		logger.Infof("JSON-RPC: http://%s/  WebSocket: ws://%s/ws  Metrics: http://%s/metrics", addr, addr, addr)
	}

	return n.Run(ctx)
}
