// Command blockcorectl is the operator-facing wrapper around the
// persistence core: open a store backed by a bbolt file, inspect the
// tip and height ranges, and exercise the overlay's stage/commit/discard
// cycle. Grounded on cobra's RunE/SilenceErrors conventions as used in
// opal-lang-opal/cli/main.go, the only retained example wiring
// github.com/spf13/cobra.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rubinchain/blockcore/blockstore"
	"github.com/rubinchain/blockcore/chain"
	"github.com/rubinchain/blockcore/kv/boltkv"
	"github.com/rubinchain/blockcore/nodecfg"
	"github.com/rubinchain/blockcore/obslog"
	"github.com/rubinchain/blockcore/obsmetrics"
	"github.com/rubinchain/blockcore/overlay"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := nodecfg.DefaultConfig()
	var metricsAddr string

	root := &cobra.Command{
		Use:           "blockcorectl",
		Short:         "Inspect and exercise a blockcore persistence store",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory")
	root.PersistentFlags().StringVar(&cfg.ChainIDHex, "chain-id", cfg.ChainIDHex, "hex chain id, selects the database subdirectory")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn, or error")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")

	root.AddCommand(newTipCmd(&cfg, &metricsAddr))
	root.AddCommand(newRangeCmd(&cfg, &metricsAddr))
	root.AddCommand(newStageDemoCmd(&cfg, &metricsAddr))
	return root
}

// openMetrics starts a Prometheus collector registry and, if addr is
// non-empty, serves it over HTTP in the background so an operator can
// point a scraper at a long-running blockcorectl invocation. A nil
// *obsmetrics.Collectors is a valid, fully inert value: every metrics
// update in blockstore/overlay is nil-guarded.
func openMetrics(addr string) (*obsmetrics.Collectors, error) {
	if addr == "" {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	collectors, err := obsmetrics.NewCollectors(reg, "blockcore")
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
	return collectors, nil
}

// openStore validates cfg, ensures the data directory exists, and opens
// a BlockStore over a bbolt-backed backend.
func openStore(cfg *nodecfg.Config, metricsAddr string) (*blockstore.BlockStore, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, nil, err
	}
	logger, err := obslog.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	metrics, err := openMetrics(metricsAddr)
	if err != nil {
		return nil, nil, err
	}
	backend, err := boltkv.Open(cfg.DBPath())
	if err != nil {
		return nil, nil, err
	}
	store, err := blockstore.Open(backend, logger, metrics)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return store, backend.Close, nil
}

func newTipCmd(cfg *nodecfg.Config, metricsAddr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tip",
		Short: "Print the highest (height, hash) pair in the order tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openStore(cfg, *metricsAddr)
			if err != nil {
				return err
			}
			defer closeFn()

			height, hash, err := store.GetLast()
			if err != nil {
				return fmt.Errorf("tip: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", height, hash)
			return nil
		},
	}
}

func newRangeCmd(cfg *nodecfg.Config, metricsAddr *string) *cobra.Command {
	var after, count uint64
	c := &cobra.Command{
		Use:   "range",
		Short: "Print up to count+1 hashes at contiguous heights strictly greater than after",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openStore(cfg, *metricsAddr)
			if err != nil {
				return err
			}
			defer closeFn()

			hashes, err := store.GetAfter(after, count)
			if err != nil {
				return fmt.Errorf("range: %w", err)
			}
			for i, h := range hashes {
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", after+uint64(i)+1, h)
			}
			return nil
		},
	}
	c.Flags().Uint64Var(&after, "after", 0, "height to start after")
	c.Flags().Uint64Var(&count, "count", 10, "entries to print beyond the first (at most count+1 are printed)")
	return c
}

// newStageDemoCmd stages a single synthetic block/order/difficulty
// triple through the overlay, then either commits or discards it — a
// smoke test for the overlay's stage/commit/discard contract that
// doubles as a worked example for callers embedding the package.
func newStageDemoCmd(cfg *nodecfg.Config, metricsAddr *string) *cobra.Command {
	var height uint64
	var discard bool
	c := &cobra.Command{
		Use:   "stage-demo",
		Short: "Stage a synthetic block at --height through the overlay, then commit or --discard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.EnsureDataDir(); err != nil {
				return err
			}

			backend, err := boltkv.Open(cfg.DBPath())
			if err != nil {
				return err
			}
			defer backend.Close()

			logger, err := obslog.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			metrics, err := openMetrics(*metricsAddr)
			if err != nil {
				return err
			}
			ov, err := overlay.New(backend, logger, metrics)
			if err != nil {
				return err
			}

			header := chain.Header{Version: 1, Timestamp: height}
			block := chain.Block{HeaderHash: header.Hash()}
			hashes, err := ov.Insert([]chain.Block{block})
			if err != nil {
				return err
			}
			if err := ov.InsertOrder([]uint64{height}, hashes); err != nil {
				return err
			}
			difficulty := chain.GenesisDifficulty(height)
			difficulty.Height = height
			if err := ov.InsertDifficulty([]chain.BlockDifficulty{difficulty}); err != nil {
				return err
			}

			if discard {
				ov.Discard()
				fmt.Fprintf(cmd.OutOrStdout(), "discarded staged block %s at height %d\n", hashes[0], height)
				return nil
			}
			if err := ov.Commit(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "committed block %s at height %d\n", hashes[0], height)
			return nil
		},
	}
	c.Flags().Uint64Var(&height, "height", 0, "height to stage the synthetic block at")
	c.Flags().BoolVar(&discard, "discard", false, "discard the staged write instead of committing it")
	return c
}
