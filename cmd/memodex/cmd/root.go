// Package cmd provides the CLI commands for memodex.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harukit/memodex/internal/config"
	"github.com/harukit/memodex/internal/embed"
	"github.com/harukit/memodex/internal/logging"
	"github.com/harukit/memodex/internal/telemetry"
	"github.com/harukit/memodex/pkg/version"
)

var (
	configPath string
	debugMode  bool
)

// timeRound trims duration noise in CLI output.
const timeRound = 10 * time.Millisecond

// NewRootCmd creates the root command for the memodex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memodex",
		Short: "Hybrid search over a personal changelog/memo corpus",
		Long: `memodex indexes tagged, dated memo entries and answers ranked
queries in three modes: bm25 (keyword), semantic (embeddings), and
hybrid (both, fused with Reciprocal Rank Fusion).

Typical flow:

  memodex init
  memodex build --input changelog.md
  memodex search "vector index"
  memodex serve`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("memodex version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFileName, "Path to the config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		logging.Setup(debugMode)
		config.LoadEnv()
	}

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newTagsCmd())
	cmd.AddCommand(newRecentCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command. Ctrl-C cancels the command context so
// serve and watch shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// loadConfig reads the configured config file over the defaults.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// newEmbedder builds the configured embedding client wrapped in an LRU
// cache, or nil when no API key is available. Callers treat nil as
// "semantic capability off".
func newEmbedder(cfg *config.Config, usage *telemetry.UsageStats) (embed.Embedder, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, nil
	}
	client, err := embed.NewOpenRouterEmbedder(apiKey,
		embed.WithModel(cfg.Embedding.Model),
		embed.WithBaseURL(cfg.Embedding.BaseURL),
		embed.WithUsage(usage),
	)
	if err != nil {
		return nil, err
	}
	cached, err := embed.NewCachedEmbedder(client, cfg.Embedding.CacheSize, usage)
	if err != nil {
		return nil, err
	}
	slog.Debug("embedder_configured", slog.String("model", cfg.Embedding.Model))
	return cached, nil
}
