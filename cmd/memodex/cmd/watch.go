package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harukit/memodex/internal/output"
	"github.com/harukit/memodex/internal/telemetry"
	"github.com/harukit/memodex/internal/watcher"
	"github.com/harukit/memodex/pkg/indexer"
)

func newWatchCmd() *cobra.Command {
	var (
		inputs []string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the corpus files and rebuild incrementally on change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				inputs = cfg.Index.Inputs
			}
			if outDir == "" {
				outDir = cfg.Index.Dir
			}

			out := output.New(cmd.OutOrStdout())
			usage := telemetry.NewUsageStats()
			embedder, err := newEmbedder(cfg, usage)
			if err != nil {
				return err
			}
			if embedder != nil {
				defer embedder.Close()
			}

			ix := indexer.New(
				indexer.WithEmbedder(embedder),
				indexer.WithUsage(usage),
			)

			w, err := watcher.NewFileWatcher(inputs, cfg.DebounceWindow())
			if err != nil {
				return err
			}

			out.Successf("watching %d file(s); press Ctrl-C to stop", len(inputs))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return w.Run(ctx)
			})
			g.Go(func() error {
				for {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case batch, ok := <-w.Batches():
						if !ok {
							return nil
						}
						slog.Info("rebuild_triggered", slog.Int("event_count", len(batch)))
						result, err := ix.BuildFromFiles(ctx, inputs, outDir)
						if err != nil {
							// A bad intermediate save state should not kill
							// watch mode; the next change retries.
							out.Warningf("rebuild failed: %v", err)
							continue
						}
						out.Successf("rebuilt: %d docs (%d embedded, %d unchanged)",
							result.DocCount, result.EmbeddedCount, result.SkippedCount)
					}
				}
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringArrayVar(&inputs, "input", nil, "Input file (repeatable; overrides config)")
	cmd.Flags().StringVar(&outDir, "output", "", "Index directory (overrides config)")
	return cmd
}
