package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harukit/memodex/internal/output"
	"github.com/harukit/memodex/internal/telemetry"
	"github.com/harukit/memodex/pkg/indexer"
)

func newBuildCmd() *cobra.Command {
	var (
		inputs         []string
		outDir         string
		skipEmbeddings bool
		withEmbeddings bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the index artifacts from the corpus files",
		Long: `Build parses the input files, constructs the BM25 index and docstore,
and persists them with metadata. With an API key configured (and unless
--skip-embeddings is passed), embeddings are generated too, enabling
semantic and hybrid search.

When the previous build's metadata is present, only added and modified
documents are re-embedded; removed documents are dropped.`,
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
			if skipEmbeddings {
				embedder = nil
			}
			if withEmbeddings && embedder == nil {
				return fmt.Errorf("--with-embeddings requires %s to be set", cfg.Embedding.APIKeyEnv)
			}
			if embedder != nil {
				defer embedder.Close()
			} else {
				out.Warning("no embedding API key; building keyword-only index")
			}

			ix := indexer.New(
				indexer.WithEmbedder(embedder),
				indexer.WithUsage(usage),
				indexer.WithProgress(func(stage string, current, total int) {
					if total > 0 {
						out.Printf("\r%s: %d/%d", stage, current, total)
						if current == total {
							out.Newline()
						}
					}
				}),
			)

			result, err := ix.BuildFromFiles(cmd.Context(), inputs, outDir)
			if err != nil {
				return err
			}

			if result.Incremental {
				out.Successf("incremental build: %d docs (%d embedded, %d unchanged, %d removed) in %s",
					result.DocCount, result.EmbeddedCount, result.SkippedCount, result.RemovedCount,
					result.Duration.Round(timeRound))
			} else {
				out.Successf("full build: %d docs (%d embedded) in %s",
					result.DocCount, result.EmbeddedCount, result.Duration.Round(timeRound))
			}

			if snap := usage.Snapshot(); snap.EmbeddingCalls > 0 {
				out.Printf("embedding API: %d calls, %d tokens (%d cache hits)\n",
					snap.EmbeddingCalls, snap.TotalTokens, snap.CacheHits)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&inputs, "input", nil, "Input file (repeatable; overrides config)")
	cmd.Flags().StringVar(&outDir, "output", "", "Index directory (overrides config)")
	cmd.Flags().BoolVar(&skipEmbeddings, "skip-embeddings", false, "Build the keyword index only")
	cmd.Flags().BoolVar(&withEmbeddings, "with-embeddings", false, "Fail instead of degrading when no API key is set")
	return cmd
}
