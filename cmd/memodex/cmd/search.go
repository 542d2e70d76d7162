package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harukit/memodex/internal/output"
	"github.com/harukit/memodex/internal/store"
	"github.com/harukit/memodex/pkg/searcher"
)

func newSearchCmd() *cobra.Command {
	var (
		indexDir string
		topK     int
		modeName string
		tag      string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if indexDir == "" {
				indexDir = cfg.Index.Dir
			}
			if modeName == "" {
				modeName = cfg.Search.Mode
			}
			if topK <= 0 {
				topK = cfg.Search.TopK
			}

			mode, err := searcher.ParseMode(modeName)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())

			embedder, err := newEmbedder(cfg, nil)
			if err != nil {
				return err
			}
			opts := []searcher.Option{}
			if embedder != nil {
				defer embedder.Close()
				opts = append(opts, searcher.WithEmbedder(embedder))
			}

			s, err := searcher.Open(indexDir, opts...)
			if err != nil {
				return err
			}

			if mode != searcher.ModeBM25 && !s.HasVectorIndex() {
				out.Warningf("no vector index in %s; %s results are keyword-only", indexDir, modeName)
			}

			results, err := s.Search(cmd.Context(), args[0], searcher.Options{
				Mode: mode,
				TopK: topK,
				Tag:  tag,
			})
			if err != nil {
				return err
			}

			out.SearchResults(results, func(id string) (store.Document, bool) {
				return s.Internal().Document(id)
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&indexDir, "index-dir", "", "Index directory (overrides config)")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Maximum number of results (overrides config)")
	cmd.Flags().StringVar(&modeName, "mode", "", "Search mode: bm25, semantic, or hybrid (overrides config)")
	cmd.Flags().StringVar(&tag, "tag", "", "Only return memos carrying this tag")
	return cmd
}
