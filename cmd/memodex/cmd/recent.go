package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harukit/memodex/internal/output"
	"github.com/harukit/memodex/pkg/searcher"
)

func newRecentCmd() *cobra.Command {
	var (
		indexDir string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent memos by date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if indexDir == "" {
				indexDir = cfg.Index.Dir
			}

			s, err := searcher.Open(indexDir)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			out.RecentDocs(s.Recent(limit))
			return nil
		},
	}

	cmd.Flags().StringVar(&indexDir, "index-dir", "", "Index directory (overrides config)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of memos")
	return cmd
}
