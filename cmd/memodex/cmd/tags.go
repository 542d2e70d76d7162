package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harukit/memodex/internal/output"
	"github.com/harukit/memodex/pkg/searcher"
)

func newTagsCmd() *cobra.Command {
	var indexDir string

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List every tag in the corpus with its document count",
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
			out.Tags(s.ListTags(), s.Internal().TagCounts())
			return nil
		},
	}

	cmd.Flags().StringVar(&indexDir, "index-dir", "", "Index directory (overrides config)")
	return cmd
}
