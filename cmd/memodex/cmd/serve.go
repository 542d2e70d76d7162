package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harukit/memodex/internal/mcp"
	"github.com/harukit/memodex/pkg/searcher"
)

func newServeCmd() *cobra.Command {
	var indexDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Serve exposes the index to MCP clients (Claude Code, Cursor) over
stdio with three tools: query_memos, list_tags, and get_recent_memos.

stdout carries JSON-RPC framing exclusively; all logs go to stderr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if indexDir == "" {
				indexDir = cfg.Index.Dir
			}

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

			server, err := mcp.NewServer(s.Internal())
			if err != nil {
				return err
			}
			return server.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&indexDir, "index-dir", "", "Index directory (overrides config)")
	return cmd
}
