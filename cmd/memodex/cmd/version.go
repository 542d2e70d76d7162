package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harukit/memodex/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the memodex version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("memodex version %s\n", version.Version)
		},
	}
}
