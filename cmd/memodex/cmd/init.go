package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harukit/memodex/internal/config"
	"github.com/harukit/memodex/internal/output"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a memodex.toml in the current directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WriteDefault(configPath, force); err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())
			out.Successf("wrote %s", configPath)
			out.Printf("Edit the inputs, then run: memodex build\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
