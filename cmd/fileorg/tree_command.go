package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fileorg/internal/config"
	"fileorg/internal/tree"
)

func newTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "tree <dir>",
		Short:       "Print the directory tree of a folder",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			node, err := tree.FromDirectory(root)
			if err != nil {
				return fmt.Errorf("read %s: %w", root, err)
			}
			return node.Render(cmd.OutOrStdout())
		},
	}
}
