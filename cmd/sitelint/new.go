package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitelint"
)

func newNewCommand(a *app) *cobra.Command {
	var (
		dir   string
		draft bool
		tags  []string
	)
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a post with valid front matter",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.module.NewPost(cmd.Context(), sitelint.NewPostCommand{
				Root:  a.config.Root,
				Title: strings.Join(args, " "),
				Dir:   dir,
				Draft: draft,
				Tags:  tags,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory relative to the root (default is the content directory)")
	cmd.Flags().BoolVar(&draft, "draft", true, "mark the post as a draft")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma separated tags")
	return cmd
}
