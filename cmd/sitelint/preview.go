package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newPreviewCommand(a *app) *cobra.Command {
	var html bool
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Show a post's front matter, findings and rendered HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preview, err := a.module.Preview(cmd.Context(), a.config.Root, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			post := preview.Post

			fmt.Fprintf(out, "Path: %s\nFormat: %s\nChecksum: %x\n\n", post.Path, post.Format, post.Checksum)
			if post.FrontMatterErr != nil {
				fmt.Fprintf(out, "Front matter error: %v\n\n", post.FrontMatterErr)
			} else if post.FrontMatter != nil {
				frontMatter, err := json.MarshalIndent(post.FrontMatter, "", "  ")
				if err == nil {
					fmt.Fprintf(out, "Front matter:\n%s\n\n", frontMatter)
				}
			}

			if len(preview.Findings) == 0 {
				fmt.Fprintln(out, "Findings: none")
			} else {
				fmt.Fprintln(out, "Findings:")
				for _, f := range preview.Findings {
					fmt.Fprintf(out, "  %s: %s: %s [%s]\n", f.Location(), f.Severity, f.Message, f.Rule)
				}
			}

			if html {
				fmt.Fprintf(out, "\nRendered HTML:\n%s\n", preview.HTML)
			} else {
				fmt.Fprintf(out, "\nMarkdown body:\n%s\n", post.Body)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&html, "html", true, "print rendered HTML instead of the Markdown body")
	return cmd
}
