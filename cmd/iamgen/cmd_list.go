package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udondan/iam-floyd-sub044/pkg"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the service slugs linked from the reference index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		slugs, err := pkg.ListServiceSlugs(cmd.Context(), cfg.NewFetcher())
		if err != nil {
			return err
		}
		fixes, err := pkg.LoadFixRegistry(cfg.FixesFile)
		if err != nil {
			return err
		}
		for _, slug := range slugs {
			if entry, ok := fixes.Lookup(slug); ok && entry.ID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", slug, entry.ID)
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), slug)
		}
		return nil
	},
}
