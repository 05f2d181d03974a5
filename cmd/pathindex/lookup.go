package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/meigma/pathindex"
)

func (c *cli) newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup [flags] <index> <name>...",
		Short: "Show which entries may hold a resource",
		Long: `Lookup prints, in priority order, the search-path entries that may hold
each name. With --resolve the archives are opened and the entry actually
serving the resource is reported.

Example:
  pathindex lookup --app-root app app/pathindex.idx com/acme/Main.class`,
		Args: cobra.MinimumNArgs(2),
		RunE: c.runLookup,
	}
	cmd.Flags().String("app-root", ".", "directory entry paths are resolved against")
	cmd.Flags().Bool("dir", false, "treat names as directories")
	cmd.Flags().Bool("resolve", false, "open archives to find the serving entry")
	return cmd
}

func (c *cli) runLookup(cmd *cobra.Command, args []string) error {
	app, err := pathindex.OpenFile(args[0], c.v.GetString("app-root"), pathindex.ReadWithLogger(c.logger))
	if err != nil {
		return err
	}
	defer app.Close()

	w := cmd.OutOrStdout()
	for _, name := range args[1:] {
		if c.v.GetBool("dir") {
			fmt.Fprintf(w, "%s %s\n", titleStyle.Render(name), positions(app.Directory(name)))
			continue
		}
		if app.IsKnownAbsent(name) {
			fmt.Fprintf(w, "%s %s\n", titleStyle.Render(name), mutedStyle.Render("known absent"))
			continue
		}
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render(name), positions(app.Resource(name)))
		if !c.v.GetBool("resolve") {
			continue
		}

		rc, e, err := app.OpenResource(name)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fmt.Fprintf(w, "  %s\n", mutedStyle.Render("not found"))
		case err != nil:
			return err
		default:
			rc.Close()
			fmt.Fprintf(w, "  served by %d %s\n", e.Position(), e.Path())
		}
	}
	return nil
}
