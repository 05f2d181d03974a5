package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meigma/pathindex"
)

func (c *cli) newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [flags] <index>",
		Short: "Print the contents of an index",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runInspect,
	}
	cmd.Flags().String("app-root", ".", "directory entry paths are resolved against")
	cmd.Flags().Bool("directories", false, "list every directory with its entries")
	return cmd
}

func (c *cli) runInspect(cmd *cobra.Command, args []string) error {
	app, err := pathindex.OpenFile(args[0], c.v.GetString("app-root"), pathindex.ReadWithLogger(c.logger))
	if err != nil {
		return err
	}
	defer app.Close()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("index"), args[0])
	fmt.Fprintf(w, "  main class: %s\n", app.MainClass())
	fmt.Fprintf(w, "  digest:     %s\n", app.Digest())

	fmt.Fprintln(w, titleStyle.Render("entries"))
	for _, e := range app.Entries() {
		fmt.Fprintf(w, "  %3d %s\n", e.Position(), e.Path())
		if m := e.Manifest(); m != nil {
			printManifest(w, m)
		}
	}

	printList(w, "override packages", app.OverridePackages())
	printList(w, "known absent", app.KnownAbsent())

	fmt.Fprintln(w, titleStyle.Render("resources"))
	for _, name := range app.Resources() {
		fmt.Fprintf(w, "  %s %s\n", name, mutedStyle.Render(positions(app.Resource(name))))
	}

	if c.v.GetBool("directories") {
		fmt.Fprintln(w, titleStyle.Render("directories"))
		for _, dir := range app.Directories() {
			name := dir
			if name == "" {
				name = "/"
			}
			fmt.Fprintf(w, "  %s %s\n", name, mutedStyle.Render(positions(app.Directory(dir))))
		}
	} else {
		fmt.Fprintf(w, "%s %d\n", titleStyle.Render("directories"), len(app.Directories()))
	}
	return nil
}

func printManifest(w io.Writer, m *pathindex.Manifest) {
	attrs := []struct {
		name  string
		value pathindex.NullString
	}{
		{"Specification-Title", m.SpecificationTitle},
		{"Specification-Version", m.SpecificationVersion},
		{"Specification-Vendor", m.SpecificationVendor},
		{"Implementation-Title", m.ImplementationTitle},
		{"Implementation-Version", m.ImplementationVersion},
		{"Implementation-Vendor", m.ImplementationVendor},
	}
	for _, a := range attrs {
		if a.value.Valid {
			fmt.Fprintf(w, "      %s: %s\n", a.name, a.value.String)
		}
	}
}

func printList(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "%s %d\n", titleStyle.Render(title), len(items))
	for _, item := range items {
		fmt.Fprintf(w, "  %s\n", item)
	}
}

// positions formats entry positions as "[0 2 5]".
func positions(entries []*pathindex.Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprint(e.Position())
	}
	return "[" + strings.Join(parts, " ") + "]"
}
