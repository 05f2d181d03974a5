package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meigma/pathindex"
)

func (c *cli) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] <archive>...",
		Short: "Build the index of a search path",
		Long: `Build scans the given archives, in search-path order, and writes their
index to --output.

Example:
  pathindex build --app-root app --main-class com.acme.Main \
      --parent-first app/boot/api.jar -o app/pathindex.idx app/lib/*.jar`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runBuild,
	}

	f := cmd.Flags()
	f.String("app-root", ".", "directory entry paths are recorded relative to")
	f.String("main-class", "", "application entry point")
	f.StringSlice("parent-first", nil, "archive or directory whose packages resolve parent-first (repeatable)")
	f.StringSlice("non-existent", nil, "resource name known to be absent from the search path (repeatable)")
	f.Int("workers", 0, "archives scanned concurrently: <0 serial, 0 auto")
	f.String("compression", "none", "index compression: none, zstd, lz4")
	f.StringP("output", "o", "pathindex.idx", "index file to write")
	f.String("fgprofile", "", "write fgprof (wall clock) profile to file")
	f.String("cpuprofile", "", "write CPU profile to file")
	return cmd
}

func (c *cli) runBuild(cmd *cobra.Command, args []string) error {
	compression, err := pathindex.ParseCompression(c.v.GetString("compression"))
	if err != nil {
		return err
	}

	stop, err := startProfiles(c.v.GetString("fgprofile"), c.v.GetString("cpuprofile"))
	if err != nil {
		return err
	}
	defer func() {
		if err := stop(); err != nil {
			c.logger.Warn("stop profiling", "error", err)
		}
	}()

	appRoot, err := filepath.Abs(c.v.GetString("app-root"))
	if err != nil {
		return err
	}
	classPath := make([]string, len(args))
	for i, arg := range args {
		if classPath[i], err = filepath.Abs(arg); err != nil {
			return err
		}
	}

	idx, err := pathindex.Build(cmd.Context(), appRoot, c.v.GetString("main-class"), classPath,
		pathindex.BuildWithParentFirst(c.v.GetStringSlice("parent-first")...),
		pathindex.BuildWithNonExistentResources(c.v.GetStringSlice("non-existent")...),
		pathindex.BuildWithWorkers(c.v.GetInt("workers")),
		pathindex.BuildWithLogger(c.logger),
		pathindex.BuildWithProgress(func(ev pathindex.ProgressEvent) {
			c.logger.Debug("progress", "stage", ev.Stage, "path", ev.Path, "done", ev.Done, "total", ev.Total)
		}),
	)
	if err != nil {
		return err
	}

	output := c.v.GetString("output")
	dgst, err := pathindex.SaveFile(output, idx, pathindex.SaveWithCompression(compression))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", titleStyle.Render("wrote"), output)
	fmt.Fprintf(cmd.OutOrStdout(), "  entries:     %d\n", len(idx.Entries))
	fmt.Fprintf(cmd.OutOrStdout(), "  directories: %d\n", len(idx.Directories))
	fmt.Fprintf(cmd.OutOrStdout(), "  resources:   %d\n", len(idx.Resources))
	fmt.Fprintf(cmd.OutOrStdout(), "  compression: %s\n", compression)
	fmt.Fprintf(cmd.OutOrStdout(), "  digest:      %s\n", dgst)
	return nil
}
