package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is set via -ldflags.
var Version = "dev"

const envPrefix = "PATHINDEX"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// cli carries state shared by every subcommand.
type cli struct {
	v      *viper.Viper
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "pathindex",
		Short: "Build and inspect search-path indexes",
		Long: `pathindex precomputes which archives on an application's search path
hold which directories and resources, and stores the result in a compact
binary index that can be loaded at startup.

Every flag may also be set in a config file (--config) or through an
environment variable named PATHINDEX_<FLAG>, e.g. PATHINDEX_COMPRESSION=zstd.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(c.newBuildCmd(), c.newInspectCmd(), c.newLookupCmd())
	return root
}

// init loads configuration and installs the logger for the running command.
func (c *cli) init(cmd *cobra.Command) error {
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if err := c.bind(cmd.Flags()); err != nil {
		return err
	}
	if path := c.v.GetString("config"); path != "" {
		c.v.SetConfigFile(path)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	level, err := log.ParseLevel(c.v.GetString("log-level"))
	if err != nil {
		return err
	}
	c.logger = newLogger(cmd.ErrOrStderr(), level)
	return nil
}

// bind makes the flags of the running command visible through viper. Only
// the running command's flags are bound, so subcommands may share names.
func (c *cli) bind(flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		errs = append(errs, c.v.BindPFlag(f.Name, f))
	})
	return errors.Join(errs...)
}

// newLogger returns a slog logger backed by charmbracelet/log. Output that
// is not a terminal is written as logfmt.
func newLogger(w io.Writer, level log.Level) *slog.Logger {
	formatter := log.LogfmtFormatter
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		formatter = log.TextFormatter
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "pathindex",
		ReportTimestamp: true,
		Formatter:       formatter,
	}))
}
