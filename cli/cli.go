// Package cli provides the command-line interface for generating spec
// sheets.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buffalographics/fleet-spec-sheet/config"
	"github.com/buffalographics/fleet-spec-sheet/specsheet"
	"github.com/spf13/cobra"
)

// Version information
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// osExit is a variable for os.Exit to allow testing
var osExit = os.Exit

// now is a variable for time.Now to allow testing
var now = time.Now

// Run executes the CLI with the given arguments.
// This is the main entry point for the CLI.
func Run(args []string) {
	ctx, stop := signalContext()
	defer stop()

	g := newGlobals(os.Stdin, os.Stdout, os.Stderr)
	if err := execute(ctx, g, args[1:]); err != nil {
		if errors.Is(err, specsheet.ErrDetailsCancelled) {
			// dismissing the details prompt is not a failure
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}
}

// signalContext is cancelled on interrupt or termination.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// execute runs one command line and releases the log output afterwards,
// whether or not the command succeeded.
func execute(ctx context.Context, g *globals, args []string) error {
	root := newRootCommand(g)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := g.close(); cerr != nil && err == nil {
		err = fmt.Errorf("close log output: %w", cerr)
	}
	return err
}

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	fontDirs   []string
	workers    int
	verbose    bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    *config.AppConfig
	logger *slog.Logger
	closer io.Closer
}

func newGlobals(stdin io.Reader, stdout, stderr io.Writer) *globals {
	return &globals{stdin: stdin, stdout: stdout, stderr: stderr}
}

func (g *globals) close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}

func newRootCommand(g *globals) *cobra.Command {
	stdin, stdout, stderr := g.stdin, g.stdout, g.stderr
	root := &cobra.Command{
		Use:           "specsheet",
		Short:         "Generate fleet graphics spec sheets from exported artboards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup()
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringSliceVar(&g.fontDirs, "font-dir", nil, "directory searched for the sheet font (repeatable)")
	root.PersistentFlags().IntVar(&g.workers, "workers", 0, "concurrent image loads and page layouts (default one per CPU)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(generateCmd(g), planCmd(g), verifyCmd(g), versionCmd(g))
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (g *globals) setup() error {
	cfg := config.DefaultAppConfig()
	if g.configPath != "" {
		loaded, err := config.LoadAppConfig(g.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if len(g.fontDirs) > 0 {
		cfg.Fonts.Dirs = config.StringList(g.fontDirs)
	}
	if g.workers > 0 {
		cfg.Sheet.Workers = g.workers
	}
	if g.verbose {
		cfg.Logging.Level = "debug"
	}

	logger, closer, err := cfg.Logging.NewLogger(g.stdout, g.stderr)
	if err != nil {
		return err
	}
	g.cfg, g.logger, g.closer = cfg, logger, closer
	return nil
}

func versionCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// no config or logger needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(g.stdout, "specsheet version %s\n", Version)
			fmt.Fprintf(g.stdout, "Build time: %s\n", BuildTime)
			return nil
		},
	}
}
