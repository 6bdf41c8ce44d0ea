package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dejo1307/fieldparity/internal/config"
	"github.com/dejo1307/fieldparity/internal/engine"
	"github.com/dejo1307/fieldparity/internal/extractors/cppextractor"
	"github.com/dejo1307/fieldparity/internal/extractors/tsextractor"
	"github.com/dejo1307/fieldparity/internal/facts"
	"github.com/dejo1307/fieldparity/internal/renderers"
	"github.com/dejo1307/fieldparity/internal/renderers/jsonreport"
	"github.com/dejo1307/fieldparity/internal/renderers/textreport"
)

var version = "dev"

type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return "command failed"
	}
	return e.err.Error()
}

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}

type rootOptions struct {
	configPath   string
	verbose      bool
	resources    []string
	showAll      bool
	includeExtra bool
	format       string
	noColor      bool
	watch        bool
	output       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "fieldparity",
		Short: "Report fields declared in the TypeScript SDK but missing from the C++ headers",
		Long: "fieldparity compares, per resource, the field names of the TypeScript\n" +
			"interfaces and object type aliases with the field names of the C++ structs.\n" +
			"It exits 1 when any resource with a header is missing fields.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout carries the report or the MCP stream.
			if opts.verbose {
				log.SetOutput(cmd.ErrOrStderr())
			} else {
				log.SetOutput(io.Discard)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "fieldparity.yaml", "path to the configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")

	cmd.Flags().StringArrayVarP(&opts.resources, "resource", "r", nil, "resource to check (repeatable, default: curated list)")
	cmd.Flags().BoolVar(&opts.showAll, "show-all", false, "show resources without differences")
	cmd.Flags().BoolVar(&opts.includeExtra, "include-extra", false, "also list fields only present in the C++ headers")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text|json")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-run the check whenever either source tree changes")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "also write per-resource results as JSONL to this file")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newResourcesCmd(opts))
	return cmd
}

// loadConfig reads the configuration file, falling back to defaults when
// the file does not exist.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v, using defaults\n", err)
		return config.Default(), nil
	}
	return nil, err
}

// newEngine loads the configuration and returns an engine with every
// extractor registered.
func newEngine(cmd *cobra.Command, opts *rootOptions) (*engine.Engine, error) {
	cfg, err := loadConfig(cmd, opts.configPath)
	if err != nil {
		return nil, exitCodeError{code: 1, err: err}
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return nil, exitCodeError{code: 1, err: fmt.Errorf("creating engine: %w", err)}
	}

	eng.RegisterExtractor(tsextractor.New(cfg.IsIgnoredField))
	eng.RegisterExtractor(tsextractor.NewTreeSitter(cfg.IsIgnoredField))
	eng.RegisterExtractor(cppextractor.New(cfg.IsIgnoredField))
	return eng, nil
}

func newRenderer(opts *rootOptions) (renderers.Renderer, error) {
	ropts := renderers.Options{
		ShowAll:      opts.showAll,
		IncludeExtra: opts.includeExtra,
		Color:        !opts.noColor && !color.NoColor,
	}

	reg := renderers.NewRegistry()
	reg.Register(textreport.New(ropts))
	reg.Register(jsonreport.New(ropts))

	rnd := reg.Get(opts.format)
	if rnd == nil {
		var names []string
		for _, r := range reg.All() {
			names = append(names, r.Name())
		}
		return nil, exitCodeError{
			code: 2,
			err:  fmt.Errorf("unknown format %q (want %s)", opts.format, strings.Join(names, "|")),
		}
	}
	return rnd, nil
}

func runCheck(cmd *cobra.Command, opts *rootOptions) error {
	rnd, err := newRenderer(opts)
	if err != nil {
		return err
	}
	eng, err := newEngine(cmd, opts)
	if err != nil {
		return err
	}

	if opts.watch {
		return runWatch(cmd, eng, rnd, opts)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := eng.Check(ctx, opts.resources)
	if err != nil {
		return exitCodeError{code: 1, err: err}
	}
	if err := writeReport(ctx, cmd.OutOrStdout(), rnd, report); err != nil {
		return exitCodeError{code: 1, err: err}
	}
	if err := writeResults(eng, opts.output); err != nil {
		return exitCodeError{code: 1, err: err}
	}

	if report.Failed() {
		return exitCodeError{
			code: 1,
			err:  fmt.Errorf("%d of %d resources are missing fields", report.Meta.FailingCount, report.Meta.ResourceCount),
		}
	}
	return nil
}

func runWatch(cmd *cobra.Command, eng *engine.Engine, rnd renderers.Renderer, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	err := eng.Watch(ctx, opts.resources, func(report *facts.Report, err error) {
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return
		}
		fmt.Fprintf(out, "--- %s ---\n", report.Meta.GeneratedAt)
		if err := writeReport(ctx, out, rnd, report); err != nil {
			fmt.Fprintln(errOut, "error:", err)
		}
		if err := writeResults(eng, opts.output); err != nil {
			fmt.Fprintln(errOut, "error:", err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return exitCodeError{code: 1, err: err}
	}
	return nil
}

func writeReport(ctx context.Context, w io.Writer, rnd renderers.Renderer, report *facts.Report) error {
	artifacts, err := rnd.Render(ctx, report)
	if err != nil {
		return fmt.Errorf("rendering %s report: %w", rnd.Name(), err)
	}
	for _, a := range artifacts {
		if _, err := w.Write(a.Content); err != nil {
			return err
		}
	}
	return nil
}

// writeResults saves the stored report as JSONL when path is set.
func writeResults(eng *engine.Engine, path string) error {
	if path == "" {
		return nil
	}
	if err := eng.Store().WriteJSONLFile(path); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	log.Printf("[main] wrote %d results to %s", eng.Store().Count(), path)
	return nil
}
