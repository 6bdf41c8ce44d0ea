package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dejo1307/fieldparity/internal/engine"
	"github.com/dejo1307/fieldparity/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var resultsPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve parity checks over the Model Context Protocol on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(cmd, opts)
			if err != nil {
				return err
			}

			// Serve results from an earlier --output run until the first
			// check_parity call replaces them.
			if err := loadResults(eng, resultsPath); err != nil {
				return exitCodeError{code: 1, err: err}
			}

			srv, err := server.New(eng, version)
			if err != nil {
				return exitCodeError{code: 1, err: err}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return exitCodeError{code: 1, err: err}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "JSONL results file to preload (written by --output)")
	return cmd
}

// loadResults seeds the store from path. A missing file is not an error.
func loadResults(eng *engine.Engine, path string) error {
	if path == "" {
		return nil
	}
	if err := eng.Store().ReadJSONLFile(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("[main] no results at %s, starting empty", path)
			return nil
		}
		return err
	}
	log.Printf("[main] loaded %d results from %s", eng.Store().Count(), path)
	return nil
}
