package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/starford/tasktracker/internal"
	"github.com/starford/tasktracker/internal/checksum"
	"github.com/starford/tasktracker/internal/models"
	"github.com/starford/tasktracker/internal/watcher"
)

func (r *runner) watch(ctx context.Context, cmd *cli.Command) error {
	filter, err := parseFilter(cmd)
	if err != nil {
		return err
	}

	return r.withApp(func(app *internal.App) error {
		// Creates the file (and its directory) if this is the first run.
		if _, err := app.Store.List(ctx, nil); err != nil {
			return err
		}
		return r.watchLoop(ctx, app, filter)
	})
}

func (r *runner) watchLoop(ctx context.Context, app *internal.App, filter *models.Status) error {
	logger := app.Logger
	path := app.Store.Path()

	var last string
	render := func() {
		// Fingerprint before listing: a save landing in between changes
		// the next fingerprint, so it still gets rendered.
		sum, err := checksum.File(path)
		if err != nil {
			logger.Warn("watch: checksum failed", slog.String("error", err.Error()))
			return
		}
		if sum == last {
			return
		}
		tasks, err := app.Store.List(ctx, filter)
		if err != nil {
			logger.Warn("watch: list failed", slog.String("error", err.Error()))
			return
		}
		last = sum
		renderList(r.stdout, tasks, filter)
	}

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, cancel := context.WithCancel(gCtx)

	g.Go(func() error {
		defer cancel()
		return watcher.Watch(watchCtx, path, logger, render)
	})

	g.Go(func() error {
		defer cancel()
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-watchCtx.Done():
		}
		return nil
	})

	return g.Wait()
}
