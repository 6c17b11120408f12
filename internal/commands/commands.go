// Package commands defines the task-cli command tree.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/starford/tasktracker/internal"
	"github.com/starford/tasktracker/internal/apperr"
	"github.com/starford/tasktracker/internal/mcpserver"
	"github.com/starford/tasktracker/internal/models"
	pkgconfig "github.com/starford/tasktracker/pkg/config"
)

// Version is reported by --version and the MCP handshake.
const Version = "1.0.0"

// ErrUsage marks malformed command-line input.
var ErrUsage = errors.New("usage error")

type runner struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	opts       []internal.Option
}

// New returns the root command. Command output goes to stdout, logs to
// stderr. opts are appended to the options every sub-command builds its
// App with.
func New(stdout, stderr io.Writer, opts ...internal.Option) *cli.Command {
	r := &runner{stdout: stdout, stderr: stderr, opts: opts}

	return &cli.Command{
		Name:         "task-cli",
		Usage:        "CLI app to track your tasks and manage your to-do list",
		Version:      Version,
		Writer:       stdout,
		ErrWriter:    stderr,
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (YAML or TOML)",
				DefaultText: internal.DefaultConfigPath,
				Value:       internal.DefaultConfigPath,
				Sources:     cli.EnvVars("TASK_CLI_CONFIG"),
				Destination: &r.configPath,
			},
		},
		Commands: []*cli.Command{
			{
				Name:            "add",
				SkipFlagParsing: true,
				Usage:           "Adds a new task",
				ArgsUsage:       "<description>",
				Action:          r.add,
			},
			{
				Name:            "update",
				SkipFlagParsing: true,
				Usage:           "Change the description of an existing task",
				ArgsUsage:       "<id> <description>",
				Action:          r.update,
			},
			{
				Name:            "delete",
				SkipFlagParsing: true,
				Usage:           "Delete a task",
				ArgsUsage:       "<id>",
				Action:          r.delete,
			},
			{
				Name:            "mark-in-progress",
				SkipFlagParsing: true,
				Usage:           "Mark a task as in progress",
				ArgsUsage:       "<id>",
				Action:          r.mark(models.StatusInProgress),
			},
			{
				Name:            "mark-done",
				SkipFlagParsing: true,
				Usage:           "Mark a task as done",
				ArgsUsage:       "<id>",
				Action:          r.mark(models.StatusDone),
			},
			{
				Name:         "list",
				OnUsageError: onUsageError,
				Usage:        "List all tasks, optionally filtered by status",
				ArgsUsage:    "[todo|in-progress|done]",
				Action:       r.list,
			},
			{
				Name:         "watch",
				OnUsageError: onUsageError,
				Usage:        "List tasks again every time the task file changes",
				ArgsUsage:    "[todo|in-progress|done]",
				Action:       r.watch,
			},
			{
				Name:         "mcp",
				OnUsageError: onUsageError,
				Usage:        "Serve the task store as MCP tools over stdio",
				Action:       r.mcp,
			},
		},
	}
}

// onUsageError turns flag parsing failures into ErrUsage.
func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return fmt.Errorf("%w: %w", ErrUsage, err)
}

// withApp loads configuration, builds the App and runs fn with it.
func (r *runner) withApp(fn func(app *internal.App) error) error {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(r.configPath, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	opts := append([]internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogWriter(r.stderr),
	}, r.opts...)

	app, err := internal.NewApp(opts...)
	if err != nil {
		return fmt.Errorf("app init error: %w", err)
	}
	defer app.Close()

	return fn(app)
}

func (r *runner) add(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return usageError(cmd, "expected exactly one description")
	}
	desc := cmd.Args().First()

	return r.withApp(func(app *internal.App) error {
		task, err := app.Store.Add(ctx, desc)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.stdout, "Task added successfully (ID: %d)\n", task.ID)
		return nil
	})
}

func (r *runner) update(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return usageError(cmd, "expected an id and a description")
	}
	id, err := parseID(cmd, cmd.Args().Get(0))
	if err != nil {
		return err
	}
	desc := cmd.Args().Get(1)

	return r.withApp(func(app *internal.App) error {
		_, err := app.Store.Update(ctx, id, desc)
		return r.report(err, id, "Task (ID: %d) updated successfully\n")
	})
}

func (r *runner) delete(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return usageError(cmd, "expected exactly one id")
	}
	id, err := parseID(cmd, cmd.Args().First())
	if err != nil {
		return err
	}

	return r.withApp(func(app *internal.App) error {
		err := app.Store.Delete(ctx, id)
		return r.report(err, id, "Task (ID: %d) deleted successfully\n")
	})
}

func (r *runner) mark(status models.Status) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if cmd.NArg() != 1 {
			return usageError(cmd, "expected exactly one id")
		}
		id, err := parseID(cmd, cmd.Args().First())
		if err != nil {
			return err
		}

		return r.withApp(func(app *internal.App) error {
			_, err := app.Store.Mark(ctx, id, status)
			return r.report(err, id, "Task (ID: %d) marked as "+status.Label()+"\n")
		})
	}
}

func (r *runner) list(ctx context.Context, cmd *cli.Command) error {
	filter, err := parseFilter(cmd)
	if err != nil {
		return err
	}

	return r.withApp(func(app *internal.App) error {
		tasks, err := app.Store.List(ctx, filter)
		if err != nil {
			return err
		}
		renderList(r.stdout, tasks, filter)
		return nil
	})
}

func (r *runner) mcp(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 0 {
		return usageError(cmd, "takes no arguments")
	}
	return r.withApp(func(app *internal.App) error {
		app.Logger.Info("MCP server starting", slog.String("storage_path", app.Store.Path()))
		return mcpserver.New(app.Store, Version).ServeStdio()
	})
}

// report prints the success message for id, or the not-found message.
// Not-found is not a failure of the command.
func (r *runner) report(err error, id int, success string) error {
	switch {
	case err == nil:
		fmt.Fprintf(r.stdout, success, id)
		return nil
	case errors.Is(err, apperr.ErrNotFound):
		fmt.Fprintf(r.stdout, "Task (ID: %d) not found\n", id)
		return nil
	default:
		return err
	}
}

func parseID(cmd *cli.Command, raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, usageError(cmd, "invalid id %q: must be an integer", raw)
	}
	return id, nil
}

func parseFilter(cmd *cli.Command) (*models.Status, error) {
	switch cmd.NArg() {
	case 0:
		return nil, nil
	case 1:
		status, err := models.ParseStatus(cmd.Args().First())
		if err != nil {
			return nil, usageError(cmd, "invalid status %q: choose from todo, in-progress, done", cmd.Args().First())
		}
		return &status, nil
	default:
		return nil, usageError(cmd, "expected at most one status")
	}
}

func usageError(cmd *cli.Command, format string, args ...any) error {
	return fmt.Errorf("%w: %s\nusage: task-cli %s %s", ErrUsage, fmt.Sprintf(format, args...), cmd.Name, cmd.ArgsUsage)
}
