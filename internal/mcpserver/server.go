// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the task store as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tasktracker/internal/apperr"
	"github.com/starford/tasktracker/internal/models"
	"github.com/starford/tasktracker/internal/taskstore"
)

const tasksResourceURI = "tasks://all"

// Server wraps the MCP server with task tools.
type Server struct {
	mcp   *server.MCPServer
	store *taskstore.Store

	// mu serializes tool calls; each one is a load-mutate-save cycle on
	// the same file.
	mu sync.Mutex
}

// New creates a new MCP server with all task tools registered.
func New(store *taskstore.Store, version string) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"task-cli",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a new task with status todo. Returns the new task id."),
		mcp.WithString("description", mcp.Required(), mcp.Description("What needs to be done")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Replace the description of an existing task."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
		mcp.WithString("description", mcp.Required(), mcp.Description("New description")),
	), s.updateTask)

	s.mcp.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task. Ids of all later tasks shift down by one."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
	), s.deleteTask)

	s.mcp.AddTool(mcp.NewTool("mark_task",
		mcp.WithDescription("Set the status of a task."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
		mcp.WithString("status", mcp.Required(),
			mcp.Enum(string(models.StatusTodo), string(models.StatusInProgress), string(models.StatusDone)),
			mcp.Description("New status")),
	), s.markTask)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, optionally only those with the given status."),
		mcp.WithString("status",
			mcp.Enum(string(models.StatusTodo), string(models.StatusInProgress), string(models.StatusDone)),
			mcp.Description("Optional status filter")),
	), s.listTasks)

	s.mcp.AddResource(
		mcp.NewResource(tasksResourceURI, "Task collection",
			mcp.WithResourceDescription("Every task as a JSON array."),
			mcp.WithMIMEType("application/json"),
		),
		s.readTasksResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) addTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	desc, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.store.Add(ctx, desc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task added successfully (ID: %d)", task.ID)), nil
}

func (s *Server) updateTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	desc, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Update(ctx, id, desc); err != nil {
		return toolError(err, id), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task (ID: %d) updated successfully", id)), nil
}

func (s *Server) deleteTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return toolError(err, id), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task (ID: %d) deleted successfully", id)), nil
}

func (s *Server) markTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := models.ParseStatus(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Mark(ctx, id, status); err != nil {
		return toolError(err, id), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task (ID: %d) marked as %s", id, status.Label())), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var filter *models.Status
	if raw := req.GetString("status", ""); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter = &status
	}

	s.mu.Lock()
	tasks, err := s.store.List(ctx, filter)
	s.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(tasks) == 0 {
		if filter != nil {
			return mcp.NewToolResultText(fmt.Sprintf("No task with '%s' found", *filter)), nil
		}
		return mcp.NewToolResultText("No task found"), nil
	}
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = t.String()
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readTasksResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.Lock()
	tasks, err := s.store.List(ctx, nil)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      tasksResourceURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

// toolError maps store errors to tool results. Not-found keeps the CLI wording.
func toolError(err error, id int) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("Task (ID: %d) not found", id))
	}
	return mcp.NewToolResultError(err.Error())
}
