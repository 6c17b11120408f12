package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/tasktracker/internal/models"
	"github.com/starford/tasktracker/internal/taskstore"
	"github.com/starford/tasktracker/internal/testutil"
)

func testServer(t *testing.T) (*Server, *taskstore.Store) {
	t.Helper()
	store := taskstore.New(testutil.JSONProvider(t))
	return New(store, "test"), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "add_task":
		result, err = srv.addTask(ctx, req)
	case "update_task":
		result, err = srv.updateTask(ctx, req)
	case "delete_task":
		result, err = srv.deleteTask(ctx, req)
	case "mark_task":
		result, err = srv.markTask(ctx, req)
	case "list_tasks":
		result, err = srv.listTasks(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddAndList(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "add_task", map[string]interface{}{"description": "buy milk"})
	if text := resultText(r); text != "Task added successfully (ID: 1)" {
		t.Errorf("add result = %q", text)
	}
	_ = callTool(t, srv, "add_task", map[string]interface{}{"description": "walk dog"})

	r = callTool(t, srv, "list_tasks", map[string]interface{}{})
	want := "ID: 1 - buy milk (todo)\nID: 2 - walk dog (todo)"
	if text := resultText(r); text != want {
		t.Errorf("list = %q, want %q", text, want)
	}
}

func TestMarkAndFilteredList(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "add_task", map[string]interface{}{"description": "a"})
	_ = callTool(t, srv, "add_task", map[string]interface{}{"description": "b"})

	r := callTool(t, srv, "mark_task", map[string]interface{}{"id": float64(2), "status": "in-progress"})
	if text := resultText(r); text != "Task (ID: 2) marked as in progress" {
		t.Errorf("mark result = %q", text)
	}

	r = callTool(t, srv, "list_tasks", map[string]interface{}{"status": "in-progress"})
	if text := resultText(r); text != "ID: 2 - b (in-progress)" {
		t.Errorf("filtered list = %q", text)
	}

	r = callTool(t, srv, "list_tasks", map[string]interface{}{"status": "done"})
	if text := resultText(r); text != "No task with 'done' found" {
		t.Errorf("empty filtered list = %q", text)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	srv, store := testServer(t)
	_ = callTool(t, srv, "add_task", map[string]interface{}{"description": "a"})
	_ = callTool(t, srv, "add_task", map[string]interface{}{"description": "b"})

	r := callTool(t, srv, "update_task", map[string]interface{}{"id": float64(1), "description": "A"})
	if text := resultText(r); text != "Task (ID: 1) updated successfully" {
		t.Errorf("update result = %q", text)
	}

	r = callTool(t, srv, "delete_task", map[string]interface{}{"id": float64(1)})
	if text := resultText(r); text != "Task (ID: 1) deleted successfully" {
		t.Errorf("delete result = %q", text)
	}

	tasks, err := store.List(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].ID != 1 || tasks[0].Description != "b" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := testServer(t)
	for _, tc := range []struct {
		tool string
		args map[string]interface{}
	}{
		{"update_task", map[string]interface{}{"id": float64(9), "description": "x"}},
		{"delete_task", map[string]interface{}{"id": float64(9)}},
		{"mark_task", map[string]interface{}{"id": float64(9), "status": "done"}},
	} {
		r := callTool(t, srv, tc.tool, tc.args)
		if !r.IsError {
			t.Errorf("%s: expected error result", tc.tool)
		}
		if text := resultText(r); text != "Task (ID: 9) not found" {
			t.Errorf("%s: text = %q", tc.tool, text)
		}
	}
}

func TestInvalidInput(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "add_task", map[string]interface{}{"description": "a"})

	cases := []struct {
		tool string
		args map[string]interface{}
	}{
		{"add_task", map[string]interface{}{}},
		{"delete_task", map[string]interface{}{}},
		{"mark_task", map[string]interface{}{"id": float64(1), "status": "blocked"}},
		{"list_tasks", map[string]interface{}{"status": "later"}},
	}
	for _, tc := range cases {
		if r := callTool(t, srv, tc.tool, tc.args); !r.IsError {
			t.Errorf("%s %v: expected error result", tc.tool, tc.args)
		}
	}
}

func TestTasksResource(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "add_task", map[string]interface{}{"description": "a"})

	contents, err := srv.readTasksResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content type %T", contents[0])
	}
	var tasks []models.Task
	if err := json.Unmarshal([]byte(tc.Text), &tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Description != "a" {
		t.Errorf("tasks = %+v", tasks)
	}
}
