package commands

import (
	"fmt"
	"io"

	"github.com/starford/tasktracker/internal/models"
)

// renderList prints the header and one line per task, or the empty-result
// message that matches filter.
func renderList(w io.Writer, tasks []models.Task, filter *models.Status) {
	fmt.Fprintln(w, "List of Tasks:")
	for _, t := range tasks {
		fmt.Fprintln(w, t.String())
	}
	if len(tasks) > 0 {
		return
	}
	if filter != nil {
		fmt.Fprintf(w, "No task with '%s' found\n", *filter)
	} else {
		fmt.Fprintln(w, "No task found")
	}
}
