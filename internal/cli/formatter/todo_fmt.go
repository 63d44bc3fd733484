package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/todump/todump/internal/domain"
)

// FormatTodoList renders the list view: a progress header over top-level
// tasks followed by the task tree.
func FormatTodoList(tasks []domain.Task, now time.Time) string {
	if len(tasks) == 0 {
		return Dim("No todos yet. Add one with: todump add <text>") + "\n"
	}

	p := domain.Summarize(tasks)
	var b strings.Builder
	b.WriteString(Header("Todos") + "\n")
	b.WriteString(RenderProgress(p.Completed, p.Total, 20) + "\n\n")
	b.WriteString(RenderTree(TodoTreeItems(domain.Tree(tasks), now)))
	return b.String()
}

// TodoTreeItems flattens nodes into tree rows: each top-level task followed by
// its steps.
func TodoTreeItems(nodes []domain.TaskNode, now time.Time) []TreeItem {
	var items []TreeItem
	for _, n := range nodes {
		detail := HumanTimestampFrom(n.Task.CreatedAt, now)
		if len(n.Children) > 0 {
			done := 0
			for _, c := range n.Children {
				if c.Completed {
					done++
				}
			}
			detail = fmt.Sprintf("%d/%d steps · %s", done, len(n.Children), detail)
		}
		items = append(items, TreeItem{
			Title:  n.Task.Text,
			Ref:    ShortID(n.Task.ID),
			Done:   n.Task.Completed,
			Detail: detail,
		})
		for i, c := range n.Children {
			items = append(items, TreeItem{
				Title:  c.Text,
				Ref:    ShortID(c.ID),
				Level:  1,
				IsLast: i == len(n.Children)-1,
				Done:   c.Completed,
			})
		}
	}
	return items
}

// FormatAdded renders the records created by one add: the new task and,
// after an AI breakdown, its steps.
func FormatAdded(created []domain.Task) string {
	if len(created) == 0 {
		return ""
	}
	parent := created[0]
	if len(created) == 1 {
		return fmt.Sprintf("%s %s %s\n", StyleGreen.Render("✔ Added"), Dim(ShortID(parent.ID)), parent.Text)
	}

	steps := created[1:]
	items := []TreeItem{{Title: parent.Text, Ref: ShortID(parent.ID)}}
	for i, s := range steps {
		items = append(items, TreeItem{
			Title:  s.Text,
			Ref:    ShortID(s.ID),
			Level:  1,
			IsLast: i == len(steps)-1,
		})
	}
	header := fmt.Sprintf("%s with %d %s", StyleGreen.Render("✔ Added"), len(steps), Plural(len(steps), "step", "steps"))
	return header + "\n" + RenderTree(items)
}
