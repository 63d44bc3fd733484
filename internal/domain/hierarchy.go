package domain

import (
	"fmt"
	"sort"
	"time"
)

// MaxDepth is the deepest nesting level a task may sit at. Top-level tasks
// are at depth 0, sub-tasks at depth 1.
const MaxDepth = 1

// CheckParent verifies that a new task may be attached below parent.
// parent is nil when the referenced id could not be found.
func CheckParent(parentID string, parent *Task) error {
	if parent == nil {
		return fmt.Errorf("%w: parent %s not found", ErrValidation, parentID)
	}
	if parent.IsSubTask() {
		return fmt.Errorf("%w: sub-task %s cannot have sub-tasks", ErrValidation, parentID)
	}
	return nil
}

// Descendants returns the ids of every task below id, transitively.
// The result does not include id itself.
func Descendants(tasks []Task, id string) []string {
	children := make(map[string][]string)
	for _, t := range tasks {
		if t.IsSubTask() {
			children[*t.ParentID] = append(children[*t.ParentID], t.ID)
		}
	}

	var out []string
	queue := []string{id}
	seen := map[string]bool{id: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}

// RemoveCascade drops id and all of its descendants from tasks.
// It reports false when id is not present.
func RemoveCascade(tasks []Task, id string) ([]Task, bool) {
	found := false
	doomed := map[string]bool{id: true}
	for _, d := range Descendants(tasks, id) {
		doomed[d] = true
	}

	kept := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == id {
			found = true
		}
		if doomed[t.ID] {
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return tasks, false
	}
	return kept, true
}

// FindByID returns a pointer into tasks for the given id, or nil.
func FindByID(tasks []Task, id string) *Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}

// SortNewestFirst orders tasks by creation time, newest first. Ties keep
// their relative order.
func SortNewestFirst(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

// BatchTimestamps returns n strictly increasing creation times starting at base,
// so a batch created in one call keeps its input order when sorted by time.
func BatchTimestamps(base time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * time.Microsecond)
	}
	return out
}

// TaskNode is a top-level task together with its sub-tasks.
type TaskNode struct {
	Task     Task
	Children []Task
}

// Tree groups a flat list into top-level nodes. Top-level order follows the
// input; sub-tasks are ordered oldest first, the order they were generated in.
// Sub-tasks whose parent is missing from the list are promoted to top level.
func Tree(tasks []Task) []TaskNode {
	index := make(map[string]int)
	var nodes []TaskNode
	for _, t := range tasks {
		if !t.IsSubTask() {
			index[t.ID] = len(nodes)
			nodes = append(nodes, TaskNode{Task: t})
		}
	}
	for _, t := range tasks {
		if !t.IsSubTask() {
			continue
		}
		i, ok := index[*t.ParentID]
		if !ok {
			nodes = append(nodes, TaskNode{Task: t})
			continue
		}
		nodes[i].Children = append(nodes[i].Children, t)
	}
	for i := range nodes {
		children := nodes[i].Children
		sort.SliceStable(children, func(a, b int) bool {
			return children[a].CreatedAt.Before(children[b].CreatedAt)
		})
	}
	return nodes
}

// Progress counts completed and total top-level tasks.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Summarize computes progress over top-level tasks only; sub-tasks are
// steps of their parent and do not count on their own.
func Summarize(tasks []Task) Progress {
	var p Progress
	for _, t := range tasks {
		if t.IsSubTask() {
			continue
		}
		p.Total++
		if t.Completed {
			p.Completed++
		}
	}
	return p
}
