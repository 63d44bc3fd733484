package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/service"
)

// resolveTask finds the task named by input, which may be a full id or a
// unique id prefix. It returns the whole list alongside for callers that
// need to inspect neighbours.
func resolveTask(ctx context.Context, tasks service.TaskService, input string) (domain.Task, []domain.Task, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.Task{}, nil, fmt.Errorf("%w: todo id is required", domain.ErrValidation)
	}

	all, err := tasks.List(ctx)
	if err != nil {
		return domain.Task{}, nil, err
	}

	// 1. Exact id match
	if t := domain.FindByID(all, input); t != nil {
		return *t, all, nil
	}

	// 2. Prefix match (case-insensitive)
	var matches []domain.Task
	lower := strings.ToLower(input)
	for _, t := range all {
		if strings.HasPrefix(strings.ToLower(t.ID), lower) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return domain.Task{}, all, fmt.Errorf("%q: %w", input, domain.ErrNotFound)
	case 1:
		return matches[0], all, nil
	default:
		return domain.Task{}, all, fmt.Errorf("todo id prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
