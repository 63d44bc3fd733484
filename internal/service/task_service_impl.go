package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/todump/todump/internal/breakdown"
	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/store"
)

type taskService struct {
	store    store.Store
	breaker  breakdown.Breaker
	logger   *log.Logger
	observer UseCaseObserver
}

// NewTaskService creates the task controller over s. A nil breaker makes
// every AI add fall back to a plain add.
func NewTaskService(s store.Store, breaker breakdown.Breaker, logger *log.Logger, observers ...UseCaseObserver) TaskService {
	return &taskService{
		store:    s,
		breaker:  breaker,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) observe(ctx context.Context, name string, startedAt time.Time, err error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

func (s *taskService) Add(ctx context.Context, text string, withAI bool) (result *AddResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"ai": withAI}
	defer func() { s.observe(ctx, "add", startedAt, err, fields) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}

	if !withAI {
		return s.addPlain(ctx, text, &AddResult{})
	}

	steps, bdErr := s.breakdown(ctx, text)
	if bdErr != nil {
		if errors.Is(bdErr, domain.ErrUnauthorized) {
			return nil, bdErr
		}
		fields["fallback"] = true
		if s.logger != nil {
			s.logger.Warn("AI breakdown failed, adding plain todo", "err", bdErr)
		}
		return s.addPlain(ctx, text, &AddResult{Notice: FallbackNotice, Fallback: true})
	}
	fields["steps"] = len(steps)

	parent, err := s.store.Create(ctx, domain.NewTask{Text: text})
	if err != nil {
		return nil, err
	}

	children := make([]domain.NewTask, len(steps))
	for i, step := range steps {
		children[i] = domain.NewTask{Text: step, ParentID: &parent.ID}
	}
	created, err := s.store.CreateMany(ctx, children)
	if err != nil {
		if delErr := s.store.Delete(ctx, parent.ID); delErr != nil && s.logger != nil {
			s.logger.Error("removing parent after failed sub-task write", "id", parent.ID, "err", delErr)
		}
		return nil, fmt.Errorf("creating sub-tasks: %w", err)
	}

	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return &AddResult{Created: append([]domain.Task{parent}, created...), Tasks: tasks}, nil
}

func (s *taskService) breakdown(ctx context.Context, text string) ([]string, error) {
	if s.breaker == nil {
		return nil, breakdown.ErrConfiguration
	}
	return s.breaker.Breakdown(ctx, text)
}

func (s *taskService) addPlain(ctx context.Context, text string, result *AddResult) (*AddResult, error) {
	t, err := s.store.Create(ctx, domain.NewTask{Text: text})
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	result.Created = []domain.Task{t}
	result.Tasks = tasks
	return result, nil
}

func (s *taskService) Toggle(ctx context.Context, id string) (task domain.Task, err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "toggle", startedAt, err, map[string]any{"id": id}) }()

	if err := domain.ValidateID(id); err != nil {
		return domain.Task{}, err
	}
	tasks, err := s.store.List(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	current := domain.FindByID(tasks, id)
	if current == nil {
		return domain.Task{}, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	return s.store.Update(ctx, id, domain.TaskPatch{Completed: domain.BoolPtr(!current.Completed)})
}

func (s *taskService) Edit(ctx context.Context, id, text string) (task domain.Task, err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "edit", startedAt, err, map[string]any{"id": id}) }()

	if err := domain.ValidateID(id); err != nil {
		return domain.Task{}, err
	}
	if strings.TrimSpace(text) == "" {
		return domain.Task{}, fmt.Errorf("%w: text must not be empty", domain.ErrValidation)
	}
	return s.store.Update(ctx, id, domain.TaskPatch{Text: &text})
}

func (s *taskService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "delete", startedAt, err, map[string]any{"id": id}) }()

	if err := domain.ValidateID(id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *taskService) List(ctx context.Context) ([]domain.Task, error) {
	return s.store.List(ctx)
}

func (s *taskService) Summary(ctx context.Context) (domain.Progress, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return domain.Progress{}, err
	}
	return domain.Summarize(tasks), nil
}
