package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/repository"
)

// Owned is the authenticated backend: a Store view of one owner's rows in a
// shared repository. It is built per request.
type Owned struct {
	repo    repository.TaskRepo
	tx      repository.TaskTx
	ownerID string
	now     func() time.Time
}

// NewOwned creates a store scoped to ownerID.
func NewOwned(repo repository.TaskRepo, tx repository.TaskTx, ownerID string) *Owned {
	return &Owned{repo: repo, tx: tx, ownerID: ownerID, now: time.Now}
}

func (o *Owned) owner() (string, error) {
	if strings.TrimSpace(o.ownerID) == "" {
		return "", domain.ErrUnauthorized
	}
	return o.ownerID, nil
}

func (o *Owned) List(ctx context.Context) ([]domain.Task, error) {
	owner, err := o.owner()
	if err != nil {
		return nil, err
	}
	return o.repo.ListByOwner(ctx, owner)
}

func (o *Owned) Create(ctx context.Context, in domain.NewTask) (domain.Task, error) {
	created, err := o.CreateMany(ctx, []domain.NewTask{in})
	if err != nil {
		return domain.Task{}, err
	}
	return created[0], nil
}

func (o *Owned) CreateMany(ctx context.Context, in []domain.NewTask) ([]domain.Task, error) {
	owner, err := o.owner()
	if err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one todo is required", domain.ErrValidation)
	}
	if err := validateBatch(in); err != nil {
		return nil, err
	}

	batch := buildBatch(in, o.now)
	err = o.tx.WithinTaskTx(ctx, func(ctx context.Context, repo repository.TaskRepo) error {
		err := checkParents(batch, func(id string) (*domain.Task, error) {
			p, err := repo.GetByID(ctx, owner, id)
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil
			}
			return p, err
		})
		if err != nil {
			return err
		}
		return repo.Insert(ctx, owner, batch)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (o *Owned) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	owner, err := o.owner()
	if err != nil {
		return domain.Task{}, err
	}
	if err := domain.ValidateID(id); err != nil {
		return domain.Task{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.Task{}, err
	}
	t, err := o.repo.SetFields(ctx, owner, id, patch, o.now().UTC())
	if err != nil {
		return domain.Task{}, err
	}
	return *t, nil
}

func (o *Owned) Delete(ctx context.Context, id string) error {
	owner, err := o.owner()
	if err != nil {
		return err
	}
	if err := domain.ValidateID(id); err != nil {
		return err
	}
	return o.repo.Delete(ctx, owner, id)
}
