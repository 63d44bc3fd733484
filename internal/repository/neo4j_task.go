package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/todump/todump/internal/domain"
)

// Neo4jTaskRepo implements TaskRepo on a property graph:
//
//	(:User {id})-[:OWNS]->(:Task {id, text, completed, createdAt, updatedAt})
//	(:Task)-[:HAS_PARENT]->(:Task)
type Neo4jTaskRepo struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jTaskRepo creates a repo on driver. An empty database name selects
// the server default.
func NewNeo4jTaskRepo(driver neo4j.DriverWithContext, database string) *Neo4jTaskRepo {
	return &Neo4jTaskRepo{driver: driver, database: database}
}

// OpenNeo4j connects to the graph at uri and verifies connectivity.
func OpenNeo4j(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}
	return driver, nil
}

const neo4jTaskReturn = `RETURN t.id AS id, t.text AS text, t.completed AS completed,
	t.createdAt AS created_at, p.id AS parent_id`

func (r *Neo4jTaskRepo) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: r.database})
}

func (r *Neo4jTaskRepo) read(ctx context.Context, fn func(repo *neo4jTxRepo) (any, error)) (any, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return fn(&neo4jTxRepo{tx: tx})
	})
}

func (r *Neo4jTaskRepo) write(ctx context.Context, fn func(repo *neo4jTxRepo) (any, error)) (any, error) {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	return session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return fn(&neo4jTxRepo{tx: tx})
	})
}

func (r *Neo4jTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	out, err := r.read(ctx, func(repo *neo4jTxRepo) (any, error) {
		return repo.ListByOwner(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.Task), nil
}

func (r *Neo4jTaskRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	out, err := r.read(ctx, func(repo *neo4jTxRepo) (any, error) {
		return repo.GetByID(ctx, ownerID, id)
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Task), nil
}

func (r *Neo4jTaskRepo) Insert(ctx context.Context, ownerID string, tasks []domain.Task) error {
	_, err := r.write(ctx, func(repo *neo4jTxRepo) (any, error) {
		return nil, repo.Insert(ctx, ownerID, tasks)
	})
	return err
}

func (r *Neo4jTaskRepo) SetFields(ctx context.Context, ownerID, id string, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error) {
	out, err := r.write(ctx, func(repo *neo4jTxRepo) (any, error) {
		return repo.SetFields(ctx, ownerID, id, patch, updatedAt)
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Task), nil
}

func (r *Neo4jTaskRepo) Delete(ctx context.Context, ownerID, id string) error {
	_, err := r.write(ctx, func(repo *neo4jTxRepo) (any, error) {
		return nil, repo.Delete(ctx, ownerID, id)
	})
	return err
}

// neo4jTxRepo is a TaskRepo bound to one managed transaction.
type neo4jTxRepo struct {
	tx neo4j.ManagedTransaction
}

func (r *neo4jTxRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	result, err := r.tx.Run(ctx,
		"MATCH (:User {id: $owner})-[:OWNS]->(t:Task) "+
			"OPTIONAL MATCH (t)-[:HAS_PARENT]->(p:Task) "+
			neo4jTaskReturn+" ORDER BY t.createdAt DESC",
		map[string]any{"owner": ownerID},
	)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}

	tasks := []domain.Task{}
	for result.Next(ctx) {
		t, err := recordToTask(result.Record())
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	return tasks, nil
}

func (r *neo4jTxRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	result, err := r.tx.Run(ctx,
		"MATCH (:User {id: $owner})-[:OWNS]->(t:Task {id: $id}) "+
			"OPTIONAL MATCH (t)-[:HAS_PARENT]->(p:Task) "+
			neo4jTaskReturn,
		map[string]any{"owner": ownerID, "id": id},
	)
	if err != nil {
		return nil, err
	}
	return singleTask(ctx, result, id)
}

// Insert creates every task of the batch. A sub-task whose parent is not
// owned by ownerID fails the whole transaction.
func (r *neo4jTxRepo) Insert(ctx context.Context, ownerID string, tasks []domain.Task) error {
	for _, t := range tasks {
		created := formatTime(t.CreatedAt)
		_, err := r.tx.Run(ctx,
			"MERGE (u:User {id: $owner}) "+
				"CREATE (u)-[:OWNS]->(:Task {id: $id, text: $text, completed: $completed, createdAt: $createdAt, updatedAt: $createdAt})",
			map[string]any{
				"owner":     ownerID,
				"id":        t.ID,
				"text":      t.Text,
				"completed": t.Completed,
				"createdAt": created,
			},
		)
		if err != nil {
			return fmt.Errorf("inserting todos: %w", err)
		}

		if !t.IsSubTask() {
			continue
		}
		result, err := r.tx.Run(ctx,
			"MATCH (u:User {id: $owner})-[:OWNS]->(child:Task {id: $childID}), "+
				"(u)-[:OWNS]->(parent:Task {id: $parentID}) "+
				"CREATE (child)-[:HAS_PARENT]->(parent)",
			map[string]any{
				"owner":    ownerID,
				"childID":  t.ID,
				"parentID": *t.ParentID,
			},
		)
		if err != nil {
			return fmt.Errorf("inserting todos: %w", err)
		}
		summary, err := result.Consume(ctx)
		if err != nil {
			return fmt.Errorf("inserting todos: %w", err)
		}
		if summary.Counters().RelationshipsCreated() != 1 {
			return domain.CheckParent(*t.ParentID, nil)
		}
	}
	return nil
}

func (r *neo4jTxRepo) SetFields(ctx context.Context, ownerID, id string, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error) {
	params := map[string]any{
		"owner":     ownerID,
		"id":        id,
		"text":      nil,
		"completed": nil,
		"updatedAt": formatTime(updatedAt),
	}
	if patch.Text != nil {
		params["text"] = *patch.Text
	}
	if patch.Completed != nil {
		params["completed"] = *patch.Completed
	}

	result, err := r.tx.Run(ctx,
		"MATCH (:User {id: $owner})-[:OWNS]->(t:Task {id: $id}) "+
			"SET t.text = coalesce($text, t.text), "+
			"t.completed = coalesce($completed, t.completed), "+
			"t.updatedAt = $updatedAt "+
			"WITH t OPTIONAL MATCH (t)-[:HAS_PARENT]->(p:Task) "+
			neo4jTaskReturn,
		params,
	)
	if err != nil {
		return nil, err
	}
	return singleTask(ctx, result, id)
}

func (r *neo4jTxRepo) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := r.GetByID(ctx, ownerID, id); err != nil {
		return err
	}

	// Delete descendants first, then the task itself.
	_, err := r.tx.Run(ctx,
		"MATCH (:User {id: $owner})-[:OWNS]->(t:Task {id: $id}) "+
			"MATCH (d:Task)-[:HAS_PARENT*1..]->(t) "+
			"DETACH DELETE d",
		map[string]any{"owner": ownerID, "id": id},
	)
	if err != nil {
		return err
	}

	_, err = r.tx.Run(ctx,
		"MATCH (:User {id: $owner})-[:OWNS]->(t:Task {id: $id}) DETACH DELETE t",
		map[string]any{"owner": ownerID, "id": id},
	)
	return err
}

func singleTask(ctx context.Context, result neo4j.ResultWithContext, id string) (*domain.Task, error) {
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	t, err := recordToTask(result.Record())
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func recordToTask(record *neo4j.Record) (domain.Task, error) {
	var t domain.Task

	id, _ := record.Get("id")
	text, _ := record.Get("text")
	completed, _ := record.Get("completed")
	createdAt, _ := record.Get("created_at")
	parentID, _ := record.Get("parent_id")

	var ok bool
	if t.ID, ok = id.(string); !ok {
		return t, fmt.Errorf("todo record: unexpected id %v", id)
	}
	t.Text, _ = text.(string)
	t.Completed, _ = completed.(bool)

	if s, ok := createdAt.(string); ok {
		created, err := parseTime(s)
		if err != nil {
			return t, fmt.Errorf("parsing createdAt: %w", err)
		}
		t.CreatedAt = created
	}
	if p, ok := parentID.(string); ok && p != "" {
		t.ParentID = &p
	}
	return t, nil
}

// Neo4jTaskTx implements TaskTx for the graph store: fn runs inside one
// write transaction, so parent lookups and the batch insert commit together.
type Neo4jTaskTx struct {
	repo *Neo4jTaskRepo
}

// NewNeo4jTaskTx creates a TaskTx over repo.
func NewNeo4jTaskTx(repo *Neo4jTaskRepo) *Neo4jTaskTx {
	return &Neo4jTaskTx{repo: repo}
}

func (x *Neo4jTaskTx) WithinTaskTx(ctx context.Context, fn func(ctx context.Context, repo TaskRepo) error) error {
	_, err := x.repo.write(ctx, func(repo *neo4jTxRepo) (any, error) {
		return nil, fn(ctx, repo)
	})
	return err
}
