package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kubecrud/items-api/internal/database"
	"github.com/kubecrud/items-api/internal/item"
)

// Executor is the single statement primitive the repository needs;
// *database.Store implements it.
type Executor interface {
	Execute(ctx context.Context, stmt string, args ...any) (*database.Result, error)
}

const columns = "id, name, description, created_at"

const (
	listSQL    = "SELECT " + columns + " FROM items ORDER BY id ASC"
	getSQL     = "SELECT " + columns + " FROM items WHERE id = $1"
	createSQL  = "INSERT INTO items (name, description) VALUES ($1, $2) RETURNING " + columns
	replaceSQL = "UPDATE items SET name = $1, description = $2 WHERE id = $3 RETURNING " + columns
	deleteSQL  = "DELETE FROM items WHERE id = $1"
)

// PostgresRepo maps item operations onto one SQL statement each.
type PostgresRepo struct {
	db Executor
}

func NewPostgresRepo(db Executor) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (p *PostgresRepo) List(ctx context.Context) ([]*item.Item, error) {
	res, err := p.db.Execute(ctx, listSQL)
	if err != nil {
		return nil, err
	}
	out := make([]*item.Item, 0, len(res.Rows))
	for _, row := range res.Rows {
		it, err := scanItem(row)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (p *PostgresRepo) Get(ctx context.Context, id int64) (*item.Item, error) {
	return p.one(ctx, getSQL, id)
}

func (p *PostgresRepo) Create(ctx context.Context, name string, description *string) (*item.Item, error) {
	return p.one(ctx, createSQL, name, description)
}

func (p *PostgresRepo) Replace(ctx context.Context, id int64, name, description *string) (*item.Item, error) {
	return p.one(ctx, replaceSQL, name, description, id)
}

func (p *PostgresRepo) Delete(ctx context.Context, id int64) error {
	res, err := p.db.Execute(ctx, deleteSQL, id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return item.ErrNotFound
	}
	return nil
}

func (p *PostgresRepo) one(ctx context.Context, stmt string, args ...any) (*item.Item, error) {
	res, err := p.db.Execute(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, item.ErrNotFound
	}
	return scanItem(res.Rows[0])
}

func scanItem(row map[string]any) (*item.Item, error) {
	it := &item.Item{}
	switch v := row["id"].(type) {
	case int32:
		it.ID = int64(v)
	case int64:
		it.ID = v
	case int16:
		it.ID = int64(v)
	default:
		return nil, fmt.Errorf("items.id: unexpected type %T", row["id"])
	}

	name, ok := row["name"].(string)
	if !ok {
		return nil, fmt.Errorf("items.name: unexpected type %T", row["name"])
	}
	it.Name = name

	switch v := row["description"].(type) {
	case nil:
	case string:
		it.Description = &v
	default:
		return nil, fmt.Errorf("items.description: unexpected type %T", v)
	}

	switch v := row["created_at"].(type) {
	case time.Time:
		it.CreatedAt = v
	case nil:
	default:
		return nil, fmt.Errorf("items.created_at: unexpected type %T", v)
	}
	return it, nil
}
