package repository

import (
	"context"

	"github.com/kubecrud/items-api/internal/item"
)

// Repository is the persistence contract for items. Implementations return
// item.ErrNotFound when the id matched nothing.
type Repository interface {
	List(ctx context.Context) ([]*item.Item, error)
	Get(ctx context.Context, id int64) (*item.Item, error)
	Create(ctx context.Context, name string, description *string) (*item.Item, error)
	// Replace overwrites name and description. A nil name is passed through to
	// the store, which rejects it.
	Replace(ctx context.Context, id int64, name, description *string) (*item.Item, error)
	Delete(ctx context.Context, id int64) error
}
