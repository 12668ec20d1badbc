package service

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kubecrud/items-api/internal/item"
	"github.com/kubecrud/items-api/internal/item/repository"
)

// CreateInput is the body of POST /items.
type CreateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ReplaceInput is the body of PUT /items/:id. Both fields are replaced.
type ReplaceInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Service holds the item operations used by the handler layer.
type Service struct {
	repo          repository.Repository
	strictReplace bool
}

// Option customizes a Service.
type Option func(*Service)

// WithStrictReplace makes Replace require a non-empty name like Create does.
// Without it Replace hands whatever name it got to the store.
func WithStrictReplace(strict bool) Option {
	return func(s *Service) { s.strictReplace = strict }
}

func NewService(repo repository.Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]*item.Item, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*item.Item, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*item.Item, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, *in.Name, in.Description)
}

func (s *Service) Replace(ctx context.Context, id int64, in ReplaceInput) (*item.Item, error) {
	if s.strictReplace {
		if err := validateName(in.Name); err != nil {
			return nil, err
		}
	}
	return s.repo.Replace(ctx, id, in.Name, in.Description)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateName(name *string) error {
	err := validation.Validate(name, validation.Required.Error("name required"))
	if err == nil {
		return nil
	}
	var verr validation.Error
	if errors.As(err, &verr) {
		return &item.ValidationError{Field: "name", Message: verr.Error()}
	}
	return err
}
