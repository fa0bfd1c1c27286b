// Package catalog is the admin side of the portal: CRUD over the backend's
// content collections plus the query inbox, user roles and reports.
package catalog

import (
	"context"
	"fmt"

	"github.com/appetiteclub/portal/internal/apiclient"
)

// Collection reads and writes one REST resource whose items decode into T.
type Collection[T any] struct {
	client   *apiclient.Client
	resource string
}

func NewCollection[T any](client *apiclient.Client, resource string) *Collection[T] {
	return &Collection[T]{client: client, resource: resource}
}

func (c *Collection[T]) Resource() string {
	return c.resource
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("%s client not configured", c.name())
	}

	resp, err := c.client.List(ctx, c.resource)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.resource, err)
	}

	var out []T
	if err := apiclient.Decode(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("%s client not configured", c.name())
	}
	if id == "" {
		return nil, fmt.Errorf("missing %s id", c.resource)
	}

	resp, err := c.client.Get(ctx, c.resource, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", c.resource, id, err)
	}
	return decodeOne[T](resp)
}

func (c *Collection[T]) Create(ctx context.Context, item T) (*T, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("%s client not configured", c.name())
	}

	resp, err := c.client.Create(ctx, c.resource, item)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", c.resource, err)
	}
	return decodeOne[T](resp)
}

// Update sends patch, which may be a full T or a partial body.
func (c *Collection[T]) Update(ctx context.Context, id string, patch any) (*T, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("%s client not configured", c.name())
	}
	if id == "" {
		return nil, fmt.Errorf("missing %s id", c.resource)
	}

	resp, err := c.client.Update(ctx, c.resource, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", c.resource, id, err)
	}
	return decodeOne[T](resp)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("%s client not configured", c.name())
	}
	if id == "" {
		return fmt.Errorf("missing %s id", c.resource)
	}

	if _, err := c.client.Delete(ctx, c.resource, id); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", c.resource, id, err)
	}
	return nil
}

func (c *Collection[T]) name() string {
	if c == nil {
		return "catalog"
	}
	return c.resource
}

func decodeOne[T any](resp *apiclient.SuccessResponse) (*T, error) {
	var item T
	if err := apiclient.Decode(resp, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
