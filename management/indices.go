package management

import (
	"context"
	"fmt"
	"net/http"
)

// ListIndices retrieves the indices of a search engine
func (c *Client) ListIndices(ctx context.Context, hashid string) ([]Index, error) {
	var indices []Index
	if err := c.Get(ctx, "indices.list", enginePath(hashid, "indices"), nil, &indices); err != nil {
		return nil, fmt.Errorf("failed to list indices of %s: %w", hashid, err)
	}
	return indices, nil
}

// GetIndex retrieves an index by name
func (c *Client) GetIndex(ctx context.Context, hashid, name string) (*Index, error) {
	var index Index
	if err := c.Get(ctx, "indices.get", indexPath(hashid, name), nil, &index); err != nil {
		return nil, fmt.Errorf("failed to get index %s/%s: %w", hashid, name, err)
	}
	return &index, nil
}

// CreateIndex creates an index in a search engine
func (c *Client) CreateIndex(ctx context.Context, hashid string, index Index) (*Index, error) {
	var created Index
	err := c.Request(ctx, "indices.create", http.MethodPost, enginePath(hashid, "indices"), nil, index, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create index in %s: %w", hashid, err)
	}
	return &created, nil
}

// UpdateIndex replaces the settings of an index
func (c *Client) UpdateIndex(ctx context.Context, hashid, name string, index Index) (*Index, error) {
	var updated Index
	err := c.Request(ctx, "indices.update", http.MethodPatch, indexPath(hashid, name), nil, index, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update index %s/%s: %w", hashid, name, err)
	}
	return &updated, nil
}

// DeleteIndex deletes an index
func (c *Client) DeleteIndex(ctx context.Context, hashid, name string) error {
	if err := c.Request(ctx, "indices.delete", http.MethodDelete, indexPath(hashid, name), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete index %s/%s: %w", hashid, name, err)
	}
	return nil
}

// ReindexToTemp starts copying the index into its temporary index
func (c *Client) ReindexToTemp(ctx context.Context, hashid, name string) error {
	err := c.Request(ctx, "indices.reindex_to_temp", http.MethodPost, indexPath(hashid, name, "_reindex_to_temp"), nil, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to reindex %s/%s: %w", hashid, name, err)
	}
	return nil
}

// ReindexStatus retrieves the state of the last reindex task
func (c *Client) ReindexStatus(ctx context.Context, hashid, name string) (*TaskStatus, error) {
	var status TaskStatus
	if err := c.Get(ctx, "indices.reindex_status", indexPath(hashid, name, "_reindex_to_temp"), nil, &status); err != nil {
		return nil, fmt.Errorf("failed to get reindex status of %s/%s: %w", hashid, name, err)
	}
	return &status, nil
}

// CreateTemporaryIndex creates the temporary counterpart of an index.
// The API allows a limited number of them; exceeding it yields ErrTooManyTemporary.
func (c *Client) CreateTemporaryIndex(ctx context.Context, hashid, name string) error {
	if err := c.Request(ctx, "indices.create_temp", http.MethodPost, indexPath(hashid, name, "temp"), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to create temporary index %s/%s: %w", hashid, name, err)
	}
	return nil
}

// DeleteTemporaryIndex deletes the temporary counterpart of an index
func (c *Client) DeleteTemporaryIndex(ctx context.Context, hashid, name string) error {
	if err := c.Request(ctx, "indices.delete_temp", http.MethodDelete, indexPath(hashid, name, "temp"), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete temporary index %s/%s: %w", hashid, name, err)
	}
	return nil
}

// ReplaceByTemporary swaps the index for its temporary counterpart
func (c *Client) ReplaceByTemporary(ctx context.Context, hashid, name string) error {
	if err := c.Request(ctx, "indices.replace_by_temp", http.MethodPost, indexPath(hashid, name, "_replace_by_temp"), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to replace %s/%s by temporary index: %w", hashid, name, err)
	}
	return nil
}
