package management

import (
	"context"
	"fmt"
	"net/http"
)

// ListSearchEngines retrieves all search engines of the account
func (c *Client) ListSearchEngines(ctx context.Context) ([]SearchEngine, error) {
	var engines []SearchEngine
	if err := c.Get(ctx, "search_engines.list", buildPath("search_engines"), nil, &engines); err != nil {
		return nil, fmt.Errorf("failed to list search engines: %w", err)
	}

	c.logger.Debug().Int("count", len(engines)).Msg("Retrieved search engines")
	return engines, nil
}

// GetSearchEngine retrieves a search engine by hashid
func (c *Client) GetSearchEngine(ctx context.Context, hashid string) (*SearchEngine, error) {
	var engine SearchEngine
	if err := c.Get(ctx, "search_engines.get", enginePath(hashid), nil, &engine); err != nil {
		return nil, fmt.Errorf("failed to get search engine %s: %w", hashid, err)
	}
	return &engine, nil
}

// CreateSearchEngine creates a search engine and returns it with its hashid
func (c *Client) CreateSearchEngine(ctx context.Context, engine SearchEngine) (*SearchEngine, error) {
	var created SearchEngine
	err := c.Request(ctx, "search_engines.create", http.MethodPost, buildPath("search_engines"), nil, engine, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create search engine: %w", err)
	}
	return &created, nil
}

// UpdateSearchEngine changes the given fields of a search engine
func (c *Client) UpdateSearchEngine(ctx context.Context, hashid string, update SearchEngineUpdate) (*SearchEngine, error) {
	var updated SearchEngine
	err := c.Request(ctx, "search_engines.update", http.MethodPatch, enginePath(hashid), nil, update, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update search engine %s: %w", hashid, err)
	}
	return &updated, nil
}

// DeleteSearchEngine deletes a search engine
func (c *Client) DeleteSearchEngine(ctx context.Context, hashid string) error {
	if err := c.Request(ctx, "search_engines.delete", http.MethodDelete, enginePath(hashid), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete search engine %s: %w", hashid, err)
	}
	return nil
}

// ProcessSearchEngine schedules processing of every data source of the search engine
func (c *Client) ProcessSearchEngine(ctx context.Context, hashid string, opts ProcessOptions) (*ProcessStatus, error) {
	var status ProcessStatus
	err := c.Request(ctx, "search_engines.process", http.MethodPost, enginePath(hashid, "_process"), nil, opts, &status)
	if err != nil {
		return nil, fmt.Errorf("failed to process search engine %s: %w", hashid, err)
	}

	c.logger.Debug().Str("hashid", hashid).Str("status", status.Status).Msg("Scheduled search engine processing")
	return &status, nil
}

// ProcessStatus retrieves the state of the last processing run
func (c *Client) ProcessStatus(ctx context.Context, hashid string) (*ProcessStatus, error) {
	var status ProcessStatus
	if err := c.Get(ctx, "search_engines.process_status", enginePath(hashid, "_process"), nil, &status); err != nil {
		return nil, fmt.Errorf("failed to get process status of %s: %w", hashid, err)
	}
	return &status, nil
}
