package management

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ItemService manages the items of one index, or of its temporary counterpart.
type ItemService struct {
	client *Client
	hashid string
	index  string
	temp   bool
}

// Items returns the item operations of an index
func (c *Client) Items(hashid, index string) *ItemService {
	return &ItemService{client: c, hashid: hashid, index: index}
}

// TemporaryItems returns the item operations of the temporary index
func (c *Client) TemporaryItems(hashid, index string) *ItemService {
	return &ItemService{client: c, hashid: hashid, index: index, temp: true}
}

func (s *ItemService) path(rest ...string) string {
	segments := []string{"items"}
	if s.temp {
		segments = []string{"temp", "items"}
	}
	return indexPath(s.hashid, s.index, append(segments, rest...)...)
}

func (s *ItemService) operation(name string) string {
	if s.temp {
		return "temp_items." + name
	}
	return "items." + name
}

// Scroll retrieves one page of items
func (s *ItemService) Scroll(ctx context.Context, opts ScrollOptions) (*ItemPage, error) {
	params := url.Values{}
	if opts.ScrollID != "" {
		params.Set("scroll_id", opts.ScrollID)
	}
	if opts.RPP > 0 {
		params.Set("rpp", strconv.Itoa(opts.RPP))
	}

	var page ItemPage
	if err := s.client.Get(ctx, s.operation("scroll"), s.path(), params, &page); err != nil {
		return nil, fmt.Errorf("failed to scroll items of %s/%s: %w", s.hashid, s.index, err)
	}
	return &page, nil
}

// ScrollAll walks every item of the index, calling fn for each one.
func (s *ItemService) ScrollAll(ctx context.Context, rpp int, fn func(Item) error) error {
	opts := ScrollOptions{RPP: rpp}
	seen := 0
	for {
		page, err := s.Scroll(ctx, opts)
		if err != nil {
			return err
		}
		for _, item := range page.Items {
			if err := fn(item); err != nil {
				return err
			}
		}
		seen += len(page.Items)

		s.client.logger.Debug().
			Int("page", len(page.Items)).
			Int("seen", seen).
			Int("total", page.Total).
			Msg("Scrolled items")

		if len(page.Items) == 0 || page.ScrollID == "" || (page.Total > 0 && seen >= page.Total) {
			return nil
		}
		opts.ScrollID = page.ScrollID
	}
}

// Get retrieves an item by id
func (s *ItemService) Get(ctx context.Context, id string) (Item, error) {
	var item Item
	if err := s.client.Get(ctx, s.operation("get"), s.path(id), nil, &item); err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return item, nil
}

// Create adds an item to the index
func (s *ItemService) Create(ctx context.Context, item Item) (Item, error) {
	var created Item
	if err := s.client.Request(ctx, s.operation("create"), http.MethodPost, s.path(), nil, item, &created); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return created, nil
}

// Update changes the given fields of an item
func (s *ItemService) Update(ctx context.Context, id string, item Item) (Item, error) {
	var updated Item
	if err := s.client.Request(ctx, s.operation("update"), http.MethodPatch, s.path(id), nil, item, &updated); err != nil {
		return nil, fmt.Errorf("failed to update item %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes an item from the index
func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := s.client.Request(ctx, s.operation("delete"), http.MethodDelete, s.path(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}

// CreateBulk adds several items in one request. The API rejects oversized
// batches with ErrTooManyItems.
func (s *ItemService) CreateBulk(ctx context.Context, items []Item) (*BulkResponse, error) {
	return s.bulk(ctx, "create_bulk", http.MethodPost, items)
}

// UpdateBulk updates several items in one request
func (s *ItemService) UpdateBulk(ctx context.Context, items []Item) (*BulkResponse, error) {
	return s.bulk(ctx, "update_bulk", http.MethodPatch, items)
}

// DeleteBulk removes several items in one request
func (s *ItemService) DeleteBulk(ctx context.Context, ids []string) (*BulkResponse, error) {
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{"id": id}
	}
	return s.bulk(ctx, "delete_bulk", http.MethodDelete, items)
}

func (s *ItemService) bulk(ctx context.Context, name, method string, items []Item) (*BulkResponse, error) {
	var resp BulkResponse
	if err := s.client.Request(ctx, s.operation(name), method, s.path("_bulk"), nil, items, &resp); err != nil {
		return nil, fmt.Errorf("failed to %s %d items: %w", name, len(items), err)
	}

	if failed := resp.Failed(); len(failed) > 0 {
		s.client.logger.Warn().
			Int("failed", len(failed)).
			Int("total", len(items)).
			Str("operation", s.operation(name)).
			Msg("Bulk operation partially failed")
	}
	return &resp, nil
}
