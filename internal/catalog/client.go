package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/upstream"
)

// Client is the HTTP Catalog rooted at the businesses collection URL.
type Client struct {
	up *upstream.Client
}

func NewClient(up *upstream.Client) *Client {
	return &Client{up: up}
}

func (c *Client) ListItems(ctx context.Context, address string, limit int, exclude []int64) ([]domain.CandidateItem, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("limit", strconv.Itoa(limit))
	addIDs(q, "exclude_ids", exclude)

	var items []domain.CandidateItem
	if err := c.up.Do(ctx, http.MethodGet, "/", q, nil, &items); err != nil {
		return nil, fmt.Errorf("list businesses at %q: %w", address, err)
	}
	return items, nil
}

func (c *Client) GetItem(ctx context.Context, id int64) (domain.CandidateItem, error) {
	var item domain.CandidateItem
	if err := c.up.Do(ctx, http.MethodGet, "/"+strconv.FormatInt(id, 10), nil, nil, &item); err != nil {
		return domain.CandidateItem{}, fmt.Errorf("get business %d: %w", id, err)
	}
	return item, nil
}

func (c *Client) NextUnseen(ctx context.Context, location string, listID int64, exclude []int64) (domain.CandidateItem, error) {
	q := url.Values{}
	q.Set("location", location)
	q.Set("list_id", strconv.FormatInt(listID, 10))
	addIDs(q, "existing_ids", exclude)

	var item domain.CandidateItem
	if err := c.up.Do(ctx, http.MethodGet, "/next", q, nil, &item); err != nil {
		return domain.CandidateItem{}, fmt.Errorf("next business at %q: %w", location, err)
	}
	return item, nil
}

func addIDs(q url.Values, key string, ids []int64) {
	for _, id := range ids {
		q.Add(key, strconv.FormatInt(id, 10))
	}
}

// compile-time check that Client implements Catalog
var _ Catalog = (*Client)(nil)
