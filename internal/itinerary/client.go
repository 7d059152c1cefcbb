package itinerary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/upstream"
)

// Client is the HTTP Store rooted at the list service's lists collection.
type Client struct {
	up *upstream.Client
}

func NewClient(up *upstream.Client) *Client {
	return &Client{up: up}
}

type createBody struct {
	BusinessID int64      `json:"business_id"`
	Day        domain.Day `json:"day"`
	Times      string     `json:"times"`
}

type timesBody struct {
	Times string `json:"times"`
}

func (c *Client) ListEntries(ctx context.Context, listID int64, day domain.Day) ([]domain.ItineraryEntry, error) {
	var q url.Values
	if day != "" {
		q = url.Values{"day": {string(day)}}
	}
	var entries []domain.ItineraryEntry
	if err := c.up.Do(ctx, http.MethodGet, entriesPath(listID), q, nil, &entries); err != nil {
		return nil, fmt.Errorf("list itineraries of list %d: %w", listID, err)
	}
	return entries, nil
}

func (c *Client) CreateEntry(ctx context.Context, listID, businessID int64, day domain.Day, times string) (domain.ItineraryEntry, error) {
	var entry domain.ItineraryEntry
	body := createBody{BusinessID: businessID, Day: day, Times: times}
	if err := c.up.Do(ctx, http.MethodPost, entriesPath(listID), nil, body, &entry); err != nil {
		return domain.ItineraryEntry{}, fmt.Errorf("create itinerary for business %d in list %d: %w", businessID, listID, err)
	}
	return entry, nil
}

func (c *Client) UpdateTimes(ctx context.Context, listID, itineraryID int64, times string) (domain.ItineraryEntry, error) {
	var entry domain.ItineraryEntry
	path := entriesPath(listID) + "/" + strconv.FormatInt(itineraryID, 10) + "/times"
	if err := c.up.Do(ctx, http.MethodPut, path, nil, timesBody{Times: times}, &entry); err != nil {
		return domain.ItineraryEntry{}, fmt.Errorf("update times of itinerary %d: %w", itineraryID, err)
	}
	return entry, nil
}

func (c *Client) DeleteEntry(ctx context.Context, listID, businessID int64) (*domain.ItineraryEntry, error) {
	var entry domain.ItineraryEntry
	path := entriesPath(listID) + "/" + strconv.FormatInt(businessID, 10)
	err := c.up.Do(ctx, http.MethodDelete, path, nil, nil, &entry)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete business %d from list %d: %w", businessID, listID, err)
	}
	return &entry, nil
}

func entriesPath(listID int64) string {
	return "/" + strconv.FormatInt(listID, 10) + "/itineraries"
}

// compile-time check that Client implements Store
var _ Store = (*Client)(nil)
