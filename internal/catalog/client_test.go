package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/wayfarer/itinerary-orchestrator/internal/catalog"
	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/ratelimiter"
	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
	"github.com/wayfarer/itinerary-orchestrator/internal/upstream"
)

func newClient(t *testing.T, h http.HandlerFunc) *catalog.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	up := upstream.New(ratelimiter.UpstreamCatalog, srv.URL+"/businesses", time.Second, upstream.Options{})
	return catalog.NewClient(up)
}

func TestClient_ListItems(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/businesses/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("address") != "Main St" || q.Get("limit") != "2" {
			t.Errorf("unexpected query %v", q)
		}
		if got := q["exclude_ids"]; !reflect.DeepEqual(got, []string{"1", "2"}) {
			t.Errorf("unexpected exclude_ids %v", got)
		}
		if r.Header.Get(reqctx.HeaderCorrelationID) != "cid-7" {
			t.Errorf("correlation id not forwarded")
		}
		_, _ = w.Write([]byte(`[
			{"business_id":3,"address":"Main St","display_name":"Cafe","category":"food"},
			{"business_id":4,"address":"Main St","display_name":"Museum"}
		]`))
	})

	ctx := reqctx.WithCorrelationID(context.Background(), "cid-7")
	items, err := c.ListItems(ctx, "Main St", 2, []int64{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].ID != 3 || items[1].ID != 4 {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].Address != "Main St" || items[0].Attributes["display_name"] != "Cafe" {
		t.Fatalf("attributes not carried: %+v", items[0])
	}
}

func TestClient_GetItem(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/businesses/5":
			_, _ = w.Write([]byte(`{"business_id":5,"address":"Elm"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	item, err := c.GetItem(context.Background(), 5)
	if err != nil || item.ID != 5 {
		t.Fatalf("expected business 5, got %+v err=%v", item, err)
	}

	if _, err := c.GetItem(context.Background(), 6); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_NextUnseen(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/businesses/next" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		q := r.URL.Query()
		if q.Get("location") != "Elm" || q.Get("list_id") != "10" {
			t.Errorf("unexpected query %v", q)
		}
		if len(q["existing_ids"]) == 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"business_id":9,"address":"Elm"}`))
	})

	item, err := c.NextUnseen(context.Background(), "Elm", 10, []int64{1})
	if err != nil || item.ID != 9 {
		t.Fatalf("expected business 9, got %+v err=%v", item, err)
	}
	if _, err := c.NextUnseen(context.Background(), "Elm", 10, []int64{1, 9}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound when exhausted, got %v", err)
	}
}

func TestClient_UpstreamFailure(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := c.ListItems(context.Background(), "x", 1, nil); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
