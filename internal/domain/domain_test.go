package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
)

func TestParseDay(t *testing.T) {
	for _, in := range []string{"mon", " Tue ", "SUN"} {
		if _, err := domain.ParseDay(in); err != nil {
			t.Fatalf("ParseDay(%q): %v", in, err)
		}
	}
	if _, err := domain.ParseDay("monday"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCommitRequest_Validate(t *testing.T) {
	valid := domain.CommitRequest{BusinessID: 2, ListID: 10, Day: "mon"}

	t.Run("valid request passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("missing business", func(t *testing.T) {
		r := valid
		r.BusinessID = 0
		if err := r.Validate(); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("missing list", func(t *testing.T) {
		r := valid
		r.ListID = -1
		if err := r.Validate(); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("bad day", func(t *testing.T) {
		r := valid
		r.Day = "someday"
		if err := r.Validate(); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestDecideRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.DecideRequest
		wantErr bool
	}{
		{"add", domain.DecideRequest{Action: domain.ActionAdd, BusinessID: 1, ListID: 10, Day: "fri"}, false},
		{"add without day", domain.DecideRequest{Action: domain.ActionAdd, BusinessID: 1, ListID: 10}, true},
		{"remove", domain.DecideRequest{Action: domain.ActionRemove, BusinessID: 1}, false},
		{"remove without business", domain.DecideRequest{Action: domain.ActionRemove}, true},
		{"unknown action", domain.DecideRequest{Action: "maybe", BusinessID: 1}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestStartQueueRequest_Validate(t *testing.T) {
	r := domain.StartQueueRequest{Address: "   "}
	if err := r.Validate(); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCandidateItem_JSON(t *testing.T) {
	t.Run("attributes are carried verbatim", func(t *testing.T) {
		in := `{"business_id":7,"address":"Main St","display_name":"Cafe","hours":{"mon":"9-5"}}`
		var item domain.CandidateItem
		if err := json.Unmarshal([]byte(in), &item); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if item.ID != 7 || item.Address != "Main St" || item.Attributes["display_name"] != "Cafe" {
			t.Fatalf("unexpected item: %+v", item)
		}
		if _, ok := item.Attributes["business_id"]; ok {
			t.Fatal("business_id leaked into attributes")
		}

		out, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var flat map[string]any
		if err := json.Unmarshal(out, &flat); err != nil {
			t.Fatalf("decode output: %v", err)
		}
		if flat["business_id"] != float64(7) || flat["display_name"] != "Cafe" {
			t.Fatalf("unexpected wire shape: %s", out)
		}
	})

	t.Run("business_id is required", func(t *testing.T) {
		var item domain.CandidateItem
		if err := json.Unmarshal([]byte(`{"address":"Main St"}`), &item); err == nil {
			t.Fatal("expected error for missing business_id")
		}
	})

	t.Run("null address tolerated", func(t *testing.T) {
		var item domain.CandidateItem
		if err := json.Unmarshal([]byte(`{"business_id":1,"address":null}`), &item); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Address != "" {
			t.Fatalf("expected empty address, got %q", item.Address)
		}
	})
}

func TestIsNotFound(t *testing.T) {
	for _, err := range []error{domain.ErrNotFound, domain.ErrQueueEmpty, domain.ErrItemNotFound, domain.ErrNoCandidateAvailable, domain.ErrNoSession} {
		if !domain.IsNotFound(err) {
			t.Fatalf("expected %v to be not-found", err)
		}
	}
	if domain.IsNotFound(domain.ErrUpstreamUnavailable) {
		t.Fatal("upstream error is not a not-found")
	}
}
