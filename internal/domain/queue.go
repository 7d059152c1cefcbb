package domain

import (
	"fmt"
	"strings"
)

// StartQueueRequest is the inbound payload for POST /api/v1/queue/start.
type StartQueueRequest struct {
	Address string `json:"address"`
}

func (r *StartQueueRequest) Validate() error {
	if strings.TrimSpace(r.Address) == "" {
		return fmt.Errorf("%w: address must not be empty", ErrInvalidInput)
	}
	return nil
}

// CommitRequest accepts the candidate into list ListID on Day.
type CommitRequest struct {
	BusinessID int64  `json:"business_id"`
	ListID     int64  `json:"list_id"`
	Day        string `json:"day"`
}

func (r *CommitRequest) Validate() error {
	if r.BusinessID <= 0 {
		return fmt.Errorf("%w: business_id must be positive", ErrInvalidInput)
	}
	if r.ListID <= 0 {
		return fmt.Errorf("%w: list_id must be positive", ErrInvalidInput)
	}
	if _, err := ParseDay(r.Day); err != nil {
		return err
	}
	return nil
}

// SkipRequest discards the candidate without persisting it.
type SkipRequest struct {
	BusinessID int64  `json:"business_id"`
	Address    string `json:"address"`
}

func (r *SkipRequest) Validate() error {
	if r.BusinessID <= 0 {
		return fmt.Errorf("%w: business_id must be positive", ErrInvalidInput)
	}
	return nil
}

// Decision actions for the combined add-or-remove endpoint.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// DecideRequest either commits (add) or skips (remove) a candidate.
type DecideRequest struct {
	Action     string `json:"action"`
	BusinessID int64  `json:"business_id"`
	ListID     int64  `json:"list_id"`
	Address    string `json:"address"`
	Day        string `json:"day"`
}

func (r *DecideRequest) Validate() error {
	switch r.Action {
	case ActionAdd:
		c := CommitRequest{BusinessID: r.BusinessID, ListID: r.ListID, Day: r.Day}
		return c.Validate()
	case ActionRemove:
		s := SkipRequest{BusinessID: r.BusinessID, Address: r.Address}
		return s.Validate()
	default:
		return fmt.Errorf("%w: invalid action %q, use 'add' or 'remove'", ErrInvalidInput, r.Action)
	}
}

// QueueSnapshot is a point-in-time copy of the session for operators.
type QueueSnapshot struct {
	Active     bool            `json:"active"`
	Address    string          `json:"address,omitempty"`
	Items      []CandidateItem `json:"items"`
	TargetSize int             `json:"target_size"`
	Seen       int             `json:"seen"`
}
