package domain

import (
	"fmt"
	"strings"
)

// Day is a weekday abbreviation as stored on itinerary entries.
type Day string

const (
	DayMon Day = "mon"
	DayTue Day = "tue"
	DayWed Day = "wed"
	DayThu Day = "thu"
	DayFri Day = "fri"
	DaySat Day = "sat"
	DaySun Day = "sun"
)

func (d Day) IsValid() bool {
	switch d {
	case DayMon, DayTue, DayWed, DayThu, DayFri, DaySat, DaySun:
		return true
	}
	return false
}

// ParseDay normalises case and surrounding whitespace.
func ParseDay(s string) (Day, error) {
	d := Day(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: day %q must be one of mon..sun", ErrInvalidInput, s)
	}
	return d, nil
}

// ItineraryEntry is the durable record created when a candidate is committed.
// Times is a comma-separated ordered list of "HH:MM-HH:MM" windows.
type ItineraryEntry struct {
	ItineraryID int64  `json:"itinerary_id"`
	ListID      int64  `json:"list_id"`
	BusinessID  int64  `json:"business_id"`
	Day         Day    `json:"day"`
	Times       string `json:"times"`
}

// CreateEntryRequest is the inbound payload for a direct itinerary write.
type CreateEntryRequest struct {
	ListID     int64  `json:"list_id"`
	BusinessID int64  `json:"business_id"`
	Day        string `json:"day"`
	Times      string `json:"times"`
}

func (r *CreateEntryRequest) Validate() error {
	if r.ListID <= 0 {
		return fmt.Errorf("%w: list_id must be positive", ErrInvalidInput)
	}
	if r.BusinessID <= 0 {
		return fmt.Errorf("%w: business_id must be positive", ErrInvalidInput)
	}
	if _, err := ParseDay(r.Day); err != nil {
		return err
	}
	return nil
}
