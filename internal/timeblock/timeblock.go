// Package timeblock builds and checks the "HH:MM-HH:MM,HH:MM-HH:MM" schedule
// strings stored on itinerary entries.
package timeblock

import (
	"fmt"
	"strings"
	"time"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
)

const minutesPerDay = 24 * 60

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock parses "HH:MM" (24-hour).
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", domain.ErrInvalidInput, s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// MustParseClock is ParseClock for compile-time constants.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Add wraps past midnight.
func (c Clock) Add(d time.Duration) Clock {
	m := (int(c) + int(d/time.Minute)) % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return Clock(m)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Window is a single [Start, End) visit slot.
type Window struct {
	Start Clock
	End   Clock
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// Generate returns count back-to-back windows of length interval beginning at
// start, joined by commas. It never fails: a non-positive count yields "" and
// interval is truncated to whole minutes.
func Generate(start Clock, interval time.Duration, count int) string {
	if count <= 0 {
		return ""
	}
	blocks := make([]string, 0, count)
	cur := start
	for i := 0; i < count; i++ {
		next := cur.Add(interval)
		blocks = append(blocks, Window{Start: cur, End: next}.String())
		cur = next
	}
	return strings.Join(blocks, ",")
}

// Schedule is the generator configuration applied on commit.
type Schedule struct {
	Start    Clock
	Interval time.Duration
	Count    int
}

// DefaultSchedule is seven two-hour blocks from 09:00.
var DefaultSchedule = Schedule{Start: MustParseClock("09:00"), Interval: 120 * time.Minute, Count: 7}

func (s Schedule) Generate() string {
	return Generate(s.Start, s.Interval, s.Count)
}

// Validate checks that the schedule produces output Parse accepts: a whole
// number of minutes per block, at least one block, and a last block that
// ends before midnight.
func (s Schedule) Validate() error {
	if s.Interval < time.Minute || s.Interval%time.Minute != 0 {
		return fmt.Errorf("%w: interval %s must be a positive whole number of minutes", domain.ErrInvalidInput, s.Interval)
	}
	if s.Count <= 0 {
		return fmt.Errorf("%w: block count %d must be positive", domain.ErrInvalidInput, s.Count)
	}
	if s.Start < 0 || int(s.Start) >= minutesPerDay {
		return fmt.Errorf("%w: start %d is not a time of day", domain.ErrInvalidInput, int(s.Start))
	}
	end := time.Duration(s.Start)*time.Minute + s.Interval*time.Duration(s.Count)
	if end >= 24*time.Hour {
		return fmt.Errorf("%w: %d blocks of %s from %s run past midnight", domain.ErrInvalidInput, s.Count, s.Interval, s.Start)
	}
	return nil
}

// Parse splits a times string into windows and checks that every window is
// well formed, non-empty, and starts no earlier than the previous one ends.
// Windows are compared within a single day; a window may not cross midnight.
func Parse(times string) ([]Window, error) {
	times = strings.TrimSpace(times)
	if times == "" {
		return nil, fmt.Errorf("%w: times must not be empty", domain.ErrInvalidInput)
	}

	parts := strings.Split(times, ",")
	windows := make([]Window, 0, len(parts))
	for i, p := range parts {
		startStr, endStr, ok := strings.Cut(strings.TrimSpace(p), "-")
		if !ok {
			return nil, fmt.Errorf("%w: block %d %q must be HH:MM-HH:MM", domain.ErrInvalidInput, i, p)
		}
		start, err := ParseClock(startStr)
		if err != nil {
			return nil, err
		}
		end, err := ParseClock(endStr)
		if err != nil {
			return nil, err
		}
		if end <= start {
			return nil, fmt.Errorf("%w: block %d %q ends before it starts", domain.ErrInvalidInput, i, p)
		}
		if len(windows) > 0 && start < windows[len(windows)-1].End {
			return nil, fmt.Errorf("%w: block %d %q overlaps the previous block", domain.ErrInvalidInput, i, p)
		}
		windows = append(windows, Window{Start: start, End: end})
	}
	return windows, nil
}
