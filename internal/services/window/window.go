// Package window decides whether an instant falls inside a recurring
// daily activity window.
package window

import (
	"fmt"
	"time"
)

// Gate holds the raw configured bounds of a daily window, as times of day
// in UTC ("HH:MM:SS" or "HH:MM"). The zero Gate is always active.
type Gate struct {
	Start string
	End   string
}

// timeOfDayLayouts are accepted formats for the window bounds
var timeOfDayLayouts = []string{"15:04:05", "15:04"}

// Active reports whether now falls inside the window.
//
// Missing configuration is permissive: with both bounds unset the gate is
// always active and no error is returned. Malformed configuration is a
// fault the operator must see: the gate still reports active (the caller
// proceeds permissively) but returns the parse error alongside. The two
// cases must never collapse into each other.
func (g Gate) Active(now time.Time) (bool, error) {
	if g.Start == "" && g.End == "" {
		return true, nil
	}
	if g.Start == "" || g.End == "" {
		return true, fmt.Errorf("seeding window requires both bounds, got start=%q end=%q", g.Start, g.End)
	}

	start, err := parseTimeOfDay(g.Start)
	if err != nil {
		return true, fmt.Errorf("bad seeding window start %q: %w", g.Start, err)
	}
	end, err := parseTimeOfDay(g.End)
	if err != nil {
		return true, fmt.Errorf("bad seeding window end %q: %w", g.End, err)
	}

	n := secondOfDay(now.UTC())

	// A window with start <= end is plain containment; start > end wraps
	// past midnight
	if start <= end {
		return start <= n && n <= end, nil
	}
	return n >= start || n < end, nil
}

func parseTimeOfDay(s string) (int, error) {
	var lastErr error
	for _, layout := range timeOfDayLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return secondOfDay(t), nil
		}
		lastErr = err
	}
	return 0, lastErr
}

func secondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
