// Package schedule computes when an agent task is next due from its
// frequency and last run time.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/soochol/agentcanvas/internal/flow"
)

const OnDemand = "on-demand"

var ErrUnknownFrequency = errors.New("unknown frequency")

// named frequencies understood by the remote runner
var intervals = map[string]time.Duration{
	"hourly":   time.Hour,
	"6-hourly": 6 * time.Hour,
	"daily":    24 * time.Hour,
	"weekly":   7 * 24 * time.Hour,
	"monthly":  30 * 24 * time.Hour,
}

// Parse turns a frequency into a cron schedule. Named frequencies become
// constant-delay schedules; anything else is read as a standard five-field
// cron expression or descriptor. On-demand tasks have no schedule.
func Parse(frequency string) (cron.Schedule, error) {
	if frequency == OnDemand {
		return nil, fmt.Errorf("%w: %s has no schedule", ErrUnknownFrequency, frequency)
	}
	if d, ok := intervals[frequency]; ok {
		return cron.Every(d), nil
	}
	sched, err := cron.ParseStandard(frequency)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownFrequency, frequency, err)
	}
	return sched, nil
}

// NextRun returns when a task with the given frequency is next due. A task
// that never ran is due one interval from now; an overdue task is due now.
func NextRun(frequency string, lastRun, now time.Time) (time.Time, error) {
	sched, err := Parse(frequency)
	if err != nil {
		return time.Time{}, err
	}
	if lastRun.IsZero() {
		return sched.Next(now), nil
	}
	next := sched.Next(lastRun)
	if next.Before(now) {
		return now, nil
	}
	return next, nil
}

// lastRunLayouts are the timestamp layouts the remote API has been seen to
// emit for last_run.
var lastRunLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
}

// ParseLastRun parses a last_run value. The empty string is the zero time.
// Timestamps without a zone are read in loc.
func ParseLastRun(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range lastRunLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised last_run %q", s)
}

// FormatDueIn renders d as "N days N hours N minutes", leaving out zero
// parts. Anything under a minute is "now".
func FormatDueIn(d time.Duration) string {
	if d < time.Minute {
		return "now"
	}
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d days", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", minutes))
	}
	return strings.Join(parts, " ")
}

// Upcoming lists the scheduled tasks of an agent with their due-in text.
// On-demand tasks and tasks with an unreadable frequency or last run are
// skipped.
func Upcoming(agent flow.Agent, now time.Time) []flow.UpcomingTask {
	out := []flow.UpcomingTask{}
	for _, t := range agent.Tasks {
		if t.Frequency == OnDemand {
			continue
		}
		last, err := ParseLastRun(t.LastRun, now.Location())
		if err != nil {
			continue
		}
		next, err := NextRun(t.Frequency, last, now)
		if err != nil {
			continue
		}
		out = append(out, flow.UpcomingTask{TaskType: string(t.Type), DueIn: FormatDueIn(next.Sub(now))})
	}
	return out
}
