package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/soochol/agentcanvas/internal/flow"
)

func TestNextRun(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		frequency string
		lastRun   time.Time
		want      time.Time
	}{
		{"never ran daily", "daily", time.Time{}, now.Add(24 * time.Hour)},
		{"daily half elapsed", "daily", now.Add(-12 * time.Hour), now.Add(12 * time.Hour)},
		{"hourly overdue", "hourly", now.Add(-3 * time.Hour), now},
		{"6-hourly", "6-hourly", now.Add(-time.Hour), now.Add(5 * time.Hour)},
		{"monthly", "monthly", now.Add(-24 * time.Hour), now.Add(29 * 24 * time.Hour)},
		{"cron expression", "0 9 * * *", now.Add(-time.Hour), time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRun(tt.frequency, tt.lastRun, now)
			if err != nil {
				t.Fatalf("NextRun: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextRun_Unknown(t *testing.T) {
	for _, f := range []string{"on-demand", "fortnightly", ""} {
		if _, err := NextRun(f, time.Time{}, time.Now()); !errors.Is(err, ErrUnknownFrequency) {
			t.Errorf("NextRun(%q): got %v, want ErrUnknownFrequency", f, err)
		}
	}
}

func TestParseLastRun(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 0, 0, 500000000, time.UTC)
	for _, s := range []string{
		"2024-05-01 10:00:00.500000",
		"2024-05-01T10:00:00.5",
		"2024-05-01T10:00:00.5Z",
	} {
		got, err := ParseLastRun(s, time.UTC)
		if err != nil {
			t.Errorf("ParseLastRun(%q): %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseLastRun(%q) = %v, want %v", s, got, want)
		}
	}
	if got, err := ParseLastRun("", time.UTC); err != nil || !got.IsZero() {
		t.Errorf("empty last_run: got %v, %v", got, err)
	}
	if _, err := ParseLastRun("yesterday", time.UTC); err == nil {
		t.Error("expected error for garbage last_run")
	}
}

func TestFormatDueIn(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "now"},
		{30 * time.Second, "now"},
		{2 * time.Hour, "2 hours"},
		{27*time.Hour + 5*time.Minute, "1 days 3 hours 5 minutes"},
		{48 * time.Hour, "2 days"},
	}
	for _, tt := range tests {
		if got := FormatDueIn(tt.d); got != tt.want {
			t.Errorf("FormatDueIn(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestUpcoming_SkipsOnDemand(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	agent := flow.Agent{Tasks: []flow.Task{
		{Type: flow.TaskSEOOptimizer, Frequency: "daily", LastRun: "2024-05-02 10:00:00.000000"},
		{Type: flow.TaskPostCreator, Frequency: "on-demand"},
		{Type: flow.TaskCompetitorWatchdog, Frequency: "hourly"},
	}}
	got := Upcoming(agent, now)
	if len(got) != 2 {
		t.Fatalf("upcoming: got %d, want 2", len(got))
	}
	if got[0].TaskType != "seo_optimizer" || got[0].DueIn != "22 hours" {
		t.Errorf("first: got %+v", got[0])
	}
	if got[1].DueIn != "1 hours" {
		t.Errorf("second: got %+v", got[1])
	}
}
