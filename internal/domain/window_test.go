package domain

import (
	"testing"
	"time"
)

func TestClassifyWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	quiz := Quiz{StartTime: start, EndTime: end}

	cases := []struct {
		name string
		now  time.Time
		want WindowState
	}{
		{"well before start", start.Add(-24 * time.Hour), WindowNotStarted},
		{"one nanosecond before start", start.Add(-time.Nanosecond), WindowNotStarted},
		{"exactly at start", start, WindowOpen},
		{"mid window", start.Add(30 * time.Minute), WindowOpen},
		{"exactly at end", end, WindowOpen},
		{"one second after end", end.Add(time.Second), WindowExpired},
		{"long after end", end.Add(48 * time.Hour), WindowExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyWindow(tc.now, quiz); got != tc.want {
				t.Fatalf("ClassifyWindow(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestWindowStateString(t *testing.T) {
	if WindowNotStarted.String() != "not_started" || WindowOpen.String() != "open" || WindowExpired.String() != "expired" {
		t.Fatalf("unexpected state names: %v %v %v", WindowNotStarted, WindowOpen, WindowExpired)
	}
}
