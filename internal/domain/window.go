package domain

import "time"

// WindowState classifies "now" against a quiz's [start, end] window.
type WindowState int

const (
	WindowNotStarted WindowState = iota
	WindowOpen
	WindowExpired
)

func (s WindowState) String() string {
	switch s {
	case WindowNotStarted:
		return "not_started"
	case WindowOpen:
		return "open"
	case WindowExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// ClassifyWindow decides whether an attempt may begin at the given instant.
// NotStarted strictly before start, Expired strictly after end, Open
// otherwise; the boundary instants themselves count as Open. Callers must
// re-run this at write time, not only at read time, to close the race
// between fetching a quiz and persisting answers near the end boundary.
func ClassifyWindow(now time.Time, quiz Quiz) WindowState {
	if now.Before(quiz.StartTime) {
		return WindowNotStarted
	}
	if now.After(quiz.EndTime) {
		return WindowExpired
	}
	return WindowOpen
}
