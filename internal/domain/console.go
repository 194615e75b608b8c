package domain

import "time"

// ConsoleLine is one entry of the operator-visible log table.
type ConsoleLine struct {
	At      time.Time
	Level   string
	Message string
}

// ControlState is the coordination flag read by the companion bot.
type ControlState struct {
	Busy      bool
	StartedAt time.Time
	Total     int
	Progress  string
}
