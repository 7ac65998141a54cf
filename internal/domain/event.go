package domain

import "time"

// CalendarEvent is an upcoming entry reported by the calendar collaborator.
type CalendarEvent struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
}
