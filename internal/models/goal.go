package models

import "time"

// Goal is one of a user's weekly goals. WeekNumber and Year are the
// ISO week the goal was created in and never change afterwards; the
// only mutable fields are Text and Completed.
type Goal struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Completed  bool      `json:"completed"`
	WeekNumber int       `json:"weekNumber"`
	Year       int       `json:"year"`
	Owner      string    `json:"owner"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
