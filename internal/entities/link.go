package entities

import "time"

// Link represents a shortened link row in the database
type Link struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	URL         string     `json:"url"`
	Clicks      int64      `json:"clicks"`
	LastClicked *time.Time `json:"last_clicked"` // nil until the first redirect
	CreatedAt   time.Time  `json:"created_at"`
}
