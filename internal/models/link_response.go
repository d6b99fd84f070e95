package models

import (
	"time"

	"github.com/prankitapotbhare/TinyLink/internal/entities"
)

// CreateLinkResponse is the public projection returned after creating a short link
type CreateLinkResponse struct {
	Code      string    `json:"code"`
	URL       string    `json:"url"`
	ShortURL  string    `json:"shortUrl"` // Full short URL (base URL + code)
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListLinksResponse wraps the dashboard listing, newest first
type ListLinksResponse struct {
	Links []*entities.Link `json:"links"`
}

// HealthResponse reports store reachability and process uptime
type HealthResponse struct {
	OK            bool   `json:"ok"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Timestamp     string `json:"timestamp"`
	Database      string `json:"database"`
	Error         string `json:"error,omitempty"`
}
