// Package models holds the wire shapes the CLI decodes from the CDN API.
package models

import "time"

// FileInfo describes one stored file as listed by the server.
type FileInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Page is one window of a sorted file listing.
type Page struct {
	Files      []FileInfo `json:"files"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
	Total      int        `json:"total"`
}

// LoginResponse is returned by POST /api/login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
