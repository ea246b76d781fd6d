package models

import "time"

// Entry describes a stored file. It is derived from storage on every
// listing and never cached.
type Entry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}
