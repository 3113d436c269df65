package model

import "time"

// Item is a catalog entry. Category and Tags hold loose references to
// category and tag names; nothing enforces that those still exist.
type Item struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	CreatedBy   string    `json:"createdBy"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	NameSearch  string    `json:"namesearch"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
}

// UnknownCreator is recorded as CreatedBy when the caller has no email claim.
const UnknownCreator = "unknown"

// ItemOrder values accepted by the "order" query parameter.
const (
	OrderLatest = "latest"
	OrderOldest = "oldest"
)
