package model

import "time"

// Category groups items. Image is the public URL of at most one stored object.
type Category struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Type        string    `json:"type"`
}
