package model

import "time"

// Banner is a carousel slide on the public home page.
type Banner struct {
	ID           uint64     `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description" db:"description"`
	ImageURL     string     `json:"imageUrl" db:"image_url"`
	LinkURL      *string    `json:"linkUrl" db:"link_url"`
	VisibleFrom  *time.Time `json:"visibleFrom" db:"visible_from"`
	VisibleUntil *time.Time `json:"visibleUntil" db:"visible_until"`
	DisplayOrder int        `json:"displayOrder" db:"display_order"`
	Active       bool       `json:"active" db:"is_active"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}
