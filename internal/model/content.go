package model

import "time"

// News statuses.
const (
	NewsDraft     = "draft"
	NewsPublished = "published"
)

// GalleryImage is a photo in the public gallery.
type GalleryImage struct {
	ID           uint64    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	ImageURL     string    `json:"imageUrl" db:"image_url"`
	Category     string    `json:"category" db:"category"`
	DisplayOrder int       `json:"displayOrder" db:"display_order"`
	Active       bool      `json:"active" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// NewsArticle is a news or blog post.  PublishedAt is set the first time the
// article moves to the published status.
type NewsArticle struct {
	ID          uint64     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Excerpt     string     `json:"excerpt" db:"excerpt"`
	Content     string     `json:"content" db:"content"`
	ImageURL    string     `json:"imageUrl" db:"image_url"`
	Category    string     `json:"category" db:"category"`
	Author      string     `json:"author" db:"author"`
	Status      string     `json:"status" db:"status"`
	PublishedAt *time.Time `json:"publishedAt" db:"published_at"`
	Featured    bool       `json:"featured" db:"featured"`
	Active      bool       `json:"active" db:"is_active"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}
