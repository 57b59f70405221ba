package domain

import "time"

type Blog struct {
	ID              string
	Title           string
	Slug            string // unique, URL path segment
	Excerpt         string
	Content         string
	FeaturedImage   string // URL, empty when none
	AuthorName      string
	Tags            []string
	MetaTitle       string
	MetaDescription string
	IsFeatured      bool
	IsPublished     bool
	PublishedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
