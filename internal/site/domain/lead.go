package domain

import "time"

// ContactRequest is a demo/contact form submission from the public site.
type ContactRequest struct {
	ID        string
	Name      string
	Email     string
	Company   string // optional
	Message   string
	CreatedAt time.Time
}

// CustomerReview is a public feedback form submission.
type CustomerReview struct {
	ID        string
	Name      string
	Email     string
	Rating    int // 1..5
	Review    string
	CreatedAt time.Time
}

// NewsletterSubscriber records a newsletter opt-in. Email is unique; a
// repeat subscription is reported as already-subscribed, not an error.
type NewsletterSubscriber struct {
	ID        string
	Email     string
	Source    string // e.g. "blog"
	CreatedAt time.Time
}
