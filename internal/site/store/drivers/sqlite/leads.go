package sqlite

import (
	"context"

	"github.com/paymall/site-api/internal/site/domain"
)

type leadsRepo struct {
	db DBTX
}

func (r *leadsRepo) CreateContactRequest(ctx context.Context, c domain.ContactRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_requests (id, name, email, company, message)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Company, c.Message)
	return err
}

func (r *leadsRepo) CreateCustomerReview(ctx context.Context, rev domain.CustomerReview) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customer_reviews (id, name, email, rating, review)
		VALUES (?, ?, ?, ?, ?)`,
		rev.ID, rev.Name, rev.Email, rev.Rating, rev.Review)
	return err
}

func (r *leadsRepo) CreateNewsletterSubscriber(ctx context.Context, s domain.NewsletterSubscriber) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO newsletter_subscribers (id, email, source)
		VALUES (?, ?, ?)`,
		s.ID, s.Email, s.Source)
	return mapUnique(err)
}
