package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/paymall/site-api/internal/site/domain"
	"github.com/paymall/site-api/internal/site/store"
	"github.com/paymall/site-api/pkg/idx"
	"github.com/paymall/site-api/pkg/slogx"
)

const (
	minMessageLength = 10
	minReviewLength  = 10

	maxNameLength    = 100
	maxEmailLength   = 255
	maxCompanyLength = 100
	maxMessageLength = 1000
	maxReviewLength  = 1000
)

var (
	ErrLeadInvalid       = errors.New("name, a valid email, and a message of at least 10 characters are required")
	ErrReviewInvalid     = errors.New("rating must be 1-5 and review at least 10 characters")
	ErrAlreadySubscribed = errors.New("email is already subscribed")
	ErrSubscriberNoEmail = errors.New("a valid email is required")
)

// LeadService stores public form submissions: demo requests, reviews, and
// newsletter opt-ins. Everything here is written by anonymous visitors, so
// validation is strict and the endpoints sit behind the public rate tier.
type LeadService struct {
	Store store.Store
}

func (s *LeadService) SubmitContactRequest(ctx context.Context, name, email, company, message string) error {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	company = strings.TrimSpace(company)
	message = strings.TrimSpace(message)
	if name == "" || len(name) > maxNameLength || !validEmail(email) {
		return ErrLeadInvalid
	}
	if len(message) < minMessageLength || len(message) > maxMessageLength ||
		len(company) > maxCompanyLength {
		return ErrLeadInvalid
	}

	err := s.Store.Leads().CreateContactRequest(ctx, domain.ContactRequest{
		ID:      idx.New().String(),
		Name:    name,
		Email:   email,
		Company: company,
		Message: message,
	})
	if err != nil {
		log.Error("failed to store contact request", slog.Any("error", err))
		return err
	}

	log.Info("contact request received")
	return nil
}

func (s *LeadService) SubmitReview(ctx context.Context, name, email string, rating int, review string) error {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	review = strings.TrimSpace(review)
	if name == "" || len(name) > maxNameLength || !validEmail(email) {
		return ErrLeadInvalid
	}
	if rating < 1 || rating > 5 ||
		len(review) < minReviewLength || len(review) > maxReviewLength {
		return ErrReviewInvalid
	}

	err := s.Store.Leads().CreateCustomerReview(ctx, domain.CustomerReview{
		ID:     idx.New().String(),
		Name:   name,
		Email:  email,
		Rating: rating,
		Review: review,
	})
	if err != nil {
		log.Error("failed to store review", slog.Any("error", err))
		return err
	}

	log.Info("customer review received", slog.Int("rating", rating))
	return nil
}

// Subscribe records a newsletter opt-in. A duplicate email surfaces as
// ErrAlreadySubscribed so the handler can report it without treating it as
// a failure.
func (s *LeadService) Subscribe(ctx context.Context, email, source string) error {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return ErrSubscriberNoEmail
	}

	err := s.Store.Leads().CreateNewsletterSubscriber(ctx, domain.NewsletterSubscriber{
		ID:     idx.New().String(),
		Email:  email,
		Source: source,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadySubscribed
		}
		log.Error("failed to store subscriber", slog.Any("error", err))
		return err
	}

	log.Info("newsletter subscription received")
	return nil
}

func validEmail(email string) bool {
	if len(email) > maxEmailLength {
		return false
	}
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}
