package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/paymall/site-api/internal/site/domain"
	"github.com/paymall/site-api/internal/site/store"
	"github.com/paymall/site-api/pkg/idx"
	"github.com/paymall/site-api/pkg/slogx"
)

var (
	ErrBlogNotFound     = errors.New("blog post not found")
	ErrBlogInvalid      = errors.New("title and content are required")
	ErrBlogSlugConflict = errors.New("a post with this slug already exists")
)

// BlogService manages blog posts. Public reads only ever see published
// posts; the full set is reserved for authenticated admins.
type BlogService struct {
	Store store.Store
}

// BlogInput carries the mutable fields of a post. Slug is derived from the
// title when empty.
type BlogInput struct {
	Title           string
	Slug            string
	Excerpt         string
	Content         string
	FeaturedImage   string
	AuthorName      string
	Tags            []string
	MetaTitle       string
	MetaDescription string
	IsFeatured      bool
	IsPublished     bool
}

func (s *BlogService) CreateBlog(ctx context.Context, in BlogInput) (domain.Blog, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return domain.Blog{}, ErrBlogInvalid
	}

	b := blogFromInput(in)
	b.ID = idx.New().String()
	if b.IsPublished {
		now := time.Now().UTC()
		b.PublishedAt = &now
	}

	if err := s.Store.Blogs().CreateBlog(ctx, b); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Blog{}, ErrBlogSlugConflict
		}
		log.Error("failed to create blog post", slog.Any("error", err))
		return domain.Blog{}, err
	}

	log.Info("blog post created", slog.String("blog_id", b.ID), slog.String("slug", b.Slug))
	return b, nil
}

// UpdateBlog replaces the mutable fields of a post. PublishedAt is stamped
// on the draft-to-published transition and kept across later edits.
func (s *BlogService) UpdateBlog(ctx context.Context, id string, in BlogInput) (domain.Blog, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return domain.Blog{}, ErrBlogInvalid
	}

	existing, err := s.Store.Blogs().GetBlogByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Blog{}, ErrBlogNotFound
		}
		log.Error("failed to fetch blog post", slog.Any("error", err))
		return domain.Blog{}, err
	}

	b := blogFromInput(in)
	b.ID = existing.ID
	b.CreatedAt = existing.CreatedAt
	b.PublishedAt = existing.PublishedAt
	if b.IsPublished && existing.PublishedAt == nil {
		now := time.Now().UTC()
		b.PublishedAt = &now
	}

	if err := s.Store.Blogs().UpdateBlog(ctx, b); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Blog{}, ErrBlogSlugConflict
		}
		log.Error("failed to update blog post", slog.Any("error", err))
		return domain.Blog{}, err
	}

	log.Info("blog post updated", slog.String("blog_id", b.ID))
	return b, nil
}

func (s *BlogService) DeleteBlog(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	if _, err := s.Store.Blogs().GetBlogByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBlogNotFound
		}
		return err
	}

	if err := s.Store.Blogs().DeleteBlog(ctx, id); err != nil {
		log.Error("failed to delete blog post", slog.Any("error", err))
		return err
	}

	log.Info("blog post deleted", slog.String("blog_id", id))
	return nil
}

func (s *BlogService) GetBlogByID(ctx context.Context, id string) (domain.Blog, error) {
	b, err := s.Store.Blogs().GetBlogByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Blog{}, ErrBlogNotFound
	}
	return b, err
}

func (s *BlogService) GetPublishedBySlug(ctx context.Context, slug string) (domain.Blog, error) {
	b, err := s.Store.Blogs().GetPublishedBlogBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Blog{}, ErrBlogNotFound
	}
	return b, err
}

func (s *BlogService) ListPublished(ctx context.Context, limit int) ([]domain.Blog, error) {
	return s.Store.Blogs().ListPublishedBlogs(ctx, limit)
}

func (s *BlogService) ListFeatured(ctx context.Context, limit int) ([]domain.Blog, error) {
	return s.Store.Blogs().ListFeaturedBlogs(ctx, limit)
}

func (s *BlogService) ListAll(ctx context.Context) ([]domain.Blog, error) {
	return s.Store.Blogs().ListAllBlogs(ctx)
}

func blogFromInput(in BlogInput) domain.Blog {
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = GenerateSlug(in.Title)
	}

	return domain.Blog{
		Title:           strings.TrimSpace(in.Title),
		Slug:            slug,
		Excerpt:         in.Excerpt,
		Content:         in.Content,
		FeaturedImage:   in.FeaturedImage,
		AuthorName:      in.AuthorName,
		Tags:            in.Tags,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		IsFeatured:      in.IsFeatured,
		IsPublished:     in.IsPublished,
	}
}

// GenerateSlug lowercases the title and collapses every non-alphanumeric
// run into a single hyphen.
func GenerateSlug(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
