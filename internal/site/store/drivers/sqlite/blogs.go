package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/paymall/site-api/internal/site/domain"
)

type blogsRepo struct {
	db DBTX
}

const blogColumns = `id, title, slug, excerpt, content, featured_image, author_name,
	tags, meta_title, meta_description, is_featured, is_published,
	published_at, created_at, updated_at`

func (r *blogsRepo) CreateBlog(ctx context.Context, b domain.Blog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blogs (
			id, title, slug, excerpt, content, featured_image, author_name,
			tags, meta_title, meta_description, is_featured, is_published,
			published_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.Slug, b.Excerpt, b.Content, b.FeaturedImage,
		b.AuthorName, joinTags(b.Tags), b.MetaTitle, b.MetaDescription,
		b.IsFeatured, b.IsPublished, mapOptionalTime(b.PublishedAt))
	return mapUnique(err)
}

func (r *blogsRepo) UpdateBlog(ctx context.Context, b domain.Blog) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE blogs SET
			title = ?, slug = ?, excerpt = ?, content = ?, featured_image = ?,
			author_name = ?, tags = ?, meta_title = ?, meta_description = ?,
			is_featured = ?, is_published = ?, published_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		b.Title, b.Slug, b.Excerpt, b.Content, b.FeaturedImage,
		b.AuthorName, joinTags(b.Tags), b.MetaTitle, b.MetaDescription,
		b.IsFeatured, b.IsPublished, mapOptionalTime(b.PublishedAt),
		b.ID)
	return mapUnique(err)
}

func (r *blogsRepo) DeleteBlog(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id)
	return err
}

func (r *blogsRepo) GetBlogByID(ctx context.Context, id string) (domain.Blog, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+blogColumns+` FROM blogs WHERE id = ?`, id)
	return scanBlog(row)
}

func (r *blogsRepo) GetPublishedBlogBySlug(ctx context.Context, slug string) (domain.Blog, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+blogColumns+` FROM blogs
		WHERE slug = ? AND is_published = TRUE`, slug)
	return scanBlog(row)
}

func (r *blogsRepo) ListPublishedBlogs(ctx context.Context, limit int) ([]domain.Blog, error) {
	return r.list(ctx, `
		SELECT `+blogColumns+` FROM blogs
		WHERE is_published = TRUE
		ORDER BY published_at DESC`, limit)
}

func (r *blogsRepo) ListFeaturedBlogs(ctx context.Context, limit int) ([]domain.Blog, error) {
	return r.list(ctx, `
		SELECT `+blogColumns+` FROM blogs
		WHERE is_published = TRUE AND is_featured = TRUE
		ORDER BY published_at DESC`, limit)
}

func (r *blogsRepo) ListAllBlogs(ctx context.Context) ([]domain.Blog, error) {
	return r.list(ctx, `
		SELECT `+blogColumns+` FROM blogs
		ORDER BY created_at DESC`, 0)
}

func (r *blogsRepo) list(ctx context.Context, query string, limit int) ([]domain.Blog, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBlog(row rowScanner) (domain.Blog, error) {
	var (
		b           domain.Blog
		tags        string
		publishedAt sql.NullTime
		createdAt   time.Time
		updatedAt   time.Time
	)
	err := row.Scan(
		&b.ID, &b.Title, &b.Slug, &b.Excerpt, &b.Content, &b.FeaturedImage,
		&b.AuthorName, &tags, &b.MetaTitle, &b.MetaDescription,
		&b.IsFeatured, &b.IsPublished, &publishedAt, &createdAt, &updatedAt)
	if err != nil {
		return domain.Blog{}, mapNotFound(err)
	}
	b.Tags = splitTags(tags)
	b.PublishedAt = mapNullTimePtr(publishedAt)
	b.CreatedAt = createdAt
	b.UpdatedAt = updatedAt
	return b, nil
}
