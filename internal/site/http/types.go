package http

import "time"

// ErrorResponse is the uniform error body for every endpoint.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type SessionResponse struct {
	User      UserInfo  `json:"user"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VerifyCodeRequest struct {
	Code string `json:"code"`
}

type VerifyCodeResponse struct {
	Valid             bool   `json:"valid"`
	Error             string `json:"error,omitempty"`
	RetryAfter        int    `json:"retryAfter,omitempty"`
	RemainingAttempts *int   `json:"remainingAttempts,omitempty"`
}

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"invite_code"`
}

type InviteResponse struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Used      bool       `json:"used"`
	UsedBy    string     `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}

type BlogRequest struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug,omitempty"`
	Excerpt         string   `json:"excerpt,omitempty"`
	Content         string   `json:"content"`
	FeaturedImage   string   `json:"featured_image,omitempty"`
	AuthorName      string   `json:"author_name,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	IsFeatured      bool     `json:"is_featured"`
	IsPublished     bool     `json:"is_published"`
}

type BlogResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         string     `json:"excerpt,omitempty"`
	Content         string     `json:"content"`
	FeaturedImage   string     `json:"featured_image,omitempty"`
	AuthorName      string     `json:"author_name,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	MetaTitle       string     `json:"meta_title,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	IsFeatured      bool       `json:"is_featured"`
	IsPublished     bool       `json:"is_published"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type ContactRequestBody struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Message string `json:"message"`
}

type ReviewRequestBody struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

type SubscribeRequestBody struct {
	Email  string `json:"email"`
	Source string `json:"source,omitempty"`
}

type SubscribeResponse struct {
	Subscribed        bool `json:"subscribed"`
	AlreadySubscribed bool `json:"already_subscribed,omitempty"`
}

type SetupRequest struct {
	SetupCode string `json:"setup_code"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
