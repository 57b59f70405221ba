package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paymall/site-api/internal/site/domain"
	"github.com/paymall/site-api/internal/site/ratelimit"
	"github.com/paymall/site-api/internal/site/service"
	"github.com/paymall/site-api/internal/site/store"
	"github.com/paymall/site-api/internal/site/store/drivers/sqlite"
	"github.com/paymall/site-api/pkg/cryptox"
	"github.com/paymall/site-api/pkg/idx"
	"github.com/paymall/site-api/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server *httptest.Server
	store  store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	keys, err := jwtx.NewEdDSAKeyPair()
	require.NoError(t, err)
	verifier := jwtx.NewEdDSAVerifier(keys, "site-api-test")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(keys, verifier, "test", st, logger)
	router.AuthService = &service.AuthService{Store: st, Signer: keys, Issuer: "site-api-test"}
	router.VerifyService = &service.VerifyService{
		Secret:  "admin-access-code",
		Limiter: ratelimit.NewMemoryLimiter(5, 15*time.Minute),
	}
	router.RegisterService = &service.RegisterService{Store: st}
	router.InviteService = &service.InviteService{Store: st}
	router.BlogService = &service.BlogService{Store: st}
	router.LeadService = &service.LeadService{Store: st}
	router.SetupService = &service.SetupService{Store: st, SetupCode: "bootstrap-secret"}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, store: st}
}

func (e *testEnv) createAdmin(t *testing.T, email, password string) domain.User {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	u := domain.User{ID: idx.New().String(), Email: email, PasswordHash: hash}
	require.NoError(t, e.store.Users().CreateUser(ctx, u))
	require.NoError(t, e.store.Roles().GrantRole(ctx, domain.RoleGrant{
		ID: idx.New().String(), UserID: u.ID, Role: domain.RoleAdmin,
	}))
	return u
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/v1/auth/login", "", LoginRequest{
		Email: email, Password: password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[LoginResponse](t, resp).Token
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.createAdmin(t, "admin@example.com", "correct horse battery")

	t.Run("login and session", func(t *testing.T) {
		token := env.login(t, "admin@example.com", "correct horse battery")

		resp := env.do(t, http.MethodGet, "/v1/auth/session", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		sess := decode[SessionResponse](t, resp)
		require.Equal(t, "admin@example.com", sess.User.Email)
	})

	t.Run("bad credentials are 401", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/login", "", LoginRequest{
			Email: "admin@example.com", Password: "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		token := env.login(t, "admin@example.com", "correct horse battery")

		resp := env.do(t, http.MethodPost, "/v1/auth/logout", token, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		// The token still verifies but the session is gone.
		resp = env.do(t, http.MethodGet, "/v1/auth/session", token, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("admin routes reject missing tokens", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/admin/invites", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestVerifyCodeEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	t.Run("valid and invalid codes both return 200", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/verify-admin-code", "", VerifyCodeRequest{Code: "admin-access-code"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, decode[VerifyCodeResponse](t, resp).Valid)

		resp = env.do(t, http.MethodPost, "/v1/verify-admin-code", "", VerifyCodeRequest{Code: "wrong"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[VerifyCodeResponse](t, resp)
		require.False(t, body.Valid)
		require.NotNil(t, body.RemainingAttempts)
		require.Equal(t, 3, *body.RemainingAttempts)
	})

	t.Run("empty code is 400", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/verify-admin-code", "", VerifyCodeRequest{})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("budget exhaustion is 429 with Retry-After", func(t *testing.T) {
		// Earlier subtests already spent part of the budget; burn the rest.
		for i := 0; i < 3; i++ {
			env.do(t, http.MethodPost, "/v1/verify-admin-code", "", VerifyCodeRequest{Code: "wrong"})
		}

		resp := env.do(t, http.MethodPost, "/v1/verify-admin-code", "", VerifyCodeRequest{Code: "admin-access-code"})
		require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		require.NotEmpty(t, resp.Header.Get("Retry-After"))

		body := decode[VerifyCodeResponse](t, resp)
		require.False(t, body.Valid)
		require.NotEmpty(t, body.Error)
		require.Greater(t, body.RetryAfter, 0)
	})
}

func TestInviteAndRegisterFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.createAdmin(t, "admin@example.com", "correct horse battery")
	token := env.login(t, "admin@example.com", "correct horse battery")

	// Mint a code as the admin.
	resp := env.do(t, http.MethodPost, "/v1/admin/invites", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	inv := decode[InviteResponse](t, resp)
	require.Len(t, inv.Code, 8)

	// Register with it.
	resp = env.do(t, http.MethodPost, "/v1/register-admin", "", RegisterRequest{
		Email: "new@example.com", Password: "long enough pw", InviteCode: inv.Code,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The new admin can log in.
	env.login(t, "new@example.com", "long enough pw")

	// The code is now spent.
	resp = env.do(t, http.MethodPost, "/v1/register-admin", "", RegisterRequest{
		Email: "other@example.com", Password: "long enough pw", InviteCode: inv.Code,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Listing shows the consumed code.
	resp = env.do(t, http.MethodGet, "/v1/admin/invites", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]InviteResponse](t, resp)
	require.Len(t, list, 1)
	require.True(t, list[0].Used)
}

func TestBlogEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.createAdmin(t, "admin@example.com", "correct horse battery")
	token := env.login(t, "admin@example.com", "correct horse battery")

	// Create a published post.
	resp := env.do(t, http.MethodPost, "/v1/admin/blogs", token, BlogRequest{
		Title: "Hello World", Content: "First post.", IsPublished: true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[BlogResponse](t, resp)
	require.Equal(t, "hello-world", created.Slug)

	// And a draft.
	resp = env.do(t, http.MethodPost, "/v1/admin/blogs", token, BlogRequest{
		Title: "Draft", Content: "wip",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	draft := decode[BlogResponse](t, resp)

	t.Run("public listing hides drafts", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/blogs", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, decode[[]BlogResponse](t, resp), 1)

		resp = env.do(t, http.MethodGet, "/v1/blogs/hello-world", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = env.do(t, http.MethodGet, "/v1/blogs/draft", "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("admin listing includes drafts", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/admin/blogs", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, decode[[]BlogResponse](t, resp), 2)
	})

	t.Run("writes require authentication", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/admin/blogs", "", BlogRequest{
			Title: "Nope", Content: "x",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("update and delete", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, "/v1/admin/blogs/"+draft.ID, token, BlogRequest{
			Title: "Draft", Content: "done", IsPublished: true,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, decode[BlogResponse](t, resp).IsPublished)

		resp = env.do(t, http.MethodDelete, "/v1/admin/blogs/"+draft.ID, token, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestLeadEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	t.Run("contact", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/contact", "", ContactRequestBody{
			Name: "Jo", Email: "jo@example.com", Message: "demo please",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = env.do(t, http.MethodPost, "/v1/contact", "", ContactRequestBody{Name: "Jo"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("review", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/reviews", "", ReviewRequestBody{
			Name: "Jo", Email: "jo@example.com", Rating: 4, Review: "works really well",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("newsletter duplicate is reported, not failed", func(t *testing.T) {
		body := SubscribeRequestBody{Email: "jo@example.com", Source: "blog"}

		resp := env.do(t, http.MethodPost, "/v1/newsletter/subscribe", "", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = env.do(t, http.MethodPost, "/v1/newsletter/subscribe", "", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, decode[SubscribeResponse](t, resp).AlreadySubscribed)
	})
}

func TestSetupEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/v1/setup", "", SetupRequest{
		SetupCode: "wrong", Email: "boss@example.com", Password: "long enough pw",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/v1/setup", "", SetupRequest{
		SetupCode: "bootstrap-secret", Email: "boss@example.com", Password: "long enough pw",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Bootstrapped admin can log in straight away.
	env.login(t, "boss@example.com", "long enough pw")
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", decode[HealthResponse](t, resp).Status)

	resp = env.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ready := decode[HealthResponse](t, resp)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)
}
